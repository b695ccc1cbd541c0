package mediawiki

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/foomo/wikidata-links-mcp/service/vo"
)

type apiResponse interface {
	apiError() error
}

type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Info)
}

type envelope struct {
	Error *APIError `json:"error,omitempty"`
}

func (e *envelope) apiError() error {
	if e.Error == nil {
		return nil
	}
	return e.Error
}

type entitiesResponse struct {
	envelope
	Entities map[string]*Entity `json:"entities"`
}

type queryResponse struct {
	envelope
	Query *struct {
		Pages []queryPage `json:"pages"`
	} `json:"query"`
}

type queryPage struct {
	PageID      int    `json:"pageid"`
	Namespace   int    `json:"ns"`
	Title       string `json:"title"`
	Missing     bool   `json:"missing"`
	GlobalUsage []struct {
		Title string `json:"title"`
		Wiki  string `json:"wiki"`
		URL   string `json:"url"`
	} `json:"globalusage"`
	PageProps *struct {
		WikibaseItem string `json:"wikibase_item"`
	} `json:"pageprops"`
}

// Entity is a linked-data entity. MediaInfo entities carry "statements", items carry "claims".
type Entity struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Missing    *json.RawMessage `json:"missing,omitempty"`
	Statements StatementMap     `json:"statements"`
	Claims     StatementMap     `json:"claims"`
}

// StatementMap groups statements by property id
type StatementMap map[string][]Statement

// UnmarshalJSON accepts the empty array the API emits for an entity without statements
func (m *StatementMap) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); bytes.Equal(trimmed, []byte("[]")) {
		*m = StatementMap{}
		return nil
	}
	var statements map[string][]Statement
	if err := json.Unmarshal(data, &statements); err != nil {
		return err
	}
	*m = statements
	return nil
}

type Statement struct {
	MainSnak struct {
		SnakType  string     `json:"snaktype"`
		Property  string     `json:"property"`
		DataValue *DataValue `json:"datavalue"`
	} `json:"mainsnak"`
}

type DataValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// TargetIdentifier returns the item a statement points at, if it points at a valid one
func (s Statement) TargetIdentifier() (vo.Identifier, bool) {
	dv := s.MainSnak.DataValue
	if dv == nil || len(dv.Value) == 0 {
		return "", false
	}
	var value struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(dv.Value, &value); err != nil {
		return "", false
	}
	return vo.ParseIdentifier(value.ID)
}

// PropertyValues returns the valid item targets of a property in statement order
func (e *Entity) PropertyValues(property string) []vo.Identifier {
	if e == nil {
		return nil
	}
	statements, ok := e.Statements[property]
	if !ok {
		statements = e.Claims[property]
	}
	ids := make([]vo.Identifier, 0, len(statements))
	for _, statement := range statements {
		if id, ok := statement.TargetIdentifier(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
