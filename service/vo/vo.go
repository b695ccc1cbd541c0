package vo

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^Q[0-9]+$`)

// Identifier is a linked-data item reference such as "Q42"
type Identifier string

// ParseIdentifier accepts s only if it is "Q" followed by one or more ASCII digits
func ParseIdentifier(s string) (Identifier, bool) {
	if !identifierPattern.MatchString(s) {
		return "", false
	}
	return Identifier(s), true
}

func (id Identifier) String() string {
	return string(id)
}

// FormatTitle turns a page title as it appears in URLs into its display form
func FormatTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}

type PageContext struct {
	Site      string `json:"site"`           // Site database name, e.g. "enwiki"
	Namespace int    `json:"namespace"`      // Namespace number, negative for virtual namespaces
	Title     string `json:"title"`          // Page name including namespace prefix
	Hint      string `json:"hint,omitempty"` // Target of the sidebar linked-data link, if rendered
}

type UsageEntry struct {
	ID    Identifier `json:"id"`
	Title string     `json:"title"` // Display title
}

// ResolutionResult is either Single or MediaAggregate. A nil result means no data.
type ResolutionResult interface {
	resolutionResult()
}

type Single struct {
	ID Identifier `json:"id"`
}

func (Single) resolutionResult() {}

type MediaAggregate struct {
	Depicts []Identifier `json:"depicts"`
	Usage   []UsageEntry `json:"usage"`
}

func (MediaAggregate) resolutionResult() {}

func (m MediaAggregate) HasDepicts() bool {
	return len(m.Depicts) > 0
}

func (m MediaAggregate) HasUsage() bool {
	return len(m.Usage) > 0
}

// Separated reports whether both sections are present and need a divider between them
func (m MediaAggregate) Separated() bool {
	return m.HasDepicts() && m.HasUsage()
}

func (m MediaAggregate) Empty() bool {
	return !m.HasDepicts() && !m.HasUsage()
}

// Renderable reports whether a result produces any links at all
func Renderable(r ResolutionResult) bool {
	switch v := r.(type) {
	case Single:
		return v.ID != ""
	case *Single:
		return v != nil && v.ID != ""
	case MediaAggregate:
		return !v.Empty()
	case *MediaAggregate:
		return v != nil && !v.Empty()
	default:
		return false
	}
}
