package vo

type ResultKind string

const (
	ResultKindNone   ResultKind = "none"
	ResultKindSingle ResultKind = "single"
	ResultKindMedia  ResultKind = "media"
)

// Envelope is the flat JSON form of a ResolutionResult
type Envelope struct {
	Kind       ResultKind   `json:"kind"`
	ID         Identifier   `json:"id,omitempty"`
	Depicts    []Identifier `json:"depicts,omitempty"`
	Usage      []UsageEntry `json:"usage,omitempty"`
	Renderable bool         `json:"renderable"`
}

func NewEnvelope(r ResolutionResult) Envelope {
	env := Envelope{Kind: ResultKindNone, Renderable: Renderable(r)}
	switch v := r.(type) {
	case Single:
		env.Kind = ResultKindSingle
		env.ID = v.ID
	case *Single:
		if v != nil {
			env.Kind = ResultKindSingle
			env.ID = v.ID
		}
	case MediaAggregate:
		env.Kind = ResultKindMedia
		env.Depicts = v.Depicts
		env.Usage = v.Usage
	case *MediaAggregate:
		if v != nil {
			env.Kind = ResultKindMedia
			env.Depicts = v.Depicts
			env.Usage = v.Usage
		}
	}
	return env
}

// Result converts the envelope back into a ResolutionResult
func (e Envelope) Result() ResolutionResult {
	switch e.Kind {
	case ResultKindSingle:
		return Single{ID: e.ID}
	case ResultKindMedia:
		return MediaAggregate{Depicts: e.Depicts, Usage: e.Usage}
	default:
		return nil
	}
}
