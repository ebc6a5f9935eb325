package domain

import (
	"encoding/json"
	"time"
)

// SourceType identifies the provenance of a fact. Sources are ranked;
// the ranking decides which writes may supersede which.
type SourceType string

const (
	// SourceOperator is a value entered manually by an operator.
	SourceOperator SourceType = "operator"

	// SourceAttachmentExtracted comes from a structured field of an
	// attached document (packing list, bill of lading, quotation sheet).
	SourceAttachmentExtracted SourceType = "attachment_extracted"

	// SourceDocumentRegex comes from a deterministic pattern match
	// over document or correspondence text.
	SourceDocumentRegex SourceType = "document_regex"

	// SourceHSResolution comes from resolving a commodity code against
	// the national nomenclature.
	SourceHSResolution SourceType = "hs_resolution"

	// SourceKnownContact comes from matching a sender domain against
	// the known-business-contact directory.
	SourceKnownContact SourceType = "known_contact_match"

	// SourceAIExtraction comes from the AI extraction oracle reading
	// the correspondence thread.
	SourceAIExtraction SourceType = "ai_extraction"

	// SourceAIAssumption is a default injected by the assumption rule
	// engine for the classified flow. Lowest authority.
	SourceAIAssumption SourceType = "ai_assumption"
)

// Rank returns the authority of a source. Higher values win conflicts.
func (s SourceType) Rank() int {
	switch s {
	case SourceOperator:
		return 60
	case SourceAttachmentExtracted, SourceDocumentRegex, SourceHSResolution:
		return 50
	case SourceKnownContact:
		return 40
	case SourceAIExtraction:
		return 30
	case SourceAIAssumption:
		return 10
	default:
		return 0
	}
}

// CanSupersede reports whether a write from source s may replace a
// current fact recorded from source current. A write never supersedes
// a strictly higher rank; operator entries overwrite anything.
func (s SourceType) CanSupersede(current SourceType) bool {
	if s == SourceOperator {
		return true
	}
	return s.Rank() >= current.Rank()
}

// ValueKind discriminates the fact value union.
type ValueKind string

const (
	ValueText       ValueKind = "text"
	ValueNumber     ValueKind = "number"
	ValueStructured ValueKind = "structured"
	ValueDate       ValueKind = "date"
)

// FactValue is a tagged union holding exactly one of the four value
// kinds. Only the field matching Kind is meaningful.
type FactValue struct {
	Kind       ValueKind       `json:"kind"`
	Text       string          `json:"text,omitempty"`
	Number     float64         `json:"number,omitempty"`
	Structured json.RawMessage `json:"structured,omitempty"`
	Date       time.Time       `json:"date,omitempty"`
}

// TextValue builds a text-kind value.
func TextValue(s string) FactValue {
	return FactValue{Kind: ValueText, Text: s}
}

// NumberValue builds a number-kind value.
func NumberValue(n float64) FactValue {
	return FactValue{Kind: ValueNumber, Number: n}
}

// StructuredValue builds a structured-kind value from raw JSON.
func StructuredValue(raw json.RawMessage) FactValue {
	return FactValue{Kind: ValueStructured, Structured: raw}
}

// DateValue builds a date-kind value.
func DateValue(t time.Time) FactValue {
	return FactValue{Kind: ValueDate, Date: t}
}

// Equal reports whether two values carry the same kind and payload.
// Structured values compare by exact byte equality of their JSON.
func (v FactValue) Equal(other FactValue) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValueText:
		return v.Text == other.Text
	case ValueNumber:
		return v.Number == other.Number
	case ValueStructured:
		return string(v.Structured) == string(other.Structured)
	case ValueDate:
		return v.Date.Equal(other.Date)
	default:
		return false
	}
}

// String renders the value for display and excerpts.
func (v FactValue) String() string {
	switch v.Kind {
	case ValueText:
		return v.Text
	case ValueNumber:
		return trimFloat(v.Number)
	case ValueStructured:
		return string(v.Structured)
	case ValueDate:
		return v.Date.Format("2006-01-02")
	default:
		return ""
	}
}

func trimFloat(n float64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// Fact is a single typed, versioned, sourced data point about a case.
// At most one fact per (case, key) has IsCurrent=true; history is
// append-only and rows are never deleted.
type Fact struct {
	// ID is the unique identifier for this version row.
	ID string

	// CaseID links to the owning case.
	CaseID string

	// Key is the canonical dotted key, e.g. "cargo.weight_kg".
	Key string

	// Category groups related keys, e.g. "cargo", "routing".
	Category string

	// Value is the tagged value union.
	Value FactValue

	// Source is the ranked provenance of this version.
	Source SourceType

	// SourceRef optionally names the originating message or
	// attachment id.
	SourceRef string

	// Excerpt is the text fragment the value was taken from.
	Excerpt string

	// Confidence is the producer's confidence in [0,1].
	Confidence float64

	// IsCurrent marks the single live version for (case, key).
	IsCurrent bool

	// CreatedAt is when this version row was written.
	CreatedAt time.Time
}

// IsAssumption reports whether the fact was injected as a default
// rather than observed.
func (f Fact) IsAssumption() bool {
	return f.Source == SourceAIAssumption
}

// FactWrite is the input to the store's single write primitive.
type FactWrite struct {
	CaseID     string
	Key        string
	Category   string
	Value      FactValue
	Source     SourceType
	SourceRef  string
	Excerpt    string
	Confidence float64
}

// WriteOutcome describes what a Supersede call did.
type WriteOutcome string

const (
	// WriteCreated means no current fact existed for the key.
	WriteCreated WriteOutcome = "created"

	// WriteSuperseded means a current fact was retired and replaced.
	WriteSuperseded WriteOutcome = "superseded"

	// WriteUnchanged means the write was a no-op: the current fact
	// already carries the same value at an equal or higher rank.
	WriteUnchanged WriteOutcome = "unchanged"

	// WriteRejected means the current fact outranks the write.
	WriteRejected WriteOutcome = "rejected"
)

// WriteResult reports the outcome of a Supersede call. FactID is the
// id of the current fact for the key after the call (the new row for
// created/superseded, the surviving row otherwise).
type WriteResult struct {
	FactID  string
	Outcome WriteOutcome
}

// FactSnapshot is the current view of a case: one live fact per key.
type FactSnapshot map[string]Fact

// Number returns the numeric value for key and whether a current
// number-kind fact exists.
func (s FactSnapshot) Number(key string) (float64, bool) {
	f, ok := s[key]
	if !ok || f.Value.Kind != ValueNumber {
		return 0, false
	}
	return f.Value.Number, true
}

// Text returns the text value for key and whether a current text-kind
// fact exists.
func (s FactSnapshot) Text(key string) (string, bool) {
	f, ok := s[key]
	if !ok || f.Value.Kind != ValueText {
		return "", false
	}
	return f.Value.Text, true
}

// Has reports whether a current fact exists for key.
func (s FactSnapshot) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// HasObserved reports whether a current non-assumption fact exists
// for key.
func (s FactSnapshot) HasObserved(key string) bool {
	f, ok := s[key]
	return ok && !f.IsAssumption()
}

// CandidateFact is a fact proposed by a producer (oracle, mapper or
// directory match) before it passes through the store's conflict
// rules.
type CandidateFact struct {
	Key          string
	Category     string
	Value        FactValue
	Confidence   float64
	Excerpt      string
	SourceRef    string
	IsAssumption bool
}
