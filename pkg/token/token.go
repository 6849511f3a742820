// Package token defines the annotation vocabulary shared by the tagger and its consumers.
//
// A question is a flat sequence of word tokens. The tagger partitions that sequence
// into spans and gives every span exactly one Tag. The closed set of tag kinds mirrors
// what the downstream semantic parser expects in its question_arg_type field.
package token

import "fmt"

// Kind is the category of a span tag.
type Kind int32

const (
	// None marks a token no rule could classify.
	None Kind = iota
	Column
	Table
	Aggregation
	Value
	More
	Most
	// Concept carries a label resolved from the concept graph (or the NONE sentinel).
	Concept
)

// NoneLabel is the sentinel label used when nothing could be attached to a token.
const NoneLabel = "NONE"

// kindNames maps kinds to the strings the downstream parser consumes.
var kindNames = map[Kind]string{
	None:        NoneLabel,
	Column:      "col",
	Table:       "table",
	Aggregation: "agg",
	Value:       "value",
	More:        "MORE",
	Most:        "MOST",
	Concept:     "concept",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown tag kind %d", k)
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown tag kind %q", string(b))
}

// Tag is the type assigned to a span. Label is only meaningful for Concept tags.
type Tag struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label,omitempty"`
}

// Tag values for the label-free kinds.
var (
	TagNone        = Tag{Kind: None}
	TagColumn      = Tag{Kind: Column}
	TagTable       = Tag{Kind: Table}
	TagAggregation = Tag{Kind: Aggregation}
	TagValue       = Tag{Kind: Value}
	TagMore        = Tag{Kind: More}
	TagMost        = Tag{Kind: Most}
)

// ConceptTag returns a Concept tag carrying label.
func ConceptTag(label string) Tag {
	return Tag{Kind: Concept, Label: label}
}

// String renders the tag the way the parser reads it: concept tags render as
// their label, everything else as the kind name.
func (t Tag) String() string {
	if t.Kind == Concept {
		return t.Label
	}
	return t.Kind.String()
}

// Wire returns the tag as a one-element list, the shape used by question_arg_type.
func (t Tag) Wire() []string {
	return []string{t.String()}
}
