package token

import "fmt"

// Span is a half-open token range [Start, End) with its tag.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Tag   Tag `json:"tag"`
}

// Len returns the number of tokens covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains returns true if the span covers the token at idx.
func (s Span) Contains(idx int) bool {
	return idx >= s.Start && idx < s.End
}

// String renders the span as "[start,end)->tag".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)->%s", s.Start, s.End, s.Tag)
}

// PartitionError reports a span sequence that does not exactly cover [0, n).
type PartitionError struct {
	Index   int // offending span index, or len(spans) when the tail is uncovered
	Message string
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("span %d: %s", e.Index, e.Message)
}

// CheckPartition verifies that spans, in order, cover [0, n) with no gaps,
// no overlaps and no empty spans.
func CheckPartition(spans []Span, n int) error {
	next := 0
	for i, s := range spans {
		if s.Start != next {
			return &PartitionError{Index: i, Message: fmt.Sprintf("starts at %d, expected %d", s.Start, next)}
		}
		if s.End <= s.Start {
			return &PartitionError{Index: i, Message: fmt.Sprintf("empty range [%d,%d)", s.Start, s.End)}
		}
		next = s.End
	}
	if next != n {
		return &PartitionError{Index: len(spans), Message: fmt.Sprintf("covers %d of %d tokens", next, n)}
	}
	return nil
}
