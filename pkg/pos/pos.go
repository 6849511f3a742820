// Package pos defines the part-of-speech annotator contract used by the tagger.
//
// Tags follow the Penn Treebank inventory. The tagger only distinguishes the
// comparative (JJR, RBR) and superlative (JJS, RBS) classes; everything else
// is carried through to the parser untouched.
package pos

import (
	"context"
	"errors"
	"fmt"
)

// ErrMisaligned is returned when an annotator does not return exactly one tag per token.
var ErrMisaligned = errors.New("pos tags not aligned with tokens")

// Tagger assigns one part-of-speech tag per token.
type Tagger interface {
	Tag(ctx context.Context, tokens []string) ([]string, error)
}

// TaggerFunc adapts a function to the Tagger interface.
type TaggerFunc func(ctx context.Context, tokens []string) ([]string, error)

// Tag implements Tagger.
func (f TaggerFunc) Tag(ctx context.Context, tokens []string) ([]string, error) {
	return f(ctx, tokens)
}

// Penn Treebank tags the tagger reacts to.
const (
	AdjComparative = "JJR"
	AdjSuperlative = "JJS"
	AdvComparative = "RBR"
	AdvSuperlative = "RBS"
	CardinalNumber = "CD"
)

// IsComparative reports whether tag is a comparative adjective or adverb.
func IsComparative(tag string) bool {
	return tag == AdjComparative || tag == AdvComparative
}

// IsSuperlative reports whether tag is a superlative adjective or adverb.
func IsSuperlative(tag string) bool {
	return tag == AdjSuperlative || tag == AdvSuperlative
}

// CheckAligned verifies that tags has one entry per token.
func CheckAligned(tokens, tags []string) error {
	if len(tokens) != len(tags) {
		return fmt.Errorf("%w: %d tokens, %d tags", ErrMisaligned, len(tokens), len(tags))
	}
	return nil
}
