package pos

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// ProseTagger runs prose's averaged perceptron, trained on the Penn Treebank,
// over the question. It is the default offline tagger.
//
// prose tokenizes on its own. When its pieces cannot be folded back onto
// the caller's tokens the question is tagged by LexiconTagger instead.
type ProseTagger struct {
	mu    sync.Mutex
	model *prose.Model
}

// NewProseTagger loads the embedded prose model.
func NewProseTagger() (*ProseTagger, error) {
	doc, err := prose.NewDocument("load",
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("failed to load prose model: %w", err)
	}
	return &ProseTagger{model: doc.Model}, nil
}

// Tag implements Tagger.
func (p *ProseTagger) Tag(ctx context.Context, tokens []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return []string{}, nil
	}

	p.mu.Lock()
	doc, err := prose.NewDocument(strings.Join(tokens, " "),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
		prose.UsingModel(p.model))
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("prose: %w", err)
	}

	if tags, ok := align(tokens, doc.Tokens()); ok {
		return tags, nil
	}
	return LexiconTagger{}.Tag(ctx, tokens)
}

// align folds prose tokens back onto words. A word split into several
// pieces takes the tag of its first piece.
func align(words []string, toks []prose.Token) ([]string, bool) {
	tags := make([]string, 0, len(words))
	j := 0
	for _, w := range words {
		if j >= len(toks) {
			return nil, false
		}
		tag := toks[j].Tag
		joined := toks[j].Text
		j++
		for joined != w && len(joined) < len(w) && j < len(toks) {
			joined += toks[j].Text
			j++
		}
		if joined != w {
			return nil, false
		}
		tags = append(tags, tag)
	}
	if j != len(toks) {
		return nil, false
	}
	return tags, true
}
