package tagger

import (
	"errors"
	"strings"
	"testing"

	"github.com/nlidb-labs/annotator/pkg/concept"
	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool { return r == ' ' || r == '_' })
}

func newIndex(tables []string, columns ...schema.Column) *schema.Index {
	cols := append([]schema.Column{{Table: -1, Name: "*"}}, columns...)
	return schema.NewIndex(&schema.Schema{
		DBID:        "test",
		TableNames:  tables,
		ColumnNames: cols,
	}, words)
}

func emptyGraph() *concept.Graph {
	return &concept.Graph{IsA: concept.Relation{}, RelatedTo: concept.Relation{}}
}

func nnTags(toks []string) []string {
	tags := make([]string, len(toks))
	for i := range tags {
		tags[i] = "NN"
	}
	return tags
}

func input(idx *schema.Index, g *concept.Graph, toks []string) Input {
	return Input{Tokens: toks, OriginTokens: toks, POS: nnTags(toks), Index: idx, Graph: g}
}

func span(start, end int, tag token.Tag) token.Span {
	return token.Span{Start: start, End: end, Tag: tag}
}

func TestTableBeforeColumn(t *testing.T) {
	idx := newIndex([]string{"cars"}, schema.Column{Table: 0, Name: "cars_model"})

	q, err := New(Config{}).Tag(input(idx, emptyGraph(), []string{"cars"}))
	require.NoError(t, err)
	assert.Equal(t, []token.Span{span(0, 1, token.TagTable)}, q.Spans)
}

func TestDigitalThenColumn(t *testing.T) {
	idx := newIndex([]string{"cars"}, schema.Column{Table: 0, Name: "cylinders"})

	in := input(idx, emptyGraph(), []string{"4", "cylinders"})
	in.POS = []string{"CD", "NNS"}
	q, err := New(Config{}).Tag(in)
	require.NoError(t, err)
	assert.Equal(t, []token.Span{
		span(0, 1, token.TagValue),
		span(1, 2, token.TagColumn),
	}, q.Spans)
}

func TestConceptFirstWordOnly(t *testing.T) {
	idx := newIndex([]string{"cars"}, schema.Column{Table: 0, Name: "model"})
	g := &concept.Graph{
		IsA:       concept.NewRelation(map[string][]string{"red_car": {"model"}}),
		RelatedTo: concept.Relation{},
	}

	t.Run("capitalized value", func(t *testing.T) {
		in := input(idx, g, []string{"red", "car"})
		in.OriginTokens = []string{"Red", "Car"}
		q, err := New(Config{}).Tag(in)
		require.NoError(t, err)
		assert.Equal(t, []token.Span{
			span(0, 1, token.ConceptTag("model")),
			span(1, 2, token.ConceptTag(token.NoneLabel)),
		}, q.Spans)
		assert.Equal(t, [][]string{{"model"}, {"NONE"}}, q.ArgTypes())
	})

	t.Run("quoted symbol", func(t *testing.T) {
		q, err := New(Config{}).Tag(input(idx, g, []string{"'", "red", "car", "'"}))
		require.NoError(t, err)
		assert.Equal(t, []token.Span{
			span(0, 1, token.TagNone),
			span(1, 2, token.ConceptTag("model")),
			span(2, 3, token.ConceptTag(token.NoneLabel)),
			span(3, 4, token.TagNone),
		}, q.Spans)
	})

	t.Run("adjacent quotes are not a symbol", func(t *testing.T) {
		q, err := New(Config{}).Tag(input(idx, g, []string{"'", "'"}))
		require.NoError(t, err)
		assert.Equal(t, []token.Span{
			span(0, 1, token.TagNone),
			span(1, 2, token.TagNone),
		}, q.Spans)
	})
}

func TestComparativeAndSuperlative(t *testing.T) {
	idx := newIndex([]string{"cars"})

	in := input(idx, emptyGraph(), []string{"more", "fast", "best"})
	in.POS = []string{"RBR", "JJ", "JJS"}
	q, err := New(Config{}).Tag(in)
	require.NoError(t, err)
	assert.Equal(t, []token.Span{
		span(0, 1, token.TagMore),
		span(1, 2, token.TagNone),
		span(2, 3, token.TagMost),
	}, q.Spans)
}

func TestYearRewrite(t *testing.T) {
	toks := []string{"cars", "from", "1999"}

	t.Run("year column", func(t *testing.T) {
		idx := newIndex([]string{"cars"}, schema.Column{Table: 0, Name: "year"})
		q, err := New(Config{}).Tag(input(idx, emptyGraph(), toks))
		require.NoError(t, err)
		assert.Equal(t, []token.Span{
			span(0, 1, token.TagTable),
			span(1, 2, token.TagNone),
			span(2, 3, token.TagColumn),
		}, q.Spans)
		assert.Equal(t, []string{"cars", "from", "year"}, q.Tokens)
	})

	t.Run("no year column", func(t *testing.T) {
		idx := newIndex([]string{"cars"}, schema.Column{Table: 0, Name: "model"})
		q, err := New(Config{}).Tag(input(idx, emptyGraph(), toks))
		require.NoError(t, err)
		assert.Equal(t, span(2, 3, token.TagValue), q.Spans[2])
		assert.Equal(t, []string{"cars", "from", "year"}, q.Tokens)
	})

	t.Run("input is not modified", func(t *testing.T) {
		idx := newIndex([]string{"cars"}, schema.Column{Table: 0, Name: "year"})
		in := input(idx, emptyGraph(), []string{"1999"})
		_, err := New(Config{}).Tag(in)
		require.NoError(t, err)
		assert.Equal(t, []string{"1999"}, in.Tokens)
	})
}

func TestHeaderMatches(t *testing.T) {
	idx := newIndex([]string{"car", "maker"},
		schema.Column{Table: 0, Name: "model_year"},
		schema.Column{Table: 0, Name: "horsepower"},
		schema.Column{Table: 1, Name: "full_name"},
	)

	tests := []struct {
		name string
		toks []string
		want []token.Span
	}{
		{
			name: "multi-word column",
			toks: []string{"model", "year", "of", "car"},
			want: []token.Span{span(0, 2, token.TagColumn), span(2, 3, token.TagNone), span(3, 4, token.TagTable)},
		},
		{
			name: "partial column in any order",
			toks: []string{"year", "model", "of", "car"},
			want: []token.Span{span(0, 2, token.TagColumn), span(2, 3, token.TagNone), span(3, 4, token.TagTable)},
		},
		{
			name: "partial column never reaches the last token",
			toks: []string{"year", "model"},
			want: []token.Span{span(0, 1, token.TagNone), span(1, 2, token.TagNone)},
		},
		{
			name: "single word column",
			toks: []string{"average", "horsepower", "?"},
			want: []token.Span{span(0, 1, token.TagAggregation), span(1, 2, token.TagColumn), span(2, 3, token.TagNone)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New(Config{}).Tag(input(idx, emptyGraph(), tt.toks))
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Spans)
		})
	}
}

func TestValues(t *testing.T) {
	idx := newIndex([]string{"cars"}, schema.Column{Table: 0, Name: "maker"})

	tests := []struct {
		name   string
		origin []string
		want   []token.Span
	}{
		{
			name:   "capitalized run",
			origin: []string{"Show", "cars", "in", "New", "York", "?"},
			want: []token.Span{
				span(0, 1, token.TagNone),
				span(1, 2, token.TagTable),
				span(2, 3, token.TagNone),
				span(3, 4, token.ConceptTag(token.NoneLabel)),
				span(4, 5, token.ConceptTag(token.NoneLabel)),
				span(5, 6, token.TagNone),
			},
		},
		{
			name:   "single capitalized word",
			origin: []string{"cars", "by", "Ford", "?"},
			want: []token.Span{
				span(0, 1, token.TagTable),
				span(1, 2, token.TagNone),
				span(2, 3, token.ConceptTag(token.NoneLabel)),
				span(3, 4, token.TagNone),
			},
		},
		{
			name:   "sentence start is not a value",
			origin: []string{"Ford", "cars", "?"},
			want: []token.Span{
				span(0, 1, token.TagNone),
				span(1, 2, token.TagTable),
				span(2, 3, token.TagNone),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := make([]string, len(tt.origin))
			for i, o := range tt.origin {
				toks[i] = strings.ToLower(o)
			}
			in := input(idx, emptyGraph(), toks)
			in.OriginTokens = tt.origin
			q, err := New(Config{}).Tag(in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Spans)
		})
	}
}

func TestFallbackRewritesContraction(t *testing.T) {
	q, err := New(Config{}).Tag(input(newIndex([]string{"cars"}), emptyGraph(), []string{"which", "ha", "cars"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"which", "have", "cars"}, q.Tokens)
	assert.Equal(t, span(1, 2, token.TagNone), q.Spans[1])
}

func TestPartitionAndDeterminism(t *testing.T) {
	idx := newIndex([]string{"cars", "car makers"},
		schema.Column{Table: 0, Name: "cylinders"},
		schema.Column{Table: 0, Name: "model year"},
		schema.Column{Table: 1, Name: "maker"},
	)
	g := &concept.Graph{
		IsA:       concept.NewRelation(map[string][]string{"toyota": {"maker"}}),
		RelatedTo: concept.NewRelation(map[string][]string{"engine": {"cylinders"}}),
	}
	origin := []string{"How", "many", "car", "makers", "built", "more", "than", "4", "cars", "in", "1980", "like", "Toyota", "?"}
	toks := make([]string, len(origin))
	for i, o := range origin {
		toks[i] = strings.ToLower(o)
	}
	in := Input{Tokens: toks, OriginTokens: origin, POS: nnTags(toks), Index: idx, Graph: g}
	in.POS[5] = "RBR"

	tg := New(Config{})
	first, err := tg.Tag(in)
	require.NoError(t, err)
	require.NoError(t, first.Validate())
	require.NoError(t, token.CheckPartition(first.Spans, len(toks)))

	assert.Equal(t, span(2, 4, token.TagTable), first.Spans[2])
	assert.Contains(t, first.Spans, span(12, 13, token.ConceptTag("maker")))

	for range 5 {
		again, err := tg.Tag(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

type stubMatcher struct {
	name  string
	spans []token.Span
	err   error
}

func (m stubMatcher) Name() string { return m.name }

func (m stubMatcher) Match(*State, int) ([]token.Span, error) {
	return m.spans, m.err
}

func TestInvariantViolations(t *testing.T) {
	idx := newIndex([]string{"cars"})
	boom := errors.New("boom")

	tests := []struct {
		name    string
		matcher Matcher
		wantErr error
	}{
		{name: "zero-length span", matcher: stubMatcher{name: "zero", spans: []token.Span{span(0, 0, token.TagNone)}}},
		{name: "span past the end", matcher: stubMatcher{name: "long", spans: []token.Span{span(0, 3, token.TagNone)}}},
		{name: "gap", matcher: stubMatcher{name: "gap", spans: []token.Span{span(1, 2, token.TagNone)}}},
		{name: "matcher error", matcher: stubMatcher{name: "err", err: boom}, wantErr: boom},
		{name: "nothing accepts", matcher: stubMatcher{name: "never"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := New(Config{Matchers: []Matcher{tt.matcher}})
			_, err := tg.Tag(input(idx, emptyGraph(), []string{"cars", "now"}))
			require.Error(t, err)

			var inv *InvariantError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, 0, inv.Index)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMisalignedInput(t *testing.T) {
	idx := newIndex([]string{"cars"})
	tg := New(Config{})

	in := input(idx, emptyGraph(), []string{"cars", "now"})
	in.POS = []string{"NNS"}
	_, err := tg.Tag(in)
	require.Error(t, err)

	in = input(idx, emptyGraph(), []string{"cars", "now"})
	in.OriginTokens = []string{"cars"}
	_, err = tg.Tag(in)
	require.ErrorIs(t, err, ErrMisalignedInput)
}

func TestIsYear(t *testing.T) {
	for tok, want := range map[string]bool{
		"1999": true, "1600": true, "2199": true, "2024": true,
		"1599": false, "2200": false, "999": false, "19999": false, "19a9": false, "year": false,
	} {
		assert.Equal(t, want, IsYear(tok), tok)
	}
}

func TestIsDigital(t *testing.T) {
	for tok, want := range map[string]bool{
		"4": true, "-3": true, "+12": true, "4.5": true, "10:30": true,
		"": false, "-": false, ".": false, "4a": false, "four": false,
	} {
		assert.Equal(t, want, IsDigital(tok), tok)
	}
}
