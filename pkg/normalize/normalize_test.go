package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr error
	}{
		{
			name: "question mark attached",
			text: "How many cars?",
			want: []string{"How", "many", "cars", "?"},
		},
		{
			name: "space before question mark",
			text: "How many cars ?",
			want: []string{"How", "many", "cars", "?"},
		},
		{
			name: "space before period",
			text: "List all makers .",
			want: []string{"List", "all", "makers", "."},
		},
		{
			name: "exclamation",
			text: "Show me everything!",
			want: []string{"Show", "me", "everything", "!"},
		},
		{
			name: "trailing letter stays attached",
			text: "List all cars by maker",
			want: []string{"List", "all", "cars", "by", "maker"},
		},
		{
			name: "lone punctuation token kept",
			text: "list cars ;",
			want: []string{"list", "cars", ";"},
		},
		{
			name: "no trailing punctuation",
			text: "show cars",
			want: []string{"show", "cars"},
		},
		{
			name: "only punctuation token",
			text: "?",
			want: []string{"?"},
		},
		{
			name:    "blank",
			text:    "   \t ",
			wantErr: ErrEmptyQuestion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.text)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSymbolFilter(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "quoted word", in: []string{"'Ford'"}, want: []string{"'", "Ford", "'"}},
		{name: "open quote", in: []string{"\"New", "York\""}, want: []string{"'", "New", "York", "'"}},
		{name: "curly quotes", in: []string{"“Ford”"}, want: []string{"'", "Ford", "'"}},
		{name: "bare quotes", in: []string{"``", "x", "''"}, want: []string{"'", "x", "'"}},
		{name: "short token untouched", in: []string{"'s"}, want: []string{"'s"}},
		{name: "plain words", in: []string{"list", "cars"}, want: []string{"list", "cars"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SymbolFilter(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	n := New(MapLemmatizer{"cars": "car", "makers": "maker"})

	q, err := n.Normalize("What are the cars made by 'Ford' makers ?")
	require.NoError(t, err)

	assert.Equal(t, []string{"What", "are", "cars", "made", "by", "'", "Ford", "'", "makers", "?"}, q.OriginTokens)
	assert.Equal(t, []string{"what", "are", "car", "made", "by", "'", "ford", "'", "maker", "?"}, q.Tokens)
	assert.Equal(t, []string{"what", "are", "cars", "made", "by", "'", "ford", "'", "makers", "?"}, q.Words)
	assert.Len(t, q.Tokens, len(q.OriginTokens))
}

func TestNormalizeKeepsDegreeWordsUnlemmatized(t *testing.T) {
	n := New(MapLemmatizer{"more": "many", "oldest": "old", "cylinders": "cylinder"})

	q, err := n.Normalize("Which car has more cylinders and the oldest model ?")
	require.NoError(t, err)

	assert.Equal(t, []string{"which", "car", "has", "many", "cylinder", "and", "old", "model", "?"}, q.Tokens)
	assert.Equal(t, []string{"which", "car", "has", "more", "cylinders", "and", "oldest", "model", "?"}, q.Words)
}

func TestNormalizeOnlyArticle(t *testing.T) {
	n := New(nil)

	_, err := n.Normalize("The")
	require.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = n.Normalize("")
	require.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestWords(t *testing.T) {
	n := New(MapLemmatizer{"cars": "car"})

	assert.Equal(t, []string{"car", "model"}, n.Words("cars_model"))
	assert.Equal(t, []string{"car", "maker", "id"}, n.Words("Car Maker  ID"))
}
