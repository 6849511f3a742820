package output

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveMode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ModeJSON, NewRenderer(&buf, &buf, "").EffectiveMode(), "a buffer is not a terminal")
	assert.Equal(t, ModeText, NewRenderer(&buf, &buf, ModeText).EffectiveMode())
	assert.Equal(t, ModeJSON, NewRenderer(&buf, &buf, ModeJSON).EffectiveMode())
}

func TestRendering(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)

	r.Table(table.Row{"Token", "Tag"}, []table.Row{{"cars", "table"}, {"4", "value"}})
	assert.Contains(t, out.String(), "Token")
	assert.Contains(t, out.String(), "cars")
	assert.Contains(t, out.String(), "value")

	out.Reset()
	require.NoError(t, r.JSON(map[string]int{"n": 1}))
	assert.JSONEq(t, `{"n": 1}`, out.String())

	r.Warnf("careful %d\n", 2)
	assert.Equal(t, "careful 2\n", errOut.String())
}
