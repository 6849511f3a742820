package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/nlidb-labs/annotator/internal/cli"
	"github.com/nlidb-labs/annotator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "annotator v")
}

func TestHelpCommand(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, want := range []string{"annotate", "translate", "schemas", "translators", "history", "serve"} {
		assert.Contains(t, out, want)
	}
}

func TestAnnotateWithConfigFile(t *testing.T) {
	f := testutil.WriteFixtures(t)
	cfgPath := filepath.Join(f.Dir, "annotator.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
schemas_dir: schemas
concepts:
  is_a: concepts/english_IsA.json
  related_to: concepts/english_RelatedTo.json
state_path: ""
output: json
`), 0o600))

	out, err := run(t, "--config", cfgPath, "annotate", "car_1", "Which", "model", "is", "made", "by", "Toyota", "?")
	require.NoError(t, err)

	var got struct {
		ArgTypes [][]string `json:"question_arg_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got.ArgTypes, []string{"maker"})
}

func TestInvalidConfig(t *testing.T) {
	f := testutil.WriteFixtures(t)
	_, err := run(t, "--schemas-dir", f.SchemasDir, "--output", "xml", "schemas")
	assert.ErrorContains(t, err, "invalid output format")
}
