package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nlidb-labs/annotator/internal/backend"
	"github.com/nlidb-labs/annotator/internal/engine"
	"github.com/nlidb-labs/annotator/internal/state"
	"github.com/nlidb-labs/annotator/internal/testutil"
	"github.com/nlidb-labs/annotator/pkg/normalize"
	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const question = "How many cars have 4 cylinders?"

func newTestServer(t *testing.T, withStore bool) *httptest.Server {
	t.Helper()
	f := testutil.WriteFixtures(t)

	cfg := engine.Config{
		SchemasDir:    f.SchemasDir,
		IsAPath:       f.IsA,
		RelatedToPath: f.RelatedTo,
		Lemmatizer:    normalize.IdentityLemmatizer{},
		Logger:        testutil.NewTestLogger(t),
		Backends: []backend.Backend{
			backend.Func{ID: "ok", Fn: func(context.Context, *token.AnnotatedQuestion, *schema.Index) ([]backend.Candidate, error) {
				return []backend.Candidate{{Query: "SELECT count(*) FROM cars_data WHERE Cylinders = 4", Score: 0.9}}, nil
			}},
			backend.Func{ID: "empty", Fn: func(context.Context, *token.AnnotatedQuestion, *schema.Index) ([]backend.Candidate, error) {
				return nil, backend.ErrNoCandidate
			}},
			backend.Func{ID: "broken", Fn: func(context.Context, *token.AnnotatedQuestion, *schema.Index) ([]backend.Candidate, error) {
				return nil, errors.New("out of memory")
			}},
		},
	}
	if withStore {
		store := state.NewSQLiteStore(nil)
		require.NoError(t, store.Open(":memory:"))
		t.Cleanup(func() { _ = store.Close() })
		cfg.Store = store
	}

	eng, err := engine.Load(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(Config{Engine: eng, Logger: testutil.NewTestLogger(t)}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestSchemas(t *testing.T) {
	srv := newTestServer(t, false)

	status, body := do(t, http.MethodGet, srv.URL+"/schemas", nil)
	require.Equal(t, http.StatusOK, status)
	schemas := body["schemas"].([]any)
	require.Len(t, schemas, 2)
	assert.Equal(t, "car_1", schemas[0].(map[string]any)["db_id"])

	status, body = do(t, http.MethodGet, srv.URL+"/schemas/car_1", nil)
	require.Equal(t, http.StatusOK, status)
	tables := body["tables"].(map[string]any)
	assert.Equal(t, []any{"Id", "Cylinders", "Year", "Model"}, tables["cars_data"])
	assert.Equal(t, []any{"Id", "Maker"}, tables["car_makers"])

	status, _ = do(t, http.MethodGet, srv.URL+"/schemas/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, http.MethodGet, srv.URL+"/translators", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"broken", "empty", "ok"}, body["translators"])
}

func TestAnnotate(t *testing.T) {
	srv := newTestServer(t, false)

	status, body := do(t, http.MethodPost, srv.URL+"/annotate", AnnotateRequest{Question: question, DBID: "car_1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "car_1", body["db_id"])
	assert.Len(t, body["spans"], 7)
	types := body["question_arg_type"].([]any)
	assert.Equal(t, []any{"table"}, types[2])
	assert.Equal(t, []any{"value"}, types[4])
	assert.Equal(t, []any{"col"}, types[5])

	tests := []struct {
		name   string
		body   any
		status int
		errMsg string
	}{
		{name: "missing question", body: AnnotateRequest{DBID: "car_1"}, status: http.StatusBadRequest, errMsg: "question is required"},
		{name: "missing db", body: AnnotateRequest{Question: question}, status: http.StatusBadRequest, errMsg: "db_id is required"},
		{name: "unknown db", body: AnnotateRequest{Question: question, DBID: "nope"}, status: http.StatusBadRequest, errMsg: "unknown schema"},
		{name: "only stop words", body: AnnotateRequest{Question: "the", DBID: "car_1"}, status: http.StatusBadRequest, errMsg: "question is empty"},
		{name: "malformed body", body: `{"question":`, status: http.StatusBadRequest, errMsg: "invalid request body"},
		{name: "unknown field", body: `{"question":"x","db_id":"car_1","sql":"1"}`, status: http.StatusBadRequest, errMsg: "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, http.MethodPost, srv.URL+"/annotate", tt.body)
			assert.Equal(t, tt.status, status)
			assert.Contains(t, body["error"], tt.errMsg)
		})
	}
}

func TestTranslate(t *testing.T) {
	srv := newTestServer(t, true)

	status, body := do(t, http.MethodPost, srv.URL+"/translate", TranslateRequest{Question: question, DBID: "car_1", Translator: "ok"})
	require.Equal(t, http.StatusOK, status)
	okID := body["id"].(string)
	assert.NotEmpty(t, okID)
	candidates := body["candidates"].([]any)
	require.Len(t, candidates, 1)
	assert.Equal(t, "SELECT count(*) FROM cars_data WHERE Cylinders = 4", candidates[0].(map[string]any)["query"])

	status, body = do(t, http.MethodPost, srv.URL+"/translate", TranslateRequest{Question: question, DBID: "car_1", Translator: "empty"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body["error"], "no candidate")
	assert.NotNil(t, body["annotation"])

	status, body = do(t, http.MethodPost, srv.URL+"/translate", TranslateRequest{Question: question, DBID: "car_1", Translator: "broken"})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body["error"], "out of memory")

	status, body = do(t, http.MethodPost, srv.URL+"/translate", TranslateRequest{Question: question, DBID: "car_1", Translator: "missing"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "unknown backend")

	status, body = do(t, http.MethodPost, srv.URL+"/translate", TranslateRequest{Question: question, DBID: "car_1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "translator is required")

	// History
	status, body = do(t, http.MethodGet, srv.URL+"/translations", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["translations"], 3)

	status, body = do(t, http.MethodGet, srv.URL+"/translations?n=1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["translations"], 1)

	status, _ = do(t, http.MethodGet, srv.URL+"/translations?n=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, http.MethodGet, srv.URL+"/translations/"+okID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["outcome"])
	assert.Equal(t, question, body["question"])

	status, _ = do(t, http.MethodDelete, srv.URL+"/translations/"+okID, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, http.MethodGet, srv.URL+"/translations/"+okID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, http.MethodDelete, srv.URL+"/translations/"+okID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHistoryDisabled(t *testing.T) {
	srv := newTestServer(t, false)

	status, body := do(t, http.MethodGet, srv.URL+"/translations", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body["error"], "disabled")

	status, body = do(t, http.MethodPost, srv.URL+"/translate", TranslateRequest{Question: question, DBID: "car_1", Translator: "ok"})
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["id"])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer(Config{Port: 0})

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
