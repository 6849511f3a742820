package backend

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nlidb-labs/annotator/internal/httpx"
	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// Request is the document posted to a remote parser.
type Request struct {
	DBID         string         `json:"db_id"`
	Question     string         `json:"question"`
	Tokens       []string       `json:"question_toks"`
	OriginTokens []string       `json:"origin_question_toks"`
	POS          []string       `json:"nltk_pos"`
	ArgTokens    [][]string     `json:"question_arg"`
	ArgTypes     [][]string     `json:"question_arg_type"`
	Spans        []token.Span   `json:"spans"`
	Schema       *schema.Schema `json:"schema"`
}

// Response is the reply of a remote parser.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// NewRequest builds the request document for q.
func NewRequest(q *token.AnnotatedQuestion, idx *schema.Index) Request {
	return Request{
		DBID:         q.DBID,
		Question:     q.Question,
		Tokens:       q.Tokens,
		OriginTokens: q.OriginTokens,
		POS:          q.POS,
		ArgTokens:    q.ArgTokens(),
		ArgTypes:     q.ArgTypes(),
		Spans:        q.Spans,
		Schema:       idx.Schema(),
	}
}

// HTTPBackend forwards annotations to a parser served over HTTP.
//
// A 422 reply means the parser found no candidate.
type HTTPBackend struct {
	name   string
	url    string
	client *httpx.Client
}

// NewHTTPBackend creates a backend posting to url.
func NewHTTPBackend(name, url string, timeout time.Duration, retries uint64) *HTTPBackend {
	return &HTTPBackend{name: name, url: url, client: httpx.NewClient(timeout, retries)}
}

// Name implements Backend.
func (h *HTTPBackend) Name() string { return h.name }

// URL returns the endpoint of the backend.
func (h *HTTPBackend) URL() string { return h.url }

// Parse implements Backend.
func (h *HTTPBackend) Parse(ctx context.Context, q *token.AnnotatedQuestion, idx *schema.Index) ([]Candidate, error) {
	var resp Response
	if err := h.client.PostJSON(ctx, h.url, NewRequest(q, idx), &resp); err != nil {
		var serr *httpx.StatusError
		if errors.As(err, &serr) && serr.Status == http.StatusUnprocessableEntity {
			return nil, ErrNoCandidate
		}
		return nil, &InternalError{Backend: h.name, Err: err}
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrNoCandidate
	}
	return resp.Candidates, nil
}
