package pos

import (
	"context"
	"fmt"
	"time"

	"github.com/nlidb-labs/annotator/internal/httpx"
)

// HTTPTagger calls a remote annotation service.
//
// The service receives {"tokens": [...]} and answers {"tags": [...]}.
type HTTPTagger struct {
	url    string
	client *httpx.Client
}

// NewHTTPTagger creates a tagger for the service at url.
func NewHTTPTagger(url string, timeout time.Duration, retries uint64) *HTTPTagger {
	return &HTTPTagger{url: url, client: httpx.NewClient(timeout, retries)}
}

type tagRequest struct {
	Tokens []string `json:"tokens"`
}

type tagResponse struct {
	Tags []string `json:"tags"`
}

// Tag implements Tagger.
func (h *HTTPTagger) Tag(ctx context.Context, tokens []string) ([]string, error) {
	var resp tagResponse
	if err := h.client.PostJSON(ctx, h.url, tagRequest{Tokens: tokens}, &resp); err != nil {
		return nil, fmt.Errorf("pos service: %w", err)
	}
	if err := CheckAligned(tokens, resp.Tags); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}
