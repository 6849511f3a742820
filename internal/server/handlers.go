package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nlidb-labs/annotator/internal/backend"
	"github.com/nlidb-labs/annotator/internal/engine"
	"github.com/nlidb-labs/annotator/internal/state"
	"github.com/nlidb-labs/annotator/pkg/schema"
	"github.com/nlidb-labs/annotator/pkg/token"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// defaultListLimit is the number of translations listed when n is not given.
const defaultListLimit = 20

// AnnotateRequest is the body of POST /annotate.
type AnnotateRequest struct {
	Question string `json:"question"`
	DBID     string `json:"db_id"`
}

// TranslateRequest is the body of POST /translate.
type TranslateRequest struct {
	Question   string `json:"question"`
	DBID       string `json:"db_id"`
	Translator string `json:"translator"`
}

// AnnotateResponse is an annotation with its parser-facing span views.
type AnnotateResponse struct {
	*token.AnnotatedQuestion
	ArgTokens [][]string `json:"question_arg"`
	ArgTypes  [][]string `json:"question_arg_type"`
}

// SchemaSummary describes one schema in GET /schemas.
type SchemaSummary struct {
	DBID    string `json:"db_id"`
	Tables  int    `json:"tables"`
	Columns int    `json:"columns"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error      string                   `json:"error"`
	Annotation *token.AnnotatedQuestion `json:"annotation,omitempty"`
}

func newAnnotateResponse(q *token.AnnotatedQuestion) AnnotateResponse {
	return AnnotateResponse{AnnotatedQuestion: q, ArgTokens: q.ArgTokens(), ArgTypes: q.ArgTypes()}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSchemas(w http.ResponseWriter, _ *http.Request) {
	catalog := s.engine.Catalog()
	out := make([]SchemaSummary, 0, catalog.Len())
	for _, id := range catalog.IDs() {
		idx, err := catalog.Get(id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		sc := idx.Schema()
		out = append(out, SchemaSummary{DBID: id, Tables: len(sc.TableNames), Columns: len(sc.ColumnNames)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemas": out})
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	dbID := chi.URLParam(r, "dbID")
	tables, err := s.engine.Catalog().TableColumns(dbID)
	if errors.Is(err, schema.ErrUnknownSchema) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"db_id": dbID, "tables": tables})
}

func (s *Server) handleListTranslators(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"translators": s.engine.Backends().Names()})
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req AnnotateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.require(w, map[string]string{"question": req.Question, "db_id": req.DBID}) {
		return
	}

	q, err := s.engine.Annotate(r.Context(), req.Question, req.DBID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, newAnnotateResponse(q))
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.require(w, map[string]string{"question": req.Question, "db_id": req.DBID, "translator": req.Translator}) {
		return
	}

	res, err := s.engine.Translate(r.Context(), req.Question, req.DBID, req.Translator)
	if err != nil {
		body := ErrorResponse{Error: err.Error()}
		if res != nil {
			body.Annotation = res.Annotation
		}
		writeJSON(w, statusFor(err), body)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListTranslations(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w)
	if !ok {
		return
	}

	limit := defaultListLimit
	if n := r.URL.Query().Get("n"); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil || v < 0 {
			s.writeError(w, http.StatusBadRequest, errors.New("n must be a non-negative integer"))
			return
		}
		limit = v
	}

	list, err := store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []*state.Translation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"translations": list})
}

func (s *Server) handleGetTranslation(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w)
	if !ok {
		return
	}
	t, err := store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTranslation(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w)
	if !ok {
		return
	}
	if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) store(w http.ResponseWriter) (state.Store, bool) {
	store := s.engine.Store()
	if store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("translation history is disabled"))
		return nil, false
	}
	return store, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// require replies 400 for the first empty field, checked in a fixed order.
func (s *Server) require(w http.ResponseWriter, fields map[string]string) bool {
	for _, name := range []string{"db_id", "question", "translator"} {
		v, ok := fields[name]
		if ok && strings.TrimSpace(v) == "" {
			s.writeError(w, http.StatusBadRequest, errors.New(name+" is required"))
			return false
		}
	}
	return true
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case engine.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, backend.ErrNoCandidate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
