package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/sjson"

	"github.com/indicesp/indicesp/pkg/archival"
	"github.com/indicesp/indicesp/pkg/dashboard"
	"github.com/indicesp/indicesp/pkg/storage"
	"github.com/indicesp/indicesp/pkg/submission"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError answers with {"error": message, "kind": kind[, "field": field]}.
func writeError(w http.ResponseWriter, status int, kind, msg, field string) {
	body, _ := sjson.Set(`{}`, "error", msg)
	body, _ = sjson.Set(body, "kind", kind)
	if field != "" {
		body, _ = sjson.Set(body, "field", field)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body+"\n")
}

// writeServiceError maps submission and storage errors to HTTP answers.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var fe *submission.FieldError
	switch {
	case errors.As(err, &fe):
		kind := "invalid_submission"
		if k := archival.KindOf(err); k != 0 {
			kind = k.String()
		}
		writeError(w, http.StatusUnprocessableEntity, kind, fe.Message(), fe.Field)
	case errors.Is(err, submission.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Contribuição não encontrada", "")
	case errors.Is(err, submission.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "already_decided", "Esta contribuição já foi moderada", "")
	default:
		s.log.Errorf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "Erro interno", "")
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

type catalogResponse struct {
	Supermarkets []supermarketEntry `json:"supermarkets"`
	Products     []string           `json:"products"`
	Units        []string           `json:"units"`
	Brands       []string           `json:"brands"`
}

type supermarketEntry struct {
	Name    string   `json:"name"`
	Domains []string `json:"domains"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	c := s.subs.Catalog()
	resp := catalogResponse{
		Products: c.Products().Items(),
		Units:    c.Units().Items(),
		Brands:   c.Brands().Items(),
	}
	for _, m := range c.Supermarkets() {
		resp.Supermarkets = append(resp.Supermarkets, supermarketEntry{Name: m.Name, Domains: m.Domains})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.queue.QueueStats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Mock().WithQueue(stats, s.now().UTC()))
}

type statsResponse struct {
	Counts       map[storage.Status]int `json:"counts"`
	Supermarkets []storage.QueueStats   `json:"supermarkets"`
	RecentEvents []storage.Event        `json:"recent_events"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	counts, err := s.queue.CountByStatus(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	markets, err := s.queue.QueueStats(ctx)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if markets == nil {
		markets = []storage.QueueStats{}
	}
	events, err := s.queue.ListRecentEvents(ctx, 20)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Counts: counts, Supermarkets: markets, RecentEvents: events})
}

type validateRequest struct {
	URL   string `json:"url"`
	Brand string `json:"brand"`
}

type validateResponse struct {
	Valid bool           `json:"valid"`
	Date  *archival.Date `json:"date,omitempty"`
	Kind  string         `json:"kind,omitempty"`
	Error string         `json:"error,omitempty"`
}

// handleValidate runs the capture check alone. A failed check is still a
// successful request and answers 200 with valid=false.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), "")
		return
	}
	d, err := s.validator.Validate(req.URL, req.Brand)
	if err != nil {
		k := archival.KindOf(err)
		writeJSON(w, http.StatusOK, validateResponse{Kind: k.String(), Error: k.Message()})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true, Date: &d})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := storage.ListOptions{
		Status:      storage.Status(q.Get("status")),
		Supermarket: q.Get("supermarket"),
	}
	if opts.Status != "" && !opts.Status.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", "status must be pending, approved or rejected", "status")
		return
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a non-negative integer", "limit")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "since must be an RFC 3339 timestamp", "since")
			return
		}
		opts.Since = t
	}

	subs, err := s.subs.List(r.Context(), opts)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var f submission.Form
	if err := decodeBody(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), "")
		return
	}
	sub, err := s.subs.Submit(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/api/submissions/"+sub.ID)
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type decisionRequest struct {
	Moderator string `json:"moderator"`
	Reason    string `json:"reason"`
}

func (s *Server) readDecision(w http.ResponseWriter, r *http.Request) (decisionRequest, bool) {
	var req decisionRequest
	if r.ContentLength == 0 {
		return req, true
	}
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), "")
		return req, false
	}
	return req, true
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readDecision(w, r)
	if !ok {
		return
	}
	sub, err := s.subs.Approve(r.Context(), r.PathValue("id"), req.Moderator)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readDecision(w, r)
	if !ok {
		return
	}
	sub, err := s.subs.Reject(r.Context(), r.PathValue("id"), req.Moderator, req.Reason)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
