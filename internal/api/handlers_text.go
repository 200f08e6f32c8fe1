package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docsum/internal/summarize"
)

type extractRequest struct {
	Text string `json:"text"`
}

type askRequest struct {
	Text     string `json:"text"`
	Question string `json:"question"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ext, err := s.pipeline.ExtractKeyInfo(r.Context(), req.Text)
	if err != nil {
		s.pipelineError(w, "extract", err)
		return
	}
	writeJSON(w, http.StatusOK, ext)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	ans, err := s.pipeline.Answer(r.Context(), req.Text, req.Question)
	if err != nil {
		s.pipelineError(w, "ask", err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// pipelineError maps input errors to 400 and provider failures to 502.
func (s *Server) pipelineError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, summarize.ErrNoInput) || errors.Is(err, summarize.ErrNoQuestion) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Error(op+" failed", "error", err)
	jsonError(w, err.Error(), http.StatusBadGateway)
}
