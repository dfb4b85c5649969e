package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/brandpilot/geo-audit/internal/actions"
)

func (s *Server) generateCitation(w http.ResponseWriter, r *http.Request) {
	var req actions.CitationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft, err := actions.Citation(req)
	if err != nil {
		s.writeAuditError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) generateContent(w http.ResponseWriter, r *http.Request) {
	var req actions.ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft, err := actions.Content(req, time.Now())
	if err != nil {
		s.writeAuditError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) generateSchema(w http.ResponseWriter, r *http.Request) {
	var req actions.SchemaRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec, err := actions.Schema(req)
	if err != nil {
		s.writeAuditError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "Request body must be JSON"})
		return false
	}
	return true
}
