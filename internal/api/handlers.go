package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/brandpilot/geo-audit/internal/audit"
	"github.com/brandpilot/geo-audit/internal/auth"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/brandpilot/geo-audit/internal/storage"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	maxBodyBytes = 1 << 20
	// requestGrace is the time left after the audit timeout to build and save the report
	requestGrace = 10 * time.Second
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type listResponse struct {
	Brand    string               `json:"brand"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Reports  []models.AuditReport `json:"reports"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) runAudit(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := s.decodeAudit(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.auditContext(r.Context())
	defer cancel()

	report, err := s.auditor.Run(ctx, req, caller)
	if err != nil {
		s.writeAuditError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) quickAudit(w http.ResponseWriter, r *http.Request) {
	req, caller, ok := s.decodeAudit(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.auditContext(r.Context())
	defer cancel()

	summary, err := s.auditor.Quick(ctx, req, caller)
	if err != nil {
		s.writeAuditError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) getAudit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	report, err := s.reports.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) listAudits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	brand := query.Get("brand")
	if brand == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_error", Message: "brand query parameter is required"})
		return
	}

	page, err := intParam(query.Get("page"), 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_error", Message: "page must be a number"})
		return
	}
	pageSize, err := intParam(query.Get("page_size"), storage.DefaultPageSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_error", Message: "page_size must be a number"})
		return
	}
	if pageSize == 0 {
		pageSize = storage.DefaultPageSize
	}

	reports, err := s.reports.List(r.Context(), brand, page, pageSize)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Brand:    brand,
		Page:     max(page, 1),
		PageSize: min(max(pageSize, 1), storage.MaxPageSize),
		Reports:  reports,
	})
}

func (s *Server) deleteAudit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.reports.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	caller, _ := auth.CallerFrom(r.Context())
	logrus.WithFields(logrus.Fields{"report_id": id, "caller": caller.ID}).Info("Deleted audit report")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.auditor.GetStats())
}

func (s *Server) decodeAudit(w http.ResponseWriter, r *http.Request) (models.AuditRequest, models.Caller, bool) {
	var req models.AuditRequest

	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "No caller identity"})
		return req, caller, false
	}

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: "Request body must be a JSON audit request"})
		return req, caller, false
	}
	return req, caller, true
}

// auditContext outlives the dispatcher's audit timeout, which settles slow
// platforms with fallbacks before this deadline can fire
func (s *Server) auditContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.config.AuditTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.config.AuditTimeout+requestGrace)
}

func (s *Server) writeAuditError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_error", Message: err.Error()})
	case errors.Is(err, audit.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate_limited", Message: err.Error()})
	case errors.Is(err, audit.ErrAggregation):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "aggregation_failed", Message: "No AI platform could be queried, try again later"})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "timeout", Message: "The audit did not finish in time"})
	case errors.Is(err, context.Canceled):
		logrus.WithField("path", r.URL.Path).Info("Client went away before the audit finished")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "cancelled", Message: "The audit was cancelled"})
	default:
		logrus.WithField("path", r.URL.Path).Errorf("Audit failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "The audit failed"})
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "Report not found"})
		return
	}
	logrus.WithField("path", r.URL.Path).Errorf("Report store failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "Could not read reports"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func intParam(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
