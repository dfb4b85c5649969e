// Package api exposes the audit service over HTTP.
package api

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/brandpilot/geo-audit/internal/audit"
	"github.com/brandpilot/geo-audit/internal/auth"
	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auditor runs audits on behalf of a caller
type Auditor interface {
	Run(ctx context.Context, req models.AuditRequest, caller models.Caller) (*models.AuditReport, error)
	Quick(ctx context.Context, req models.AuditRequest, caller models.Caller) (*audit.Summary, error)
	GetStats() audit.Stats
}

// Reports reads and deletes stored reports
type Reports interface {
	Get(ctx context.Context, id string) (*models.AuditReport, error)
	List(ctx context.Context, brand string, page, pageSize int) ([]models.AuditReport, error)
	Delete(ctx context.Context, id string) error
}

var _ Auditor = (*audit.Service)(nil)

// Server holds the HTTP handlers
type Server struct {
	config   *config.Config
	auditor  Auditor
	reports  Reports
	auth     *auth.Middleware
	gatherer prometheus.Gatherer
}

// NewServer creates a new API server. gatherer may be nil, in which case
// /metrics is not served.
func NewServer(cfg *config.Config, auditor Auditor, reports Reports, gatherer prometheus.Gatherer) *Server {
	return &Server{
		config:   cfg,
		auditor:  auditor,
		reports:  reports,
		auth:     auth.NewMiddleware(cfg.JWTSecret, cfg.TrustedProxies...),
		gatherer: gatherer,
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.cors)

	router.HandleFunc("/api/health", s.health).Methods(http.MethodGet, http.MethodOptions)
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	audits := router.PathPrefix("/api/audit").Subrouter()
	audits.Use(s.auth.Authenticate)

	audits.HandleFunc("/run", s.runAudit).Methods(http.MethodPost, http.MethodOptions)
	audits.HandleFunc("/quick", s.quickAudit).Methods(http.MethodPost, http.MethodOptions)
	audits.HandleFunc("/stats", s.stats).Methods(http.MethodGet, http.MethodOptions)
	audits.HandleFunc("/actions/generate-citation", s.generateCitation).Methods(http.MethodPost, http.MethodOptions)
	audits.HandleFunc("/actions/generate-content", s.generateContent).Methods(http.MethodPost, http.MethodOptions)
	audits.HandleFunc("/actions/generate-schema", s.generateSchema).Methods(http.MethodPost, http.MethodOptions)
	audits.HandleFunc("", s.listAudits).Methods(http.MethodGet, http.MethodOptions)
	audits.HandleFunc("/{id}", s.getAudit).Methods(http.MethodGet, http.MethodOptions)
	audits.HandleFunc("/{id}", s.auth.RequireAdmin(s.deleteAudit)).Methods(http.MethodDelete)

	return router
}

// cors answers preflight requests and allows the configured origins
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.allowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) bool {
	return slices.ContainsFunc(s.config.CORSOrigins, func(allowed string) bool {
		return allowed == "*" || strings.EqualFold(allowed, origin)
	})
}
