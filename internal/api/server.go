// Package api exposes the audit engine over a small REST surface. The
// core never renders UI; this server only triggers runs and returns the
// assembled report.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vqhuy-dev/webaudit-cli/internal/api/middleware"
	"github.com/vqhuy-dev/webaudit-cli/internal/audit"
	"github.com/vqhuy-dev/webaudit-cli/internal/checker"
)

// AuditService runs one audit per request.
type AuditService interface {
	RunAudit(ctx context.Context, domain string, checks []string) (*audit.Report, error)
}

// AuditRequest is the POST /v1/audits payload.
type AuditRequest struct {
	Domain string   `json:"domain"`
	Checks []string `json:"checks,omitempty"`
}

// Config carries server wiring.
type Config struct {
	Audits    AuditService
	Logger    *zap.Logger
	RateLimit int // requests per second; <=0 disables limiting
	RateBurst int
}

// Server is the HTTP handler for the audit API.
type Server struct {
	audits  AuditService
	logger  *zap.Logger
	limiter *rate.Limiter
	handler http.Handler
}

// NewServer builds the server with its middleware chain.
func NewServer(cfg Config) *Server {
	s := &Server{
		audits: cfg.Audits,
		logger: cfg.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = cfg.RateLimit
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/audits", s.handleAudits)

	s.handler = middleware.RequestID(s.withRateLimit(s.withLogging(mux)))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAudits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Domain == "" {
		writeError(w, http.StatusBadRequest, "domain is required")
		return
	}

	report, err := s.audits.RunAudit(r.Context(), req.Domain, req.Checks)
	if err != nil {
		if errors.Is(err, checker.ErrInvalidTarget) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("audit failed",
			zap.String("domain", req.Domain),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "audit failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
