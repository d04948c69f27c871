package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vqhuy-dev/webaudit-cli/internal/audit"
	"github.com/vqhuy-dev/webaudit-cli/internal/checker"
)

// fakeAuditService returns a canned report or error.
type fakeAuditService struct {
	report *audit.Report
	err    error

	gotDomain string
	gotChecks []string
}

func (f *fakeAuditService) RunAudit(ctx context.Context, domain string, checks []string) (*audit.Report, error) {
	f.gotDomain = domain
	f.gotChecks = checks
	return f.report, f.err
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(Config{Audits: &fakeAuditService{}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

func TestAuditEndpoint_Success(t *testing.T) {
	svc := &fakeAuditService{
		report: &audit.Report{
			Target:  "example.com",
			Summary: audit.SummaryAllOK,
		},
	}
	srv := NewServer(Config{Audits: svc})

	payload := `{"domain":"example.com","checks":["robots","ssl"]}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/audits", strings.NewReader(payload)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.gotDomain != "example.com" {
		t.Errorf("expected domain forwarded, got %q", svc.gotDomain)
	}
	if len(svc.gotChecks) != 2 {
		t.Errorf("expected checks forwarded, got %v", svc.gotChecks)
	}

	var report audit.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Summary != audit.SummaryAllOK {
		t.Errorf("unexpected summary: %s", report.Summary)
	}
}

func TestAuditEndpoint_BadJSON(t *testing.T) {
	srv := NewServer(Config{Audits: &fakeAuditService{}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/audits", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuditEndpoint_MissingDomain(t *testing.T) {
	srv := NewServer(Config{Audits: &fakeAuditService{}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/audits", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAuditEndpoint_InvalidTarget(t *testing.T) {
	svc := &fakeAuditService{err: fmt.Errorf("resolve target: %w", checker.ErrInvalidTarget)}
	srv := NewServer(Config{Audits: svc})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/audits", strings.NewReader(`{"domain":"localhost"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid target should map to 400, got %d", rec.Code)
	}
}

func TestAuditEndpoint_InternalError(t *testing.T) {
	svc := &fakeAuditService{err: fmt.Errorf("backend exploded")}
	srv := NewServer(Config{Audits: svc})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/audits", strings.NewReader(`{"domain":"example.com"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestAuditEndpoint_MethodNotAllowed(t *testing.T) {
	srv := NewServer(Config{Audits: &fakeAuditService{}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/audits", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv := NewServer(Config{Audits: &fakeAuditService{}, RateLimit: 1, RateBurst: 1})

	first := httptest.NewRecorder()
	srv.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	srv.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("burst exhausted, expected 429, got %d", second.Code)
	}
}
