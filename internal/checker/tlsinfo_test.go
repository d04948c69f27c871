package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchExternalGrade_Ready(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("host"); got != "example.com" {
			t.Errorf("expected host=example.com, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"READY","endpoints":[{"ipAddress":"93.184.216.34","grade":"A+"},{"ipAddress":"93.184.216.35","grade":"A"}]}`))
	}))
	defer srv.Close()

	chk := &SSLChecker{APIEndpoint: srv.URL, APIClient: srv.Client()}

	endpoints := chk.fetchExternalGrade(context.Background(), "example.com")
	if len(endpoints) != 2 {
		t.Fatalf("expected 2 endpoints, got %v", endpoints)
	}
	if endpoints[0].Grade != "A+" || endpoints[0].IPAddress != "93.184.216.34" {
		t.Errorf("unexpected first endpoint: %+v", endpoints[0])
	}
}

func TestFetchExternalGrade_NotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"IN_PROGRESS","endpoints":[]}`))
	}))
	defer srv.Close()

	chk := &SSLChecker{APIEndpoint: srv.URL, APIClient: srv.Client()}

	if endpoints := chk.fetchExternalGrade(context.Background(), "example.com"); endpoints != nil {
		t.Errorf("in-progress analysis must fall through, got %v", endpoints)
	}
}

func TestFetchExternalGrade_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	chk := &SSLChecker{APIEndpoint: srv.URL, APIClient: srv.Client()}

	if endpoints := chk.fetchExternalGrade(context.Background(), "example.com"); endpoints != nil {
		t.Errorf("non-OK answer must fall through, got %v", endpoints)
	}
}

func TestFetchExternalGrade_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	chk := &SSLChecker{APIEndpoint: srv.URL, APIClient: srv.Client()}

	if endpoints := chk.fetchExternalGrade(context.Background(), "example.com"); endpoints != nil {
		t.Errorf("malformed answer must fall through, got %v", endpoints)
	}
}

func TestCoarseGradeFromHeaders(t *testing.T) {
	grades := map[int]string{4: "A", 3: "B", 2: "C", 1: "D", 0: "E"}

	headerNames := []string{
		"Strict-Transport-Security",
		"Content-Security-Policy",
		"X-Frame-Options",
		"X-Content-Type-Options",
	}
	for count, want := range grades {
		h := http.Header{}
		for _, name := range headerNames[:count] {
			h.Set(name, "x")
		}
		a := AnalyzeSecurityHeaders(h)
		if got := coarseGradeFromHeaders(a); got != want {
			t.Errorf("%d headers: expected grade %s, got %s", count, want, got)
		}
	}
}

func TestSummarizeSSL_ExternalGradeDetail(t *testing.T) {
	analysis := &SSLAnalysis{
		HTTPSReachable: true,
		Grade:          "A+",
		GradeSource:    GradeSourceExternalAPI,
		Endpoints:      []SSLEndpoint{{IPAddress: "1.2.3.4", Grade: "A+"}},
		SecurityHeaders: AnalyzeSecurityHeaders(http.Header{
			"Strict-Transport-Security": []string{"max-age=63072000"},
		}),
	}

	status, details := summarizeSSL(analysis)
	if status != StatusSuccess {
		t.Errorf("expected success, got %s", status)
	}

	found := false
	for _, line := range details {
		if line == "TLS grade A+ (external analysis, 1 endpoint(s))" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected external grade line, got %v", details)
	}
}
