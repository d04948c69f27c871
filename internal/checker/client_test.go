package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient() *Client {
	return NewClient(ClientConfig{Timeout: 5 * time.Second, RateLimit: 100})
}

func TestFetch_NoRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>home</html>"))
	}))
	defer srv.Close()

	res, err := testClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Redirected {
		t.Errorf("expected no redirect, final URL %s", res.FinalURL)
	}
	if !res.OK() || !res.Reachable() {
		t.Errorf("expected OK and reachable, got status %d", res.StatusCode)
	}
	if !strings.Contains(res.Body, "home") {
		t.Errorf("body snapshot missing, got %q", res.Body)
	}
}

func TestFetch_RedirectDetected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/landed", http.StatusMovedPermanently)
			return
		}
		w.Write([]byte("landed"))
	}))
	defer srv.Close()

	res, err := testClient().Fetch(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Redirected {
		t.Error("expected redirect to be detected")
	}
	if !strings.HasSuffix(res.FinalURL, "/landed") {
		t.Errorf("expected final URL /landed, got %s", res.FinalURL)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected final status 200, got %d", res.StatusCode)
	}
}

func TestFetch_TrailingSlashIsNotARedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	// The server answers at "/", so the final URL gains a slash.
	res, err := testClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Redirected {
		t.Error("a trailing-slash difference must not count as a redirect")
	}
}

func TestFetch_ErrorStatusIsStillReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	res, err := testClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("a 403 is a well-formed answer, got error %v", err)
	}
	if !res.Reachable() {
		t.Error("expected reachable")
	}
	if res.OK() {
		t.Error("403 must not read as OK")
	}
}

func TestHead_Reachability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.Header().Set("X-Frame-Options", "DENY")
	}))
	defer srv.Close()

	res, err := testClient().Head(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Reachable() {
		t.Error("expected reachable")
	}
	if res.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("expected headers to be surfaced")
	}
}

func TestFetch_BodyIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := strings.Repeat("x", 1<<20)
		for i := 0; i < 4; i++ {
			w.Write([]byte(chunk))
		}
	}))
	defer srv.Close()

	res, err := testClient().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Body) > maxBodyBytes {
		t.Errorf("body snapshot exceeds cap: %d bytes", len(res.Body))
	}
}

func TestNormalizeProbeURL(t *testing.T) {
	if got := normalizeProbeURL("https://example.com/"); got != "https://example.com" {
		t.Errorf("unexpected normalization: %s", got)
	}
	if got := normalizeProbeURL("https://example.com"); got != "https://example.com" {
		t.Errorf("unexpected normalization: %s", got)
	}
}
