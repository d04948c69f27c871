package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupA_FirstARecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "example.com" {
			t.Errorf("expected name=example.com, got %s", got)
		}
		if got := r.URL.Query().Get("type"); got != "A" {
			t.Errorf("expected type=A, got %s", got)
		}
		w.Header().Set("Content-Type", "application/dns-json")
		// CNAME chain (type 5) precedes the A record and must be skipped.
		w.Write([]byte(`{"Answer":[
			{"type":5,"data":"edge.example.net."},
			{"type":1,"data":"93.184.216.34"},
			{"type":1,"data":"93.184.216.35"}
		]}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL)
	r.HTTPClient = srv.Client()

	ip, err := r.LookupA(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ip != "93.184.216.34" {
		t.Errorf("expected first A record, got %s", ip)
	}
}

func TestLookupA_NoAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":3}`))
	}))
	defer srv.Close()

	r := NewResolver(srv.URL)
	r.HTTPClient = srv.Client()

	ip, err := r.LookupA(context.Background(), "nxdomain.example")
	if err != nil {
		t.Fatalf("a missing Answer array is not an error, got %v", err)
	}
	if ip != "" {
		t.Errorf("expected empty IP, got %s", ip)
	}
}

func TestLookupA_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewResolver(srv.URL)
	r.HTTPClient = srv.Client()

	if _, err := r.LookupA(context.Background(), "example.com"); err == nil {
		t.Error("expected error for non-OK status")
	}
}

func TestNewResolver_DefaultEndpoint(t *testing.T) {
	r := NewResolver("")
	if r.Endpoint != defaultDoHEndpoint {
		t.Errorf("expected default endpoint, got %s", r.Endpoint)
	}
}
