package checker

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func httpsCellPair(nonWWW, www TopologyCell) *TopologyAnalysis {
	a := &TopologyAnalysis{}
	nonWWW.Scheme, nonWWW.WWW = "https", false
	www.Scheme, www.WWW = "https", true
	a.Cells[0] = nonWWW
	a.Cells[1] = www
	a.Cells[2] = TopologyCell{Scheme: "http", WWW: false}
	a.Cells[3] = TopologyCell{Scheme: "http", WWW: true}
	return a
}

func analyzeOffline(a *TopologyAnalysis) {
	chk := &TopologyChecker{}
	chk.analyze(context.Background(), Target{Domain: "example.com"}, a)
}

func TestAnalyze_WWWRedirectsToNonWWW(t *testing.T) {
	a := httpsCellPair(
		TopologyCell{Reachable: true, FinalURL: "https://example.com"},
		TopologyCell{Reachable: true, Redirected: true, FinalURL: "https://example.com"},
	)

	analyzeOffline(a)

	if a.WWWRedirection != WWWRedirectToNonWWW {
		t.Errorf("expected to-non-www, got %s", a.WWWRedirection)
	}
	if a.PreferredURL != "https://example.com" {
		t.Errorf("unexpected preferred URL: %s", a.PreferredURL)
	}
}

func TestAnalyze_NonWWWRedirectsToWWW(t *testing.T) {
	a := httpsCellPair(
		TopologyCell{Reachable: true, Redirected: true, FinalURL: "https://www.example.com"},
		TopologyCell{Reachable: true, FinalURL: "https://www.example.com"},
	)

	analyzeOffline(a)

	if a.WWWRedirection != WWWRedirectToWWW {
		t.Errorf("expected to-www, got %s", a.WWWRedirection)
	}
}

func TestAnalyze_BothWork(t *testing.T) {
	a := httpsCellPair(
		TopologyCell{Reachable: true, FinalURL: "https://example.com"},
		TopologyCell{Reachable: true, FinalURL: "https://www.example.com"},
	)

	analyzeOffline(a)

	if a.WWWRedirection != WWWRedirectBothWork {
		t.Errorf("expected both-work, got %s", a.WWWRedirection)
	}

	// both-work is a warning condition: sites should canonicalize.
	status, _ := (&TopologyChecker{}).summarize(a)
	if status != StatusWarning {
		t.Errorf("expected warning status for both-work, got %s", status)
	}
}

func TestAnalyze_Unclear(t *testing.T) {
	a := httpsCellPair(
		TopologyCell{},
		TopologyCell{},
	)

	analyzeOffline(a)

	if a.WWWRedirection != WWWRedirectUnclear {
		t.Errorf("expected unclear, got %s", a.WWWRedirection)
	}
	if a.HTTPSWorking {
		t.Error("expected httpsWorking=false with both https cells down")
	}
}

func TestAnalyze_HTTPRedirectsToHTTPS(t *testing.T) {
	a := httpsCellPair(
		TopologyCell{Reachable: true, FinalURL: "https://example.com"},
		TopologyCell{Reachable: true, Redirected: true, FinalURL: "https://example.com"},
	)
	a.Cells[2] = TopologyCell{Scheme: "http", Reachable: true, Redirected: true, FinalURL: "https://example.com"}

	analyzeOffline(a)

	if !a.HTTPRedirectsToHTTPS {
		t.Error("expected httpRedirectsToHttps=true")
	}
}

func TestDetectCDNByHeader(t *testing.T) {
	cells := []TopologyCell{
		{},
		{header: http.Header{"Cf-Ray": []string{"abc-FRA"}}},
	}

	provider, signal := detectCDNByHeader(cells)
	if provider != "Cloudflare" || signal != "header" {
		t.Errorf("expected Cloudflare via header, got %s/%s", provider, signal)
	}

	provider, signal = detectCDNByHeader([]TopologyCell{{header: http.Header{}}})
	if provider != "" || signal != "" {
		t.Errorf("expected no detection, got %s/%s", provider, signal)
	}
}

func TestCheck_MatrixAlwaysHasFourCells(t *testing.T) {
	// An unresolvable domain fails every probe; the matrix still has
	// exactly four populated cells recording the failures.
	chk := &TopologyChecker{
		Client: NewClient(ClientConfig{Timeout: 2 * time.Second, RateLimit: 100}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	result := chk.Check(ctx, Target{Domain: "unreachable.invalid"})

	analysis, ok := result.Analysis.(*TopologyAnalysis)
	if !ok {
		t.Fatalf("expected *TopologyAnalysis payload, got %T", result.Analysis)
	}
	for i, cell := range analysis.Cells {
		if cell.URL == "" {
			t.Errorf("cell %d has no URL", i)
		}
		if cell.Reachable {
			t.Errorf("cell %d should be unreachable", i)
		}
		if cell.Error == "" {
			t.Errorf("cell %d should record the failure", i)
		}
	}
	if result.Status != StatusError {
		t.Errorf("expected error status with HTTPS down, got %s", result.Status)
	}
}

func TestProbeOrder(t *testing.T) {
	expected := []struct {
		scheme string
		www    bool
	}{
		{"https", false},
		{"https", true},
		{"http", false},
		{"http", true},
	}
	for i, p := range probeOrder {
		if p.Scheme != expected[i].scheme || p.WWW != expected[i].www {
			t.Errorf("cell %d: expected %s/www=%v, got %s/www=%v",
				i, expected[i].scheme, expected[i].www, p.Scheme, p.WWW)
		}
	}
}
