package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vqhuy-dev/webaudit-cli/internal/audit"
)

func TestChecklistPrinter_OnlyEnabledItems(t *testing.T) {
	var buf bytes.Buffer
	p := newChecklistPrinter(&buf, []audit.Descriptor{
		{ID: "a", Label: "Alpha", Enabled: true},
		{ID: "b", Label: "Beta", Enabled: false},
		{ID: "c", Label: "Gamma", Enabled: true},
	})

	if len(p.items) != 2 {
		t.Fatalf("expected 2 items, got %v", p.items)
	}
	if p.items[0].Label != "Alpha" || p.items[1].Label != "Gamma" {
		t.Errorf("unexpected item order: %v", p.items)
	}
}

func TestChecklistPrinter_Transition(t *testing.T) {
	var buf bytes.Buffer
	p := newChecklistPrinter(&buf, []audit.Descriptor{
		{ID: "a", Label: "Alpha", Enabled: true},
		{ID: "b", Label: "Beta", Enabled: true},
	})

	p.ItemTransition(audit.ChecklistItem{ID: "a", Label: "Alpha", Status: audit.ItemTesting}, audit.SummaryRunning)

	out := buf.String()
	if !strings.Contains(out, audit.SummaryRunning) {
		t.Errorf("expected running summary in output:\n%s", out)
	}
	if !strings.Contains(out, "Alpha") || !strings.Contains(out, "Beta") {
		t.Errorf("expected both labels printed:\n%s", out)
	}
	if p.items[0].Status != audit.ItemTesting {
		t.Errorf("transition not applied: %v", p.items[0])
	}
	if p.items[1].Status != audit.ItemPending {
		t.Errorf("untouched item must stay pending: %v", p.items[1])
	}
}

func TestChecklistPrinter_RedrawsOverPreviousFrame(t *testing.T) {
	var buf bytes.Buffer
	p := newChecklistPrinter(&buf, []audit.Descriptor{
		{ID: "a", Label: "Alpha", Enabled: true},
	})

	p.ItemTransition(audit.ChecklistItem{ID: "a", Label: "Alpha", Status: audit.ItemTesting}, audit.SummaryRunning)
	first := buf.String()
	if strings.Contains(first, "\033[2A") {
		t.Error("first frame must not move the cursor up")
	}

	p.ItemTransition(audit.ChecklistItem{ID: "a", Label: "Alpha", Status: audit.ItemSuccess}, audit.SummaryAllOK)
	second := strings.TrimPrefix(buf.String(), first)
	if !strings.Contains(second, "\033[2A") {
		t.Error("second frame should move the cursor back over the previous one")
	}
	if !strings.Contains(second, audit.SummaryAllOK) {
		t.Errorf("expected final summary in redraw:\n%q", second)
	}
}

func TestChecklistPrinter_UnknownItemIgnored(t *testing.T) {
	var buf bytes.Buffer
	p := newChecklistPrinter(&buf, []audit.Descriptor{
		{ID: "a", Label: "Alpha", Enabled: true},
	})

	p.ItemTransition(audit.ChecklistItem{ID: "ghost", Label: "Ghost", Status: audit.ItemError}, audit.SummaryFailures)

	if len(p.items) != 1 || p.items[0].ID != "a" {
		t.Errorf("unknown items must not be inserted: %v", p.items)
	}
	if p.summary != audit.SummaryFailures {
		t.Errorf("summary should still update, got %s", p.summary)
	}
}
