package cmd

import (
	"fmt"
	"io"

	"github.com/vqhuy-dev/webaudit-cli/internal/audit"
)

// checklistPrinter renders the ordered progress checklist. Checkers run
// strictly sequentially, so transitions arrive in display order and a
// simple reprint per transition keeps the list truthful.
type checklistPrinter struct {
	out     io.Writer
	items   []audit.ChecklistItem
	index   map[string]int
	summary string
	started bool
}

func newChecklistPrinter(out io.Writer, descriptors []audit.Descriptor) *checklistPrinter {
	p := &checklistPrinter{
		out:     out,
		index:   make(map[string]int),
		summary: audit.SummaryRunning,
	}
	for _, d := range descriptors {
		if !d.Enabled {
			continue
		}
		p.index[d.ID] = len(p.items)
		p.items = append(p.items, audit.ChecklistItem{ID: d.ID, Label: d.Label, Status: audit.ItemPending})
	}
	return p
}

// ItemTransition implements audit.Observer.
func (p *checklistPrinter) ItemTransition(item audit.ChecklistItem, summary string) {
	if idx, ok := p.index[item.ID]; ok {
		p.items[idx] = item
	}
	p.summary = summary
	p.print()
}

func (p *checklistPrinter) print() {
	if p.started {
		// Move the cursor back over the previous frame and redraw.
		fmt.Fprintf(p.out, "\033[%dA", len(p.items)+1)
	}
	p.started = true

	fmt.Fprintf(p.out, "\r\033[K%s\n", colorInfo(p.summary))
	for _, item := range p.items {
		fmt.Fprintf(p.out, "\r\033[K %s %s\n", statusGlyph(string(item.Status)), item.Label)
	}
}
