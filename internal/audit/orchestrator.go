package audit

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vqhuy-dev/webaudit-cli/internal/checker"
)

// ItemStatus is the checklist state machine: pending is the only
// initial state; success, warning and error are terminal (no retries
// within a run).
type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemTesting ItemStatus = "testing"
	ItemSuccess ItemStatus = "success"
	ItemWarning ItemStatus = "warning"
	ItemError   ItemStatus = "error"
)

// Summary headlines recomputed on every transition. Errors dominate
// warnings, which dominate success.
const (
	SummaryRunning  = "Running Checks..."
	SummaryAllOK    = "All Checks Complete"
	SummaryIssues   = "Checks Complete (Some Issues Found)"
	SummaryFailures = "Checks Complete (Some Checks Failed)"
)

// Descriptor describes one check in declaration order.
type Descriptor struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// ChecklistItem is the progress unit for one checker.
type ChecklistItem struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Status ItemStatus `json:"status"`
}

// Observer receives checklist transitions. Implementations must be
// cheap; they run inline between checkers.
type Observer interface {
	// ItemTransition is called after an item changes state; summary is
	// the recomputed headline over all items.
	ItemTransition(item ChecklistItem, summary string)
}

// Report is the final aggregate: one result per executed checker plus a
// completion timestamp. Built once per run, never mutated afterwards.
type Report struct {
	Target      string                `json:"target"`
	Summary     string                `json:"summary"`
	Items       []ChecklistItem       `json:"items"`
	Results     []checker.CheckResult `json:"results"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt time.Time             `json:"completed_at"`
}

// Orchestrator runs one audit at a time over its checker battery.
// It holds no per-run state: each Run builds a fresh checklist, so a
// single orchestrator is safe to reuse across runs.
type Orchestrator struct {
	checkers []checker.Checker
	timeout  time.Duration
	logger   *zap.SugaredLogger
	observer Observer
}

// Config wires an orchestrator.
type Config struct {
	Client       *checker.Client
	Resolver     *checker.Resolver
	TLSAPIURL    string
	CheckTimeout time.Duration
	Logger       *zap.SugaredLogger
	Observer     Observer
}

// New builds the orchestrator with the full battery in declaration
// order. Topology is always first and always enabled.
func New(cfg Config) *Orchestrator {
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}

	return &Orchestrator{
		checkers: []checker.Checker{
			&checker.TopologyChecker{Client: cfg.Client, Resolver: cfg.Resolver},
			&checker.RobotsChecker{Client: cfg.Client},
			&checker.AnalyticsChecker{Client: cfg.Client},
			&checker.SSLChecker{Client: cfg.Client, APIEndpoint: cfg.TLSAPIURL},
			&checker.MetaChecker{Client: cfg.Client},
			&checker.ContentChecker{Client: cfg.Client},
		},
		timeout:  cfg.CheckTimeout,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}
}

// Descriptors materializes the ordered check sequence for a run. The
// sequence is fixed; enabled only toggles the non-topology checks.
func (o *Orchestrator) Descriptors(enabled map[string]bool) []Descriptor {
	descriptors := make([]Descriptor, 0, len(o.checkers))
	for _, c := range o.checkers {
		descriptors = append(descriptors, Descriptor{
			ID:      c.ID(),
			Label:   c.Label(),
			Enabled: c.ID() == checker.CheckTopology || enabled[c.ID()],
		})
	}
	return descriptors
}

// Run executes the enabled checkers strictly in declaration order. A
// checker fault never aborts the run; only target resolution can fail
// the whole audit before any checker starts.
func (o *Orchestrator) Run(ctx context.Context, rawTarget string, enabled map[string]bool) (*Report, error) {
	target, err := checker.ParseTarget(rawTarget)
	if err != nil {
		return nil, fmt.Errorf("resolve target %q: %w", rawTarget, err)
	}

	descriptors := o.Descriptors(enabled)

	report := &Report{
		Target:    target.Domain,
		StartedAt: time.Now().UTC(),
		Items:     make([]ChecklistItem, 0, len(descriptors)),
		Results:   make([]checker.CheckResult, 0, len(descriptors)),
	}
	active := make([]checker.Checker, 0, len(descriptors))
	for i, d := range descriptors {
		if !d.Enabled {
			continue
		}
		report.Items = append(report.Items, ChecklistItem{ID: d.ID, Label: d.Label, Status: ItemPending})
		active = append(active, o.checkers[i])
	}

	for i, chk := range active {
		if ctx.Err() != nil {
			// Cancellation stops issuing new checkers; the remaining
			// items settle as errors rather than staying pending.
			for j := i; j < len(active); j++ {
				report.Items[j].Status = ItemError
				report.Results = append(report.Results,
					checker.ErrorResult(active[j].ID(), fmt.Errorf("audit cancelled: %w", ctx.Err())))
				o.notify(report, j)
			}
			break
		}

		o.transition(report, i, ItemTesting)
		o.logger.Debugw("running check", "check", chk.ID(), "target", target.Domain)

		result := o.invoke(ctx, chk, target)
		report.Results = append(report.Results, result)
		o.transition(report, i, itemStatusFor(result.Status))
	}

	report.CompletedAt = time.Now().UTC()
	report.Summary = summarize(report.Items)
	return report, nil
}

// invoke wraps one checker call: per-check timeout plus panic recovery
// into a synthetic error result, so one misbehaving checker cannot
// abort the audit.
func (o *Orchestrator) invoke(ctx context.Context, chk checker.Checker, target checker.Target) (result checker.CheckResult) {
	checkCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Errorw("check panicked", "check", chk.ID(), "panic", r)
			result = checker.ErrorResult(chk.ID(), fmt.Errorf("check panicked: %v", r))
		}
	}()

	result = chk.Check(checkCtx, target)
	if result.CheckID == "" {
		result.CheckID = chk.ID()
	}
	return result
}

func (o *Orchestrator) transition(report *Report, idx int, status ItemStatus) {
	report.Items[idx].Status = status
	o.notify(report, idx)
}

func (o *Orchestrator) notify(report *Report, idx int) {
	if o.observer != nil {
		o.observer.ItemTransition(report.Items[idx], summarize(report.Items))
	}
}

func itemStatusFor(s checker.Status) ItemStatus {
	switch s {
	case checker.StatusSuccess:
		return ItemSuccess
	case checker.StatusWarning:
		return ItemWarning
	default:
		return ItemError
	}
}

// summarize scans all items' statuses for the headline. While any item
// is still pending or testing the audit reads as running.
func summarize(items []ChecklistItem) string {
	hasWarning := false
	hasError := false
	for _, item := range items {
		switch item.Status {
		case ItemPending, ItemTesting:
			return SummaryRunning
		case ItemWarning:
			hasWarning = true
		case ItemError:
			hasError = true
		}
	}
	switch {
	case hasError:
		return SummaryFailures
	case hasWarning:
		return SummaryIssues
	default:
		return SummaryAllOK
	}
}
