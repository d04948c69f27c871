package checker

import (
	"context"
	"time"
)

// Status classifies the outcome of a single check.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Check identifiers. Topology is always first and always enabled; the
// others are selected by the caller.
const (
	CheckTopology  = "topology"
	CheckRobots    = "robots"
	CheckAnalytics = "analytics"
	CheckSSL       = "ssl"
	CheckMeta      = "meta"
	CheckContent   = "content"
)

// CheckResult is the result of a single checker. Details are ordered
// report lines; Analysis carries the checker-specific payload (e.g.
// *TopologyAnalysis for the topology check). Results are immutable once
// returned by a checker.
type CheckResult struct {
	CheckID   string    `json:"check_id"`
	Status    Status    `json:"status"`
	Details   []string  `json:"details,omitempty"`
	Analysis  any       `json:"analysis,omitempty"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// ErrorResult builds a synthetic error-status result preserving the raw
// fault message. The orchestrator uses it when a checker panics or when
// a checker reports a fetch failure.
func ErrorResult(checkID string, err error) CheckResult {
	return CheckResult{
		CheckID:   checkID,
		Status:    StatusError,
		Error:     err.Error(),
		Details:   []string{"Check failed: " + err.Error()},
		CheckedAt: time.Now().UTC(),
	}
}

// Checker is the interface all audit probes implement.
type Checker interface {
	// ID returns the stable check identifier (e.g. "topology").
	ID() string

	// Label returns the human-readable checklist label.
	Label() string

	// Check runs the probe against the target. Implementations must not
	// panic on network failure; a fetch failure is an error-status result.
	Check(ctx context.Context, target Target) CheckResult
}
