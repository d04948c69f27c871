// Package audit sequences the checkers, isolates their failures and
// assembles the final report. It owns the checklist state machine and
// is the only component that knows about every checker.
package audit
