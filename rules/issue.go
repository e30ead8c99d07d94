// Package rules implements the accessibility rule engine: the Rule contract,
// the Engine that runs a roster of rules against one Document Snapshot, and
// the individual WCAG checkers, color contrast first among them.
package rules

import (
	"errors"
	"fmt"
)

// Severity is the closed set of issue severities.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
)

// Valid reports whether s is one of the three supported severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityModerate, SeverityLow:
		return true
	}
	return false
}

// Issue is one reported accessibility defect. It holds no reference to the
// snapshot it was found in and serializes to plain JSON.
type Issue struct {
	ID       string   `json:"id"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Element  string   `json:"element"`
	Details  string   `json:"details,omitempty"`
	WCAGRef  string   `json:"wcagRef"`
	WCAGLink string   `json:"wcagLink"`
	Context  any      `json:"context,omitempty"`
}

// Per-element failures. The offending element is skipped and logged.
var (
	ErrStyleMissing  = errors.New("computed style missing")
	ErrBadFontSize   = errors.New("unparseable font size")
	ErrBadFontWeight = errors.New("unparseable font weight")
)

// RuleError reports a rule whose whole scan failed.
type RuleError struct {
	Rule string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
