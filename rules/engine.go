package rules

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/wcag-scan/backend/dom"
)

// Info describes a rule. WCAGRef and WCAGLink are applied to issues that
// leave their own empty.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	WCAGRef     string `json:"wcagRef"`
	WCAGLink    string `json:"wcagLink"`
}

// Rule is a stateless checker. Scan must treat the document as read-only.
type Rule interface {
	Info() Info
	Scan(doc *dom.Document) ([]Issue, error)
}

// RuleResult records how one rule fared during a run.
type RuleResult struct {
	Rule     string
	Issues   int
	Err      error
	Duration time.Duration
}

// Outcome is the aggregate of one engine run. Issues are ordered by rule
// registration order, then by emission order within each rule.
type Outcome struct {
	Issues  []Issue
	Results []RuleResult
}

// Failed returns the names of rules that failed.
func (o Outcome) Failed() []string {
	var names []string
	for _, r := range o.Results {
		if r.Err != nil {
			names = append(names, r.Rule)
		}
	}
	return names
}

// Engine runs an ordered roster of rules against a snapshot.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// NewEngine creates an Engine with the given roster.
func NewEngine(logger *slog.Logger, rules ...Rule) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: rules, logger: logger}
}

// Register appends a rule to the roster.
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// Rules returns the roster in registration order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// RunAll runs every rule and returns the concatenated issues.
func (e *Engine) RunAll(doc *dom.Document) []Issue {
	return e.Run(doc).Issues
}

// Run invokes each rule against doc in roster order. A rule that returns an
// error or panics contributes no issues; the remaining rules still run.
func (e *Engine) Run(doc *dom.Document) Outcome {
	out := Outcome{Issues: []Issue{}}

	for _, r := range e.rules {
		info := r.Info()
		start := time.Now()

		issues, err := e.runRule(r, info.Name, doc)
		res := RuleResult{Rule: info.Name, Err: err, Duration: time.Since(start)}
		if err != nil {
			e.logger.Error("rules: rule failed", "rule", info.Name, "error", err)
			out.Results = append(out.Results, res)
			continue
		}

		for _, is := range issues {
			if !is.Severity.Valid() {
				e.logger.Error("rules: dropping issue with invalid severity",
					"rule", info.Name, "severity", is.Severity, "element", is.Element)
				continue
			}
			out.Issues = append(out.Issues, finalize(is, info))
			res.Issues++
		}
		out.Results = append(out.Results, res)
	}
	return out
}

func (e *Engine) runRule(r Rule, name string, doc *dom.Document) (issues []Issue, err error) {
	defer func() {
		if p := recover(); p != nil {
			issues = nil
			err = &RuleError{Rule: name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	issues, err = r.Scan(doc)
	if err != nil {
		return nil, &RuleError{Rule: name, Err: err}
	}
	return issues, nil
}

// finalize fills the rule defaults and a stable ID where the rule left
// them empty.
func finalize(is Issue, info Info) Issue {
	is.Rule = info.Name
	if is.WCAGRef == "" {
		is.WCAGRef = info.WCAGRef
	}
	if is.WCAGLink == "" {
		is.WCAGLink = info.WCAGLink
	}
	if is.ID == "" {
		is.ID = info.Name + "-" + IssueHash(is.Element, is.Message)
	}
	return is
}
