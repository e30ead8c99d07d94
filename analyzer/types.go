package analyzer

import (
	"errors"
	"time"

	"github.com/wcag-scan/backend/rules"
)

// Snapshot sources reported in Report.Source.
const (
	SourceHTTP     = "http"
	SourceBrowser  = "browser"
	SourceHTML     = "html"
	SourceSnapshot = "snapshot"
)

// Scan errors.
var (
	ErrInvalidURL = errors.New("analyzer: url must be absolute http(s)")
	ErrFetch      = errors.New("analyzer: fetch failed")
	ErrNotHTML    = errors.New("analyzer: response is not HTML")
	ErrSnapshot   = errors.New("analyzer: snapshot failed")
)

// Report is the result of one scan.
type Report struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Source      string        `json:"source"`
	ScannedAt   time.Time     `json:"scannedAt"`
	DurationMs  int64         `json:"durationMs"`
	Issues      []rules.Issue `json:"issues"`
	Summary     Summary       `json:"summary"`
	FailedRules []string      `json:"failedRules"`
}

// Summary counts issues by severity.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Moderate int `json:"moderate"`
	Low      int `json:"low"`
}

func summarize(issues []rules.Issue) Summary {
	s := Summary{Total: len(issues)}
	for _, is := range issues {
		switch is.Severity {
		case rules.SeverityCritical:
			s.Critical++
		case rules.SeverityModerate:
			s.Moderate++
		case rules.SeverityLow:
			s.Low++
		}
	}
	return s
}

// CacheStats provides statistics about the report cache.
type CacheStats struct {
	Entries     int           `json:"entries"`
	CacheHits   int           `json:"cacheHits"`
	CacheMisses int           `json:"cacheMisses"`
	ScansRun    int           `json:"scansRun"`
	IssuesFound int           `json:"issuesFound"`
	CacheTTL    time.Duration `json:"cacheTTL"`
}
