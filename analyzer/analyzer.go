// Package analyzer is the scan service: it obtains a Document Snapshot for a
// page, runs the rule engine over it and returns a Report. URL scans are
// cached with a TTL.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wcag-scan/backend/dom"
	"github.com/wcag-scan/backend/metrics"
	"github.com/wcag-scan/backend/rules"
	"github.com/wcag-scan/backend/stats"
)

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// Snapshotter captures a rendered page. browser.Manager implements it.
type Snapshotter interface {
	Capture(ctx context.Context, pageURL string) (*dom.Document, error)
}

// Options configures an Analyzer. Zero values select defaults.
type Options struct {
	CacheTTL     time.Duration
	MaxCacheSize int
	FetchTimeout time.Duration
	UserAgent    string
	MaxBodyBytes int64

	// Browser, when set, captures URL scans instead of the HTTP fetcher.
	Browser Snapshotter

	// Rules overrides the default roster.
	Rules []rules.Rule

	HTTPClient *http.Client
	Stats      *stats.Storage
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Analyzer runs accessibility scans.
type Analyzer struct {
	client       *http.Client
	engine       *rules.Engine
	browser      Snapshotter
	userAgent    string
	maxBodyBytes int64
	fetchTimeout time.Duration

	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	cleanupInterval time.Duration

	stats   *stats.Storage
	metrics *metrics.Metrics
	logger  *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// New creates an Analyzer and starts its cache cleanup loop.
func New(opts Options) *Analyzer {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.MaxCacheSize <= 0 {
		opts.MaxCacheSize = 1000
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "WCAGScan/1.0"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 5 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: opts.FetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	roster := opts.Rules
	if roster == nil {
		roster = rules.DefaultRules(rules.DefaultNamer, opts.Logger)
	}

	a := &Analyzer{
		client:          opts.HTTPClient,
		engine:          rules.NewEngine(opts.Logger, roster...),
		browser:         opts.Browser,
		userAgent:       opts.UserAgent,
		maxBodyBytes:    opts.MaxBodyBytes,
		fetchTimeout:    opts.FetchTimeout,
		cache:           make(map[string]cacheEntry),
		cacheTTL:        opts.CacheTTL,
		maxCacheSize:    opts.MaxCacheSize,
		cleanupInterval: 5 * time.Minute,
		stats:           opts.Stats,
		metrics:         opts.Metrics,
		logger:          opts.Logger,
		done:            make(chan struct{}),
	}

	go a.periodicCleanup()
	return a
}

// Close stops the cleanup loop.
func (a *Analyzer) Close() {
	a.closeOnce.Do(func() { close(a.done) })
}

// Rules returns the engine roster.
func (a *Analyzer) Rules() []rules.Info {
	rs := a.engine.Rules()
	out := make([]rules.Info, len(rs))
	for i, r := range rs {
		out[i] = r.Info()
	}
	return out
}

// Analyze scans pageURL, serving a cached report while it is fresh.
func (a *Analyzer) Analyze(ctx context.Context, pageURL string) (*Report, error) {
	if r, ok := a.cached(pageURL); ok {
		a.recordCache(true)
		return r, nil
	}
	a.recordCache(false)

	report, err := a.AnalyzeWithContext(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	a.store(pageURL, report)
	return report, nil
}

// AnalyzeWithContext scans pageURL without consulting the cache.
func (a *Analyzer) AnalyzeWithContext(ctx context.Context, pageURL string) (*Report, error) {
	start := time.Now()
	if err := validateURL(pageURL); err != nil {
		return nil, err
	}

	source := SourceHTTP
	var doc *dom.Document
	var err error
	if a.browser != nil {
		source = SourceBrowser
		doc, err = a.browser.Capture(ctx, pageURL)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrSnapshot, err)
		}
	} else {
		doc, err = a.fetch(ctx, pageURL)
	}
	if err != nil {
		a.metrics.ObserveScan(source, "error", time.Since(start))
		a.logger.WarnContext(ctx, "analyzer: snapshot failed", "url", pageURL, "source", source, "error", err)
		return nil, err
	}
	return a.run(ctx, doc, pageURL, source, start), nil
}

// AnalyzeHTML scans a host-supplied HTML document.
func (a *Analyzer) AnalyzeHTML(ctx context.Context, pageURL string, r io.Reader) (*Report, error) {
	start := time.Now()
	doc, err := dom.Parse(io.LimitReader(r, a.maxBodyBytes), pageURL)
	if err != nil {
		a.metrics.ObserveScan(SourceHTML, "error", time.Since(start))
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	return a.run(ctx, doc, pageURL, SourceHTML, start), nil
}

// AnalyzeDocument scans an already built snapshot, such as one decoded from
// the wire format.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc *dom.Document) (*Report, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, dom.ErrEmptySnapshot)
	}
	return a.run(ctx, doc, doc.URL, SourceSnapshot, time.Now()), nil
}

func (a *Analyzer) run(ctx context.Context, doc *dom.Document, pageURL, source string, start time.Time) *Report {
	outcome := a.engine.Run(doc)
	elapsed := time.Since(start)

	failed := outcome.Failed()
	if failed == nil {
		failed = []string{}
	}

	report := &Report{
		ID:          newReportID(),
		URL:         pageURL,
		Source:      source,
		ScannedAt:   start.UTC(),
		DurationMs:  elapsed.Milliseconds(),
		Issues:      outcome.Issues,
		Summary:     summarize(outcome.Issues),
		FailedRules: failed,
	}

	a.record(outcome, source, elapsed)
	a.logger.InfoContext(ctx, "analyzer: scan complete",
		"url", pageURL, "source", source, "issues", report.Summary.Total,
		"failed_rules", len(failed), "duration_ms", report.DurationMs)
	return report
}

func (a *Analyzer) record(outcome rules.Outcome, source string, elapsed time.Duration) {
	a.metrics.ObserveScan(source, "ok", elapsed)

	bySeverity := make(map[[2]string]int)
	for _, is := range outcome.Issues {
		bySeverity[[2]string{is.Rule, string(is.Severity)}]++
	}
	for k, n := range bySeverity {
		a.metrics.AddIssues(k[0], k[1], n)
	}
	failed := outcome.Failed()
	for _, name := range failed {
		a.metrics.IncRuleFailure(name)
	}

	if a.stats != nil {
		a.stats.Add(stats.Delta{Scans: 1, Issues: len(outcome.Issues), RuleFailures: len(failed)})
	}
}

func (a *Analyzer) recordCache(hit bool) {
	a.metrics.IncCache(hit)
	if a.stats == nil {
		return
	}
	if hit {
		a.stats.Add(stats.Delta{CacheHits: 1})
	} else {
		a.stats.Add(stats.Delta{CacheMisses: 1})
	}
}

// fetch downloads pageURL and builds a static snapshot from it.
func (a *Analyzer) fetch(ctx context.Context, pageURL string) (*dom.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetch, pageURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || (mt != "text/html" && mt != "application/xhtml+xml") {
			return nil, fmt.Errorf("%w: %s", ErrNotHTML, ct)
		}
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(resp.Body, a.maxBodyBytes)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	doc, err := dom.Parse(bytes.NewReader(buf.Bytes()), resp.Request.URL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshot, err)
	}
	return doc, nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// newReportID returns a time-ordered UUID, falling back to a random one.
func newReportID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
