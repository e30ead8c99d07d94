package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// StatisticsFile is the file name used under the data directory.
const StatisticsFile = "statistics.json"

// Statistics collects request level statistics for the scan API.
type Statistics struct {
	UniqueVisitors  map[string]time.Time `json:"uniqueVisitors"`  // IP -> last visit
	ScanRequests    int                  `json:"scanRequests"`    // total scan requests
	ErrorCount      int                  `json:"errorCount"`      // failed scan requests
	PopularURLs     map[string]int       `json:"popularUrls"`     // scanned page -> count
	AverageScanTime float64              `json:"averageScanTime"` // milliseconds
	TotalScanTime   float64              `json:"totalScanTime"`
	LastPersisted   time.Time            `json:"lastPersisted"`

	path    string
	devMode bool
	logger  *slog.Logger
	mu      sync.RWMutex
}

// NewStatistics creates statistics persisted under dataDir and loads any
// previously saved state. devMode exposes popular URLs in Snapshot.
func NewStatistics(dataDir string, devMode bool, logger *slog.Logger) *Statistics {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularURLs:    make(map[string]int),
		LastPersisted:  time.Now(),
		path:           filepath.Join(dataDir, StatisticsFile),
		devMode:        devMode,
		logger:         logger,
	}
	if err := s.Load(); err != nil {
		logger.Warn("logging: could not load existing statistics", "path", s.path, "error", err)
	}
	return s
}

// TrackVisitor records a visit from ip.
func (s *Statistics) TrackVisitor(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UniqueVisitors[ip] = time.Now()
}

// TrackScan records one scan request and returns the running total.
func (s *Statistics) TrackScan(target string, elapsed time.Duration, hasError bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ScanRequests++
	if cleaned := cleanURL(target); cleaned != "" {
		s.PopularURLs[cleaned]++
	}
	if hasError {
		s.ErrorCount++
	}
	s.TotalScanTime += float64(elapsed.Milliseconds())
	s.AverageScanTime = s.TotalScanTime / float64(s.ScanRequests)
	return s.ScanRequests
}

// cleanURL reduces a scanned URL to scheme, host and path. Local and API
// URLs are not tracked.
func cleanURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if strings.Contains(u.Host, "localhost") ||
		strings.Contains(u.Host, "127.0.0.1") ||
		strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}

	cleaned := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		cleaned += u.Path
	}
	return strings.TrimSuffix(cleaned, "/")
}

// UniqueVisitors24h returns the number of visitors seen in the last 24 hours.
func (s *Statistics) UniqueVisitors24h() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visitorsSince(time.Now().Add(-24 * time.Hour))
}

func (s *Statistics) visitorsSince(cutoff time.Time) int {
	count := 0
	for _, last := range s.UniqueVisitors {
		if last.After(cutoff) {
			count++
		}
	}
	return count
}

// TopURLs returns the n most scanned pages, most frequent first.
func (s *Statistics) TopURLs(n int) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topURLs(n)
}

func (s *Statistics) topURLs(n int) map[string]int {
	urls := make([]string, 0, len(s.PopularURLs))
	for u := range s.PopularURLs {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool {
		if s.PopularURLs[urls[i]] != s.PopularURLs[urls[j]] {
			return s.PopularURLs[urls[i]] > s.PopularURLs[urls[j]]
		}
		return urls[i] < urls[j]
	})
	if len(urls) > n {
		urls = urls[:n]
	}
	out := make(map[string]int, len(urls))
	for _, u := range urls {
		out[u] = s.PopularURLs[u]
	}
	return out
}

// ErrorRate returns the share of failed scans as a percentage.
func (s *Statistics) ErrorRate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorRate()
}

func (s *Statistics) errorRate() float64 {
	if s.ScanRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.ScanRequests) * 100
}

// Snapshot returns the public view of the statistics. Popular URLs are only
// included in dev mode.
func (s *Statistics) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]any{
		"uniqueVisitors24h": s.visitorsSince(time.Now().Add(-24 * time.Hour)),
		"totalRequests":     s.ScanRequests,
		"errorRate":         s.errorRate(),
		"averageScanTime":   s.AverageScanTime,
	}
	if s.devMode {
		out["popularUrls"] = s.topURLs(5)
	}
	return out
}

// Save persists the statistics.
func (s *Statistics) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastPersisted = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("could not create statistics directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads previously saved statistics. A missing file is not an error.
func (s *Statistics) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularURLs == nil {
		s.PopularURLs = make(map[string]int)
	}
	return nil
}
