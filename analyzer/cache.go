package analyzer

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"time"
)

// Cache entry with expiration
type cacheEntry struct {
	report    *Report
	timestamp time.Time
}

// generateCacheKey creates a unique key for the URL
func generateCacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

func (a *Analyzer) periodicCleanup() {
	ticker := time.NewTicker(a.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.cleanup()
		case <-a.done:
			return
		}
	}
}

// cleanup removes expired entries and enforces the size limit.
func (a *Analyzer) cleanup() {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cleanupLocked()
}

func (a *Analyzer) cleanupLocked() {
	now := time.Now()
	for key, entry := range a.cache {
		if now.Sub(entry.timestamp) > a.cacheTTL {
			delete(a.cache, key)
		}
	}

	if len(a.cache) > a.maxCacheSize {
		type aged struct {
			key       string
			timestamp time.Time
		}
		entries := make([]aged, 0, len(a.cache))
		for key, entry := range a.cache {
			entries = append(entries, aged{key, entry.timestamp})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].timestamp.Before(entries[j].timestamp)
		})
		for i := 0; i < len(entries)-a.maxCacheSize; i++ {
			delete(a.cache, entries[i].key)
		}
	}
}

func (a *Analyzer) cached(url string) (*Report, bool) {
	a.cacheMutex.RLock()
	defer a.cacheMutex.RUnlock()

	entry, found := a.cache[generateCacheKey(url)]
	if found && time.Since(entry.timestamp) < a.cacheTTL {
		return entry.report, true
	}
	return nil, false
}

func (a *Analyzer) store(url string, r *Report) {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()

	a.cache[generateCacheKey(url)] = cacheEntry{report: r, timestamp: time.Now()}
	if len(a.cache) > a.maxCacheSize {
		a.cleanupLocked()
	}
}

// IsCached checks if a URL is in the cache and not expired
func (a *Analyzer) IsCached(url string) bool {
	_, ok := a.cached(url)
	return ok
}

// ClearCache clears the report cache
func (a *Analyzer) ClearCache() {
	a.cacheMutex.Lock()
	defer a.cacheMutex.Unlock()
	a.cache = make(map[string]cacheEntry)
}

// GetCacheStats returns statistics about the cache
func (a *Analyzer) GetCacheStats() CacheStats {
	a.cacheMutex.RLock()
	entries := len(a.cache)
	ttl := a.cacheTTL
	a.cacheMutex.RUnlock()

	cs := CacheStats{Entries: entries, CacheTTL: ttl}
	if a.stats != nil {
		month := a.stats.GetCurrentStats()
		cs.CacheHits = month.CacheHits
		cs.CacheMisses = month.CacheMisses
		cs.ScansRun = month.ScansRun
		cs.IssuesFound = month.IssuesFound
	}
	return cs
}
