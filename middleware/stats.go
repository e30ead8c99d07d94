package middleware

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wcag-scan/backend/logging"
	"github.com/wcag-scan/backend/metrics"
)

// ScanTargetKey is the context key under which scan handlers store the
// page URL they scanned.
const ScanTargetKey = "scanTarget"

// saveEvery is how many scans pass between statistics saves.
const saveEvery = 100

// Stats tracks visitors and scan requests, and observes request metrics.
// Either argument may be nil.
func Stats(stats *logging.Statistics, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		if stats != nil {
			stats.TrackVisitor(c.ClientIP())
		}

		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, strconv.Itoa(status), elapsed)

		if stats == nil || c.Request.Method != "POST" || !strings.HasPrefix(path, "/api/scan") {
			return
		}
		total := stats.TrackScan(c.GetString(ScanTargetKey), elapsed, status >= 400)
		if total%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					slog.Error("middleware: saving statistics failed", "error", err)
				}
			}()
		}
	}
}
