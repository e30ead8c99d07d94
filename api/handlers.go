package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wcag-scan/backend/analyzer"
	"github.com/wcag-scan/backend/dom"
	"github.com/wcag-scan/backend/logging"
	"github.com/wcag-scan/backend/middleware"
)

type handler struct {
	analyzer     *analyzer.Analyzer
	stats        *logging.Statistics
	logger       *slog.Logger
	maxBodyBytes int64
}

type scanRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type htmlRequest struct {
	URL  string `json:"url" binding:"omitempty,url"`
	HTML string `json:"html" binding:"required"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) rules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rules": h.analyzer.Rules()})
}

func (h *handler) scanURL(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL provided"})
		return
	}
	c.Set(middleware.ScanTargetKey, req.URL)
	h.logger.Debug("api: scan request", "url", req.URL, "client", c.ClientIP())

	cache := "MISS"
	if h.analyzer.IsCached(req.URL) {
		cache = "HIT"
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), req.URL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("X-Cache", cache)
	c.JSON(http.StatusOK, report)
}

func (h *handler) scanHTML(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var req htmlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request must include html"})
		return
	}
	c.Set(middleware.ScanTargetKey, req.URL)

	report, err := h.analyzer.AnalyzeHTML(c.Request.Context(), req.URL, strings.NewReader(req.HTML))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) scanSnapshot(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	doc, err := dom.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid snapshot: " + err.Error()})
		return
	}
	c.Set(middleware.ScanTargetKey, doc.URL)

	report, err := h.analyzer.AnalyzeDocument(c.Request.Context(), doc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) statistics(c *gin.Context) {
	out := gin.H{"cache": h.analyzer.GetCacheStats()}
	if h.stats != nil {
		for k, v := range h.stats.Snapshot() {
			out[k] = v
		}
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) clearCache(c *gin.Context) {
	h.analyzer.ClearCache()
	h.logger.Info("api: report cache cleared", "client", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"cache": h.analyzer.GetCacheStats()})
}

// fail maps scan errors onto HTTP statuses.
func (h *handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, analyzer.ErrInvalidURL):
		status = http.StatusBadRequest
	case errors.Is(err, analyzer.ErrFetch), errors.Is(err, analyzer.ErrNotHTML):
		status = http.StatusBadGateway
	case errors.Is(err, analyzer.ErrSnapshot):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("api: scan failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": "Failed to scan: " + err.Error()})
}
