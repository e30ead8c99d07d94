package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wcag-scan/backend/logging"
	"github.com/wcag-scan/backend/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(nil))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := perform(r, http.MethodGet, "/boom")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Error("one token should refill after a second")
	}

	now = now.Add(time.Hour)
	rl.Allow("c")
	if _, ok := rl.tokens["a"]; ok {
		t.Error("idle bucket should be swept")
	}

	t.Run("middleware", func(t *testing.T) {
		r := gin.New()
		r.Use(NewRateLimiter(0.001, 1).RateLimit())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := perform(r, http.MethodGet, "/"); w.Code != http.StatusOK {
			t.Errorf("first status = %d", w.Code)
		}
		if w := perform(r, http.MethodGet, "/"); w.Code != http.StatusTooManyRequests {
			t.Errorf("second status = %d, want 429", w.Code)
		}
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.POST("/api/scan", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodOptions, "/api/scan")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestStats(t *testing.T) {
	st := logging.NewStatistics(t.TempDir(), true, nil)
	m := metrics.New()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.Use(Stats(st, m))
	r.POST("/api/scan", func(c *gin.Context) {
		c.Set(ScanTargetKey, "https://example.com/page")
		c.Status(http.StatusOK)
	})
	r.POST("/api/scan/html", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodPost, "/api/scan")
	perform(r, http.MethodPost, "/api/scan/html")
	perform(r, http.MethodGet, "/api/health")

	if st.ScanRequests != 2 || st.ErrorCount != 1 {
		t.Errorf("scans = %d, errors = %d", st.ScanRequests, st.ErrorCount)
	}
	if st.TopURLs(5)["https://example.com/page"] != 1 {
		t.Errorf("popular = %v", st.TopURLs(5))
	}
	if n, err := testutil.GatherAndCount(reg, metrics.MetricHTTPRequestsTotal); err != nil || n != 3 {
		t.Errorf("request series = %d, %v", n, err)
	}
}
