package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wcag-scan/backend/analyzer"
	"github.com/wcag-scan/backend/api"
	"github.com/wcag-scan/backend/browser"
	"github.com/wcag-scan/backend/config"
	"github.com/wcag-scan/backend/logging"
	"github.com/wcag-scan/backend/mcptool"
	"github.com/wcag-scan/backend/metrics"
	"github.com/wcag-scan/backend/middleware"
	"github.com/wcag-scan/backend/stats"
)

const version = "1.0.0"

func main() {
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio instead of HTTP")
	flag.Parse()

	dotenv := config.LoadDotEnv()

	cfg, errs := config.Load(os.Getenv("WCAG_CONFIG_FILE"))
	if len(errs) > 0 {
		for _, err := range errs {
			slog.Error("config: invalid", "error", err)
		}
		os.Exit(1)
	}

	// Stdout carries the MCP protocol, so logs always go to stderr.
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		slog.Error("logging: setup failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	if dotenv == "" {
		logger.Info("No .env file found, using environment variables")
	}
	logger.Info("config loaded", "summary", cfg.LogSummary())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *mcpMode); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, mcpMode bool) error {
	store, err := stats.NewStorage(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	if err := m.Register(reg); err != nil {
		return err
	}

	opts := analyzer.Options{
		CacheTTL:     cfg.CacheTTL,
		MaxCacheSize: cfg.MaxCacheSize,
		FetchTimeout: cfg.FetchTimeout,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Stats:        store,
		Metrics:      m,
		Logger:       logger,
	}
	if cfg.BrowserEnabled {
		mgr := browser.NewManager(browser.Config{
			RemoteURL:       cfg.BrowserRemoteURL,
			Stealth:         cfg.BrowserStealth,
			NavigateTimeout: cfg.FetchTimeout * 2,
			Logger:          logger,
		})
		defer mgr.Close()
		opts.Browser = mgr
	}
	a := analyzer.New(opts)
	defer a.Close()

	if mcpMode {
		logger.Info("serving MCP over stdio")
		return mcptool.NewServer(a, version).Run(ctx, &mcp.StdioTransport{})
	}

	gin.SetMode(cfg.GinMode)
	statistics := logging.NewStatistics(cfg.DataDir, cfg.DevMode, logger)
	defer func() {
		if err := statistics.Save(); err != nil {
			logger.Error("statistics: final save failed", "error", err)
		}
	}()

	router := api.NewRouter(api.Deps{
		Analyzer:     a,
		Stats:        statistics,
		Metrics:      m,
		Gatherer:     reg,
		Limiter:      middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		Logger:       logger,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", "http://localhost"+cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
