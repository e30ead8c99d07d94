package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "GIN_MODE", "DEV_MODE", "DATA_DIR", "LOG_LEVEL", "LOG_FORMAT",
	"CACHE_TTL", "MAX_CACHE_SIZE", "FETCH_TIMEOUT", "USER_AGENT", "MAX_BODY_BYTES",
	"RATE_LIMIT", "RATE_BURST", "BROWSER_ENABLED", "BROWSER_REMOTE_URL", "BROWSER_STEALTH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, errs := Load("")
	if len(errs) != 0 {
		t.Fatalf("Load() errors = %v", errs)
	}
	if cfg.Port != DefaultPort || cfg.GinMode != "release" || cfg.DataDir != DefaultDataDir {
		t.Errorf("server defaults = %+v", cfg)
	}
	if cfg.CacheTTL != DefaultCacheTTL || cfg.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("durations = %v / %v", cfg.CacheTTL, cfg.FetchTimeout)
	}
	if cfg.BrowserEnabled || !cfg.BrowserStealth {
		t.Errorf("browser defaults = enabled %v, stealth %v", cfg.BrowserEnabled, cfg.BrowserStealth)
	}
	if cfg.Addr() != ":8082" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "port: 9000\nlog_level: debug\ncache_ttl: 5m\nbrowser_enabled: true\nrate_limit: 10\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("file over defaults", func(t *testing.T) {
		cfg, errs := Load(path)
		if len(errs) != 0 {
			t.Fatalf("Load() errors = %v", errs)
		}
		if cfg.Port != 9000 || cfg.LogLevel != "debug" || cfg.CacheTTL != 5*time.Minute {
			t.Errorf("cfg = %+v", cfg)
		}
		if !cfg.BrowserEnabled || cfg.RateLimit != 10 {
			t.Errorf("browser/rate = %v/%v", cfg.BrowserEnabled, cfg.RateLimit)
		}
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("PORT", "9100")
		t.Setenv("BROWSER_ENABLED", "off")
		t.Setenv("CACHE_TTL", "90s")
		cfg, errs := Load(path)
		if len(errs) != 0 {
			t.Fatalf("Load() errors = %v", errs)
		}
		if cfg.Port != 9100 || cfg.BrowserEnabled || cfg.CacheTTL != 90*time.Second {
			t.Errorf("cfg = %+v", cfg)
		}
	})
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	if _, errs := Load(filepath.Join(t.TempDir(), "missing.yaml")); len(errs) != 1 {
		t.Errorf("missing file errors = %v", errs)
	}

	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"port out of range", map[string]string{"PORT": "70000"}, ErrInvalidPort},
		{"bad level", map[string]string{"LOG_LEVEL": "verbose"}, ErrInvalidLogLevel},
		{"bad format", map[string]string{"LOG_FORMAT": "xml"}, ErrInvalidLogFormat},
		{"negative ttl", map[string]string{"CACHE_TTL": "-1m"}, ErrInvalidDuration},
		{"zero burst", map[string]string{"RATE_BURST": "0"}, ErrInvalidRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, errs := Load("")
			found := false
			for _, err := range errs {
				if errors.Is(err, tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want %v", errs, tt.want)
			}
		})
	}

	t.Run("unparsable integer", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		if _, errs := Load(""); len(errs) == 0 {
			t.Error("expected parse error")
		}
	})
}
