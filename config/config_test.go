package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.Kind != "synthetic" {
		t.Errorf("Expected synthetic source, got %q", cfg.Source.Kind)
	}
	if cfg.Refresh.Period != 2*time.Second {
		t.Errorf("Expected 2s period, got %v", cfg.Refresh.Period)
	}
	if cfg.Refresh.Capacity != 8 {
		t.Errorf("Expected capacity 8, got %d", cfg.Refresh.Capacity)
	}
	if cfg.UI.PollInterval != 16*time.Millisecond {
		t.Errorf("Expected 16ms poll, got %v", cfg.UI.PollInterval)
	}
	if cfg.QuitRune() != 'q' {
		t.Errorf("Expected quit rune 'q', got %q", cfg.QuitRune())
	}
	if cfg.Terminal.Backend != "native" {
		t.Errorf("Expected native backend, got %q", cfg.Terminal.Backend)
	}
	if cfg.Log.File != "" {
		t.Errorf("Expected logging disabled, got %q", cfg.Log.File)
	}
	if cfg.RefreshTimeout() != cfg.Refresh.Period {
		t.Errorf("Expected timeout to default to period, got %v", cfg.RefreshTimeout())
	}
	if cfg.StaleAfter() != 6*time.Second {
		t.Errorf("Expected stale after 6s, got %v", cfg.StaleAfter())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SMILEDASH_SOURCE_KIND", "yahoo")
	t.Setenv("SMILEDASH_SOURCE_SYMBOL", "MSFT")
	t.Setenv("SMILEDASH_REFRESH_PERIOD", "5s")
	t.Setenv("SMILEDASH_UI_QUIT_KEY", "x")
	t.Setenv("SMILEDASH_ALERT_ENABLED", "true")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.Kind != "yahoo" || cfg.Source.Symbol != "MSFT" {
		t.Errorf("Expected yahoo MSFT, got %s %s", cfg.Source.Kind, cfg.Source.Symbol)
	}
	if cfg.Refresh.Period != 5*time.Second {
		t.Errorf("Expected 5s period, got %v", cfg.Refresh.Period)
	}
	if cfg.QuitRune() != 'x' {
		t.Errorf("Expected quit rune 'x', got %q", cfg.QuitRune())
	}
	if !cfg.Alert.Enabled {
		t.Error("Expected alert enabled from env")
	}
}

func TestLoadFlagsBeatEnv(t *testing.T) {
	t.Setenv("SMILEDASH_SOURCE_SYMBOL", "MSFT")
	t.Setenv("SMILEDASH_REFRESH_CAPACITY", "4")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--symbol", "TSLA", "--poll", "20ms"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg, err := Load(LoadOptions{Flags: fs})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.Symbol != "TSLA" {
		t.Errorf("Expected flag symbol TSLA, got %q", cfg.Source.Symbol)
	}
	if cfg.UI.PollInterval != 20*time.Millisecond {
		t.Errorf("Expected 20ms poll, got %v", cfg.UI.PollInterval)
	}
	// Unset flags leave env values in place
	if cfg.Refresh.Capacity != 4 {
		t.Errorf("Expected env capacity 4, got %d", cfg.Refresh.Capacity)
	}
	if cfg.UI.FitDegree != 4 {
		t.Errorf("Expected default fit degree, got %d", cfg.UI.FitDegree)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smiledash.yaml")
	content := `
source:
  kind: yahoo
  symbol: SPY
  expiry_index: 2
  side: puts
chart:
  x_min: 400
  x_max: 600
terminal:
  backend: tcell
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.Symbol != "SPY" || cfg.Source.ExpiryIndex != 2 || cfg.Source.Side != "puts" {
		t.Errorf("Expected SPY expiry 2 puts, got %+v", cfg.Source)
	}
	if cfg.Chart.XMin != 400 || cfg.Chart.XMax != 600 {
		t.Errorf("Expected chart x [400,600], got [%v,%v]", cfg.Chart.XMin, cfg.Chart.XMax)
	}
	if cfg.Terminal.Backend != "tcell" {
		t.Errorf("Expected tcell backend, got %q", cfg.Terminal.Backend)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SMILEDASH_LOG_LEVEL=debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SMILEDASH_LOG_LEVEL") })

	cfg, err := Load(LoadOptions{EnvFile: path})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected debug level from env file, got %q", cfg.Log.Level)
	}
}

func TestLoadExplicitEnvFileMissing(t *testing.T) {
	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	if err == nil {
		t.Error("Expected error for missing explicit env file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Source:   SourceConfig{Kind: "synthetic", Symbol: "AAPL", Side: "calls"},
			Refresh:  RefreshConfig{Period: time.Second, Capacity: 8},
			UI:       UIConfig{PollInterval: 16 * time.Millisecond, QuitKey: "q", FitDegree: 4},
			Terminal: TerminalConfig{Backend: "native", Color: "auto"},
			Log:      LogConfig{Level: "info"},
			Shutdown: ShutdownConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"source kind", func(c *Config) { c.Source.Kind = "csv" }, "source.kind"},
		{"side", func(c *Config) { c.Source.Side = "both" }, "source.side"},
		{"yahoo needs symbol", func(c *Config) { c.Source.Kind = "yahoo"; c.Source.Symbol = " " }, "source.symbol"},
		{"period", func(c *Config) { c.Refresh.Period = 0 }, "refresh.period"},
		{"capacity", func(c *Config) { c.Refresh.Capacity = 0 }, "refresh.capacity"},
		{"poll too slow", func(c *Config) { c.UI.PollInterval = time.Second }, "ui.poll_interval"},
		{"poll zero", func(c *Config) { c.UI.PollInterval = 0 }, "ui.poll_interval"},
		{"quit key empty", func(c *Config) { c.UI.QuitKey = "" }, "ui.quit_key"},
		{"quit key long", func(c *Config) { c.UI.QuitKey = "qq" }, "ui.quit_key"},
		{"fit degree", func(c *Config) { c.UI.FitDegree = 9 }, "ui.fit_degree"},
		{"x bounds", func(c *Config) { c.Chart.XMin, c.Chart.XMax = 5, 5 }, "chart.x_min"},
		{"backend", func(c *Config) { c.Terminal.Backend = "wasm" }, "terminal.backend"},
		{"color", func(c *Config) { c.Terminal.Color = "mono" }, "terminal.color"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"cache ttl", func(c *Config) { c.Cache.RedisAddr = "localhost:6379" }, "cache.ttl"},
		{"shutdown", func(c *Config) { c.Shutdown.Timeout = 0 }, "shutdown.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error mentioning %s", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Expected error mentioning %s, got %v", tt.field, err)
			}
		})
	}
}

func TestQuitRuneMultibyte(t *testing.T) {
	cfg := &Config{UI: UIConfig{QuitKey: "é"}}
	if cfg.QuitRune() != 'é' {
		t.Errorf("Expected 'é', got %q", cfg.QuitRune())
	}
}
