// Package config loads dashboard settings.
//
// Precedence, lowest first: defaults, optional YAML/TOML/JSON file, .env
// file, SMILEDASH_* environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix namespaces environment variables, e.g. SMILEDASH_SOURCE_SYMBOL
const EnvPrefix = "SMILEDASH"

// Config holds all configuration for the application
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	UI       UIConfig       `mapstructure:"ui"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Alert    AlertConfig    `mapstructure:"alert"`
	Shutdown ShutdownConfig `mapstructure:"shutdown"`
}

type SourceConfig struct {
	Kind        string `mapstructure:"kind"` // synthetic | yahoo
	Symbol      string `mapstructure:"symbol"`
	ExpiryIndex int    `mapstructure:"expiry_index"`
	Side        string `mapstructure:"side"` // calls | puts
	WebURL      string `mapstructure:"web_url"`
	APIURL      string `mapstructure:"api_url"`
	UserAgent   string `mapstructure:"user_agent"`
}

type RefreshConfig struct {
	Period   time.Duration `mapstructure:"period"`
	Timeout  time.Duration `mapstructure:"timeout"` // 0 = period
	Capacity int           `mapstructure:"capacity"`
}

type UIConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	QuitKey      string        `mapstructure:"quit_key"`
	StaleAfter   time.Duration `mapstructure:"stale_after"` // 0 = 3 x refresh period
	FitDegree    int           `mapstructure:"fit_degree"`  // 0 = no fit curve
}

// ChartConfig fixes axis bounds, a 0/0 pair auto-scales that axis
type ChartConfig struct {
	XMin float64 `mapstructure:"x_min"`
	XMax float64 `mapstructure:"x_max"`
	YMin float64 `mapstructure:"y_min"`
	YMax float64 `mapstructure:"y_max"`
}

type TerminalConfig struct {
	Backend string `mapstructure:"backend"` // native | tcell
	Color   string `mapstructure:"color"`   // auto | 256 | truecolor
}

type LogConfig struct {
	File      string `mapstructure:"file"` // Empty disables logging
	Level     string `mapstructure:"level"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

type CacheConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"` // Empty disables the cache
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type AlertConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// keys lists every setting so each one can be bound to its environment variable
var keys = []string{
	"source.kind", "source.symbol", "source.expiry_index", "source.side",
	"source.web_url", "source.api_url", "source.user_agent",
	"refresh.period", "refresh.timeout", "refresh.capacity",
	"ui.poll_interval", "ui.quit_key", "ui.stale_after", "ui.fit_degree",
	"chart.x_min", "chart.x_max", "chart.y_min", "chart.y_max",
	"terminal.backend", "terminal.color",
	"log.file", "log.level", "log.max_size_mb",
	"cache.redis_addr", "cache.redis_password", "cache.redis_db", "cache.ttl",
	"alert.enabled",
	"shutdown.timeout",
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", "synthetic")
	v.SetDefault("source.symbol", "AAPL")
	v.SetDefault("source.expiry_index", 0)
	v.SetDefault("source.side", "calls")
	v.SetDefault("source.web_url", "https://finance.yahoo.com")
	v.SetDefault("source.api_url", "https://query1.finance.yahoo.com")
	v.SetDefault("source.user_agent", "")

	v.SetDefault("refresh.period", 2*time.Second)
	v.SetDefault("refresh.timeout", time.Duration(0))
	v.SetDefault("refresh.capacity", 8)

	v.SetDefault("ui.poll_interval", 16*time.Millisecond)
	v.SetDefault("ui.quit_key", "q")
	v.SetDefault("ui.stale_after", time.Duration(0))
	v.SetDefault("ui.fit_degree", 4)

	v.SetDefault("chart.x_min", 0.0)
	v.SetDefault("chart.x_max", 0.0)
	v.SetDefault("chart.y_min", 0.0)
	v.SetDefault("chart.y_max", 0.0)

	v.SetDefault("terminal.backend", "native")
	v.SetDefault("terminal.color", "auto")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 10)

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl", 3*time.Second)

	v.SetDefault("alert.enabled", false)

	v.SetDefault("shutdown.timeout", 2*time.Second)
}

// LoadOptions selects the optional sources layered over defaults
type LoadOptions struct {
	ConfigFile string         // YAML/TOML/JSON, empty = none
	EnvFile    string         // dotenv file, empty = ".env" if present
	Flags      *pflag.FlagSet // Parsed flags registered by RegisterFlags, may be nil
}

// Load builds a validated Config
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile exports a dotenv file into the process environment
// Variables already set in the environment win over the file
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the dashboard cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Kind {
	case "synthetic", "yahoo":
	default:
		errs = append(errs, fmt.Errorf("source.kind %q: want synthetic or yahoo", c.Source.Kind))
	}
	switch strings.ToLower(c.Source.Side) {
	case "calls", "puts":
	default:
		errs = append(errs, fmt.Errorf("source.side %q: want calls or puts", c.Source.Side))
	}
	if c.Source.Kind == "yahoo" && strings.TrimSpace(c.Source.Symbol) == "" {
		errs = append(errs, errors.New("source.symbol: required for yahoo"))
	}
	if c.Source.ExpiryIndex < 0 {
		errs = append(errs, fmt.Errorf("source.expiry_index %d: must be >= 0", c.Source.ExpiryIndex))
	}

	if c.Refresh.Period <= 0 {
		errs = append(errs, fmt.Errorf("refresh.period %v: must be positive", c.Refresh.Period))
	}
	if c.Refresh.Timeout < 0 {
		errs = append(errs, fmt.Errorf("refresh.timeout %v: must be >= 0", c.Refresh.Timeout))
	}
	if c.Refresh.Capacity < 1 {
		errs = append(errs, fmt.Errorf("refresh.capacity %d: must be >= 1", c.Refresh.Capacity))
	}

	if c.UI.PollInterval < time.Millisecond || c.UI.PollInterval > 250*time.Millisecond {
		errs = append(errs, fmt.Errorf("ui.poll_interval %v: must be within 1ms..250ms", c.UI.PollInterval))
	}
	if utf8.RuneCountInString(c.UI.QuitKey) != 1 {
		errs = append(errs, fmt.Errorf("ui.quit_key %q: must be a single character", c.UI.QuitKey))
	}
	if c.UI.StaleAfter < 0 {
		errs = append(errs, fmt.Errorf("ui.stale_after %v: must be >= 0", c.UI.StaleAfter))
	}
	if c.UI.FitDegree < 0 || c.UI.FitDegree > 8 {
		errs = append(errs, fmt.Errorf("ui.fit_degree %d: must be within 0..8", c.UI.FitDegree))
	}

	if (c.Chart.XMin != 0 || c.Chart.XMax != 0) && c.Chart.XMin >= c.Chart.XMax {
		errs = append(errs, fmt.Errorf("chart.x_min %v must be below chart.x_max %v", c.Chart.XMin, c.Chart.XMax))
	}
	if (c.Chart.YMin != 0 || c.Chart.YMax != 0) && c.Chart.YMin >= c.Chart.YMax {
		errs = append(errs, fmt.Errorf("chart.y_min %v must be below chart.y_max %v", c.Chart.YMin, c.Chart.YMax))
	}

	switch c.Terminal.Backend {
	case "native", "tcell":
	default:
		errs = append(errs, fmt.Errorf("terminal.backend %q: want native or tcell", c.Terminal.Backend))
	}
	switch strings.ToLower(c.Terminal.Color) {
	case "auto", "256", "truecolor", "true", "24bit":
	default:
		errs = append(errs, fmt.Errorf("terminal.color %q: want auto, 256 or truecolor", c.Terminal.Color))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.MaxSizeMB < 0 {
		errs = append(errs, fmt.Errorf("log.max_size_mb %d: must be >= 0", c.Log.MaxSizeMB))
	}

	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl %v: must be positive when redis is set", c.Cache.TTL))
	}
	if c.Shutdown.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown.timeout %v: must be positive", c.Shutdown.Timeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// QuitRune returns the configured quit key
func (c *Config) QuitRune() rune {
	r, _ := utf8.DecodeRuneInString(c.UI.QuitKey)
	return r
}

// RefreshTimeout returns the per-cycle compute timeout
func (c *Config) RefreshTimeout() time.Duration {
	if c.Refresh.Timeout > 0 {
		return c.Refresh.Timeout
	}
	return c.Refresh.Period
}

// StaleAfter returns the age past which a snapshot is flagged stale
func (c *Config) StaleAfter() time.Duration {
	if c.UI.StaleAfter > 0 {
		return c.UI.StaleAfter
	}
	return 3 * c.Refresh.Period
}
