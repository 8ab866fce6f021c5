package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command-line flag names to configuration keys
var flagKeys = map[string]string{
	"source":      "source.kind",
	"symbol":      "source.symbol",
	"expiry":      "source.expiry_index",
	"side":        "source.side",
	"period":      "refresh.period",
	"capacity":    "refresh.capacity",
	"poll":        "ui.poll_interval",
	"quit-key":    "ui.quit_key",
	"stale-after": "ui.stale_after",
	"fit-degree":  "ui.fit_degree",
	"backend":     "terminal.backend",
	"color":       "terminal.color",
	"log-file":    "log.file",
	"log-level":   "log.level",
	"redis":       "cache.redis_addr",
	"alert":       "alert.enabled",
	"shutdown":    "shutdown.timeout",
}

// RegisterFlags defines every overridable flag on fs
// Flag defaults are informational only, an unset flag never overrides other sources
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("env-file", "", "dotenv file, defaults to ./.env when present")

	fs.String("source", "synthetic", "data source: synthetic or yahoo")
	fs.StringP("symbol", "s", "AAPL", "underlying ticker for the yahoo source")
	fs.IntP("expiry", "e", 0, "expiration index, 0 is the nearest")
	fs.String("side", "calls", "smile side: calls or puts")
	fs.Duration("period", 0, "refresh period (default 2s)")
	fs.Int("capacity", 0, "snapshot channel capacity (default 8)")
	fs.Duration("poll", 0, "input poll interval, 1ms..250ms (default 16ms)")
	fs.String("quit-key", "q", "key that exits the dashboard")
	fs.Duration("stale-after", 0, "age at which data is flagged stale (default 3x period)")
	fs.Int("fit-degree", 4, "polynomial fit degree, 0 disables the fit curve")
	fs.String("backend", "native", "terminal backend: native or tcell")
	fs.String("color", "auto", "color mode: auto, 256 or truecolor")
	fs.String("log-file", "", "log file path, empty disables logging")
	fs.String("log-level", "info", "log level")
	fs.String("redis", "", "redis address for the chain cache, empty disables it")
	fs.Bool("alert", false, "beep when data turns stale")
	fs.Duration("shutdown", 0, "bound on waiting for background work at exit (default 2s)")
}

// bindFlags binds changed flags only so defaults above do not mask env or file values
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}
