package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/smiledash/alert"
	"github.com/lixenwraith/smiledash/cache"
	"github.com/lixenwraith/smiledash/config"
	"github.com/lixenwraith/smiledash/core"
	"github.com/lixenwraith/smiledash/dashboard"
	"github.com/lixenwraith/smiledash/logging"
	"github.com/lixenwraith/smiledash/pipeline"
	"github.com/lixenwraith/smiledash/service"
	"github.com/lixenwraith/smiledash/smile"
	"github.com/lixenwraith/smiledash/status"
	"github.com/lixenwraith/smiledash/terminal"
	"github.com/lixenwraith/smiledash/terminal/tcellterm"
	"github.com/lixenwraith/smiledash/yahoo"
)

func runDashboard(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(logging.Options{
		File:      cfg.Log.File,
		Level:     cfg.Log.Level,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if err != nil {
		return err
	}
	defer closeLog()
	core.SetCrashLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, logger, newTerminal(cfg))
}

// app is the wired set of services around one render loop
type app struct {
	hub  *service.Hub
	loop *dashboard.Loop
}

// build wires sources, services and the render loop from cfg
func build(cfg *config.Config, reg *status.Registry, logger *zap.Logger) (*app, error) {
	hub := service.NewHub(logger)
	ch := pipeline.NewChannel(cfg.Refresh.Capacity)

	var redis *cache.Redis
	if cfg.Cache.RedisAddr != "" {
		redis = cache.NewRedis(cache.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		}, reg, logger)
		if err := hub.Register(redis); err != nil {
			return nil, err
		}
	}

	source, err := buildSource(cfg, redis, logger)
	if err != nil {
		return nil, err
	}

	var deps []string
	if redis != nil {
		deps = append(deps, redis.Name())
	}
	producer := pipeline.NewProducer(source, ch, reg, logger, pipeline.ProducerConfig{
		Period:      cfg.Refresh.Period,
		Timeout:     cfg.RefreshTimeout(),
		StopTimeout: cfg.Shutdown.Timeout,
		DependsOn:   deps,
	})
	if err := hub.Register(producer); err != nil {
		return nil, err
	}

	var staler dashboard.Staler
	if cfg.Alert.Enabled {
		a := alert.New(true, alert.DefaultToneConfig(), alert.SpeakerPlayer{}, logger)
		if err := hub.Register(a); err != nil {
			return nil, err
		}
		staler = a
	}

	loop := dashboard.NewLoop(ch, reg, staler, logger, dashboard.Options{
		PollInterval: cfg.UI.PollInterval,
		QuitKey:      cfg.QuitRune(),
		StaleAfter:   cfg.StaleAfter(),
		FitDegree:    cfg.UI.FitDegree,
		Bounds:       chartBounds(cfg),
	})

	return &app{hub: hub, loop: loop}, nil
}

// buildSource selects the dataset source, reading the chain through redis when configured
func buildSource(cfg *config.Config, redis *cache.Redis, logger *zap.Logger) (pipeline.Source, error) {
	switch cfg.Source.Kind {
	case "synthetic":
		return smile.NewSynthetic(), nil

	case "yahoo":
		side, err := yahoo.ParseSide(cfg.Source.Side)
		if err != nil {
			return nil, err
		}
		client, err := yahoo.NewClient(yahoo.Options{
			WebURL:    cfg.Source.WebURL,
			APIURL:    cfg.Source.APIURL,
			UserAgent: cfg.Source.UserAgent,
			Timeout:   cfg.RefreshTimeout(),
		}, logger)
		if err != nil {
			return nil, err
		}
		var fetcher yahoo.Fetcher = client
		if redis != nil {
			fetcher = yahoo.NewCachedFetcher(client, redis, logger)
		}
		return yahoo.NewSource(fetcher, cfg.Source.Symbol, cfg.Source.ExpiryIndex, side), nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source.Kind)
}

// chartBounds applies the synthetic strike range when no x bounds are configured
func chartBounds(cfg *config.Config) dashboard.Bounds {
	b := dashboard.Bounds{
		XMin: cfg.Chart.XMin,
		XMax: cfg.Chart.XMax,
		YMin: cfg.Chart.YMin,
		YMax: cfg.Chart.YMax,
	}
	if cfg.Source.Kind == "synthetic" && b.XMin == 0 && b.XMax == 0 {
		b.XMin, b.XMax = smile.SyntheticStrikeMin, smile.SyntheticStrikeMax
	}
	return b
}

func newTerminal(cfg *config.Config) terminal.Terminal {
	var modes []terminal.ColorMode
	if cfg.Terminal.Color != "auto" {
		modes = append(modes, terminal.ParseColorMode(cfg.Terminal.Color))
	}
	if cfg.Terminal.Backend == "tcell" {
		return tcellterm.New(modes...)
	}
	return terminal.New(modes...)
}

// run owns the session: services start inside it and stop only after the terminal is restored
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, term terminal.Terminal) error {
	reg := status.NewRegistry()

	a, err := build(cfg, reg, logger)
	if err != nil {
		return err
	}
	if err := a.hub.InitAll(); err != nil {
		return fmt.Errorf("init services: %w", err)
	}

	core.SetCrashTerminal(term)
	defer core.SetCrashTerminal(nil)

	logger.Info("session starting",
		zap.String("source", cfg.Source.Kind),
		zap.String("backend", cfg.Terminal.Backend),
		zap.Duration("period", cfg.Refresh.Period))

	runErr := terminal.RunSession(term, func(t terminal.Terminal) error {
		if err := a.hub.StartAll(); err != nil {
			return fmt.Errorf("start services: %w", err)
		}
		return a.loop.Run(ctx, t)
	})

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
	defer cancel()
	if err := a.hub.StopAll(stopCtx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}

	var renderErr *dashboard.RenderError
	switch {
	case runErr == nil:
		logger.Info("session ended", zap.Any("metrics", reg.Dump()))
	case errors.As(runErr, &renderErr):
		logger.Error("render failed", zap.Error(runErr), zap.Any("metrics", reg.Dump()))
	default:
		logger.Error("session failed", zap.Error(runErr))
	}
	return runErr
}
