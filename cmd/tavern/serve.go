package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/tavernkeep/tavern/internal/randutil"
	"github.com/tavernkeep/tavern/internal/server"
)

// ServeCmd contains the server configuration
type ServeCmd struct {
	Config string `kong:"default='tavern.hcl',help='Path to HCL configuration file'"`
	Addr   string `kong:"help='Listen address, overrides the config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed (optional)'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(cfg.Server.LogLevel, c.Debug)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else if cfg.Games.Seed != nil {
		seed = *cfg.Games.Seed
		logger.Info("Using configured seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)

	addr := cfg.ListenAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	srv := server.NewServer(addr, logger)
	console := server.NewConsoleAnnouncer(os.Stdout)
	service := server.NewGameService(logger, cfg, srv, rng, console)
	srv.SetGameService(service)

	pollInterval := time.Duration(cfg.Server.RosterPollSeconds) * time.Second
	poller := server.NewRosterPoller(service, pollInterval, quartz.NewReal(), logger)

	logger.Info("Starting tavern",
		"addr", addr,
		"darts_start_score", cfg.Games.DartsStartScore,
		"deathroll_start_max", cfg.Games.DeathrollStartMax,
		"roster_poll", pollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		service.Run(ctx)
		return nil
	})
	g.Go(func() error {
		poller.Run(ctx)
		return nil
	})
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// CheckConfigCmd validates a configuration file and prints the result
type CheckConfigCmd struct {
	Config string `kong:"arg,default='tavern.hcl',help='Path to HCL configuration file'"`
}

func (c *CheckConfigCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("%s is valid (listen %s)\n", c.Config, cfg.ListenAddress())
	return nil
}

func setupLogger(level string, debug bool) *log.Logger {
	logLevel := log.InfoLevel
	switch level {
	case "debug":
		logLevel = log.DebugLevel
	case "warn":
		logLevel = log.WarnLevel
	case "error":
		logLevel = log.ErrorLevel
	}
	if debug {
		logLevel = log.DebugLevel
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           logLevel,
	})
}
