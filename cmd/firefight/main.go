// Package main provides the local firefight binary: one skirmish played on
// stdin and stdout.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cory-johannsen/firefight/internal/config"
	"github.com/cory-johannsen/firefight/internal/frontend/handlers"
	"github.com/cory-johannsen/firefight/internal/game/dice"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
	"github.com/cory-johannsen/firefight/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	name := flag.String("name", "", "player callsign; empty prompts for one")
	seed := flag.Uint64("seed", 0, "fix the random seed (0 uses the configured seed or a crypto source)")
	color := flag.Bool("color", true, "colour combat output with ANSI escapes")
	verbose := flag.Bool("verbose", false, "log at the configured level instead of warn")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if !*verbose {
		cfg.Logging.Level = "warn"
	}
	if *name != "" {
		cfg.Skirmish.PlayerName = *name
	}
	if *seed != 0 {
		cfg.Skirmish.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := newSource(cfg.Skirmish.Seed, logger)
	content, err := handlers.LoadContent(cfg.Content, src, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	defer content.Close()

	sk := handlers.NewSkirmish(content, handlers.RulesFromConfig(cfg.Combat), cfg.Skirmish, src, inventory.NewFloorManager(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lineIO := handlers.NewLineIO(os.Stdin, os.Stdout, *color)
	if err := sk.Run(ctx, lineIO, lineIO); err != nil && ctx.Err() == nil {
		logger.Error("skirmish failed", zap.Error(err))
		os.Exit(1)
	}
}

func newSource(seed uint64, logger *zap.Logger) dice.Source {
	if seed != 0 {
		logger.Info("using seeded random source", zap.Uint64("seed", seed))
		return dice.NewLoggedSource(dice.NewSeededSource(seed), logger)
	}
	return dice.NewLoggedSource(dice.NewCryptoSource(), logger)
}
