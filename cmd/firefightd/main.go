// Package main provides the firefight Telnet server: each connection plays
// its own skirmish, and combat metrics are served for Prometheus.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/firefight/internal/config"
	"github.com/cory-johannsen/firefight/internal/frontend/handlers"
	"github.com/cory-johannsen/firefight/internal/frontend/telnet"
	"github.com/cory-johannsen/firefight/internal/game/dice"
	"github.com/cory-johannsen/firefight/internal/game/inventory"
	"github.com/cory-johannsen/firefight/internal/observability"
	"github.com/cory-johannsen/firefight/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses built-in defaults")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting firefight server",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Skirmish.Seed != 0 {
		src = dice.NewSeededSource(cfg.Skirmish.Seed)
	}
	src = dice.NewLoggedSource(src, logger)

	content, err := handlers.LoadContent(cfg.Content, src, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	defer content.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewCombatMetrics(reg)

	sk := handlers.NewSkirmish(content, handlers.RulesFromConfig(cfg.Combat), cfg.Skirmish, src,
		inventory.NewFloorManager(), logger, metrics)

	lifecycle := server.NewLifecycle(logger)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		httpSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func() error {
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(ctx)
			},
		})
	}

	acceptor := telnet.NewAcceptor(cfg.Telnet, sk, logger)
	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("server initialized", zap.Duration("startup", time.Since(start)))
	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
