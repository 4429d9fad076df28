package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skyshield/internal/api"
	"skyshield/internal/config"
	"skyshield/internal/doctrine"
	"skyshield/internal/history"
	"skyshield/internal/logging"
	"skyshield/internal/publish"
	"skyshield/internal/ranker"
	"skyshield/internal/spec"
	"skyshield/internal/storage"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (yaml or json); defaults apply when empty")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	var mgr *config.Manager
	if *configPath != "" {
		m, err := config.NewManager(config.ResolvePath(*configPath))
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		mgr = m
	} else {
		mgr = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := mgr.Get()

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("skyshield starting", "version", version, "config", mgr.Path())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("storage init failed", "err", err)
		os.Exit(1)
	}
	if store != nil {
		initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
		err := store.Init(initCtx)
		initCancel()
		if err != nil {
			logger.Error("storage schema init failed", "err", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	publisher := publish.NewPublisher(cfg.Publish, logger)
	if publisher != nil {
		defer publisher.Close()
	}

	historyStore := history.NewStore(cfg.History.StoreLimit)
	rankerClient := ranker.NewHTTPClient(cfg.Ranker, logger)
	engine := doctrine.NewEngine(cfg, spec.Default(), rankerClient, logger, historyStore, store, publisher)

	stopWatch := make(chan struct{})
	go mgr.Watch(3*time.Second,
		func(next *config.Config) {
			engine.UpdateConfig(next)
			logger.Info("config reloaded", "path", mgr.Path())
		},
		func(err error) {
			logger.Warn("config reload error", "err", err)
		},
		stopWatch,
	)
	defer close(stopWatch)

	api.Start(ctx, mgr, engine, historyStore, logger, version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())
	cancel()
	time.Sleep(200 * time.Millisecond)
}
