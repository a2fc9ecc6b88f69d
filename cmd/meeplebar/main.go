package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"meeplebar/internal/adapters/cli"
	"meeplebar/internal/application"
	"meeplebar/internal/config"
	"meeplebar/internal/domain/entities"
	"meeplebar/internal/infrastructure/i18n"
	"meeplebar/internal/infrastructure/logging"
	"meeplebar/internal/seed"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return 1
	}
	defer closeStore()

	var seedEvents []entities.Event
	if cfg.Seed {
		seedEvents, err = seed.Events()
		if err != nil {
			logger.Error("failed to load seed events", zap.Error(err))
			return 1
		}
	}

	state, err := application.NewState(ctx, store,
		application.WithLogger(logger),
		application.WithSeed(seedEvents),
	)
	if err != nil {
		logger.Error("failed to load state", zap.Error(err))
		return 1
	}

	handler := cli.NewHandler(
		application.NewEventService(state),
		application.NewSubscriptionService(state),
		i18n.NewTranslator(cfg.Locale, logger),
		cfg.Locale,
		os.Stdout,
	)
	return handler.Execute(ctx, os.Args[1:])
}
