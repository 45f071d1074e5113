package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/beepbasket/backend/config"
	httpDelivery "github.com/beepbasket/backend/internal/delivery/http"
	"github.com/beepbasket/backend/internal/events"
	"github.com/beepbasket/backend/internal/infrastructure/homeassistant"
	"github.com/beepbasket/backend/internal/infrastructure/openfoodfacts"
	"github.com/beepbasket/backend/internal/infrastructure/store"
	"github.com/beepbasket/backend/internal/usecase"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Server.Environment)
	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("list", cfg.HomeAssistant.ListEntity).
		Msg("starting beepbasket backend")

	// 3. Event bus and persisted cache
	bus := events.NewBus(log.Logger)
	cacheStore := store.New(cfg.Cache.Path, bus, log.Logger)
	cacheStore.Load()

	// 4. External collaborators
	catalogClient := openfoodfacts.NewClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.UserAgent,
		cfg.Catalog.Timeout,
		log.Logger,
	)
	listClient := homeassistant.NewClient(
		cfg.HomeAssistant.BaseURL,
		cfg.HomeAssistant.Token,
		cfg.HomeAssistant.ListEntity,
		log.Logger,
	)

	// 5. Usecase layer; the target list must exist before the engine
	// activates.
	syncer := usecase.NewListSyncer(listClient, cfg.HomeAssistant.ListEntity, usecase.ListSyncerConfig{
		WaitAttempts: cfg.Sync.ListWaitAttempts,
		WaitInterval: cfg.Sync.ListWaitInterval,
	}, log.Logger)

	if err := syncer.WaitForList(context.Background()); err != nil {
		log.Error().Err(err).Str("list", cfg.HomeAssistant.ListEntity).Msg("target list unavailable")
		os.Exit(1)
	}

	resolver := usecase.NewResolver(cacheStore, catalogClient, syncer, usecase.ResolverConfig{
		SettleDelay: cfg.Sync.SettleDelay,
	}, log.Logger)

	// 6. Event subscriptions: scans resolve on the publisher's goroutine,
	// the sensor bridge re-fires scanner state changes as scans.
	scanSub := bus.Subscribe(events.TopicBarcodeScanned, func(ev events.Event) {
		resolver.ResolveAndSync(context.Background(), ev.Data["barcode"])
	})
	bridge := homeassistant.NewSensorBridge(bus, cfg.HomeAssistant.SensorEntity, log.Logger)

	// 7. HTTP delivery
	handler := httpDelivery.NewHandler(cacheStore, catalogClient, resolver, bus)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()

	// 8. Graceful shutdown: release subscriptions, drain the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	scanSub.Unsubscribe()
	bridge.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogger(environment string) {
	if environment == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
