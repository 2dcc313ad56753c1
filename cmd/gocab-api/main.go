// README: Entry point; loads config, wires services, starts HTTP server and background workers.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gocab/internal/config"
	httptransport "gocab/internal/http"
	"gocab/internal/infra"
	"gocab/internal/logging"
	"gocab/internal/maps"
	"gocab/internal/modules/dispatch"
	"gocab/internal/modules/location"
	"gocab/internal/modules/matching"
	"gocab/internal/modules/pricing"
	"gocab/internal/modules/rejection"
	"gocab/internal/modules/ride"
	"gocab/internal/mq"
	"gocab/internal/notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Error("db init failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	rabbit, err := infra.NewRabbit(cfg.Rabbit.URL)
	if err != nil {
		logger.Error("rabbitmq init failed", "error", err)
		os.Exit(1)
	}
	defer rabbit.Close()

	ridePub, err := mq.NewPublisher(rabbit.Chan, mq.RideExchange)
	if err != nil {
		logger.Error("ride publisher init failed", "error", err)
		os.Exit(1)
	}
	notifyPub, err := mq.NewPublisher(rabbit.Chan, mq.NotifyExchange)
	if err != nil {
		logger.Error("notify publisher init failed", "error", err)
		os.Exit(1)
	}

	routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey, logger)
	if err != nil {
		logger.Error("maps init failed", "error", err)
		os.Exit(1)
	}

	pricingSvc := pricing.NewService(pricing.NewStore(dbPool))
	if err := pricingSvc.Reload(ctx); err != nil {
		logger.Warn("fare rates reload failed, using defaults", "error", err)
	}

	locationStore := location.NewStore(dbPool)
	rideStore := ride.NewPGStore(dbPool)
	rideSvc := ride.NewService(rideStore, pricingSvc, routeSvc, locationStore, logger)

	ledger := rejection.NewPGLedger(dbPool)
	matchingStore := matching.NewStore(redisClient, dbPool)
	locator := matching.NewService(matchingStore, rideStore, ledger, cfg.Dispatch, logger)
	locationSvc := location.NewService(locationStore, matchingStore, logger)

	notifier := notify.NewAMQPNotifier(notifyPub, logger)
	coordinator := dispatch.NewCoordinator(
		rideSvc, locator, ledger, locationStore, notifier, matchingStore, cfg.Dispatch, logger)

	consumer := mq.NewConsumer(rabbit.Chan, logger)
	err = consumer.ConsumeRideCreated(ctx, "dispatch.ride_created",
		func(ctx context.Context, msg mq.RideCreatedMessage) {
			coordinator.HandleRideCreated(ctx, msg.RideID)
		})
	if err != nil {
		logger.Error("ride.created consumer init failed", "error", err)
		os.Exit(1)
	}

	go coordinator.RunOfferTimeoutMonitor(ctx)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:       rideSvc,
		Coordinator: coordinator,
		Location:    locationSvc,
		Bus:         ridePub,
		JWTSecret:   cfg.Auth.JWTSecret,
		Log:         logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	logger.Info("gocab api listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
