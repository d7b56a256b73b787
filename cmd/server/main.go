package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"travel_booking/internal/cache"
	"travel_booking/internal/config"
	"travel_booking/internal/gateway"
	"travel_booking/internal/handlers"
	"travel_booking/internal/kafka"
	"travel_booking/internal/metrics"
	"travel_booking/internal/repository"
	"travel_booking/internal/service"
	"travel_booking/pkg/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New()
	defer func() { _ = log.Sync() }()

	// ---------- config ----------
	cfg := config.Load()

	// ---------- metrics ----------
	metrics.Register()

	// ---------- db ----------
	pool, err := repository.NewPool(cfg.DBDSN)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer pool.Close()

	// ---------- repositories ----------
	outboxRepo := repository.NewOutboxRepository(pool, cfg.OutboxMaxRetries)
	flightRepo := repository.NewFlightRepository(pool, outboxRepo)

	// ---------- cache ----------
	rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rc.Close() }()
	cache.StartRedisSizeCollector(ctx, rc.RawClient(), 30*time.Second, log)

	// ---------- kafka producer + outbox sender ----------
	producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers)
	if err != nil {
		log.Fatal("kafka producer", zap.Error(err))
	}
	defer func() { _ = producer.Close() }()

	sender := service.NewOutboxSender(
		outboxRepo,
		producer,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxRetentionDays,
		cfg.OutboxMaxRetries,
		log,
	)
	sender.Start(ctx)

	metrics.StartDBCollectors(ctx, pool, 10*time.Second, log)

	// ---------- external collaborators ----------
	pricing := gateway.NewHTTPPricingClient(cfg.PricingURL, cfg.GatewayTimeout)
	payments := gateway.NewHTTPPaymentGateway(cfg.PaymentGatewayURL, cfg.GatewayTimeout)
	customers := gateway.NewHTTPCustomerClient(cfg.CustomerURL, cfg.GatewayTimeout)

	// ---------- services ----------
	upserter := service.NewUpsertService(flightRepo, cfg.FlightTopic, rc, log)
	searcher := service.NewSearchService(pricing, cfg.SearchPageSize, rc, cfg.CacheTTL, log)
	coordinator := service.NewPaymentCoordinator(payments, log)

	dispatcher := service.NewBookingDispatcher()
	flightStrategy := service.NewFlightBookingStrategy(coordinator, customers, outboxRepo, cfg.BookingTopic, log)
	if err := dispatcher.Register(service.BookingTypeFlight, flightStrategy); err != nil {
		log.Fatal("register booking strategy", zap.Error(err))
	}

	// ---------- handlers ----------
	fh := handlers.NewFlightHandler(upserter, searcher)
	bh := handlers.NewBookingHandler(dispatcher)

	// ---------- router ----------
	r := chi.NewRouter()
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	handlers.RegisterRoutes(r, fh, bh)

	// ---------- start server ----------
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
}
