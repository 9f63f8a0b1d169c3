package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/foodshop/internal/health"
	"github.com/vladislavdragonenkov/foodshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/foodshop/internal/service/catalog"
	"github.com/vladislavdragonenkov/foodshop/internal/service/order"
	outboxworker "github.com/vladislavdragonenkov/foodshop/internal/service/outbox"
	"github.com/vladislavdragonenkov/foodshop/internal/service/payment"
	"github.com/vladislavdragonenkov/foodshop/internal/service/promotion"
	"github.com/vladislavdragonenkov/foodshop/internal/transport/rest"
	"github.com/vladislavdragonenkov/foodshop/internal/version"
)

func Run(ctx context.Context, cfg *Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	// Kafka опционален: без brokers события остаются в outbox.
	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		kafkaProducer = nil
	}
	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, cfg.KafkaTopic)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outboxworker.NewWorker(
			deps.Outbox,
			publisher,
			outboxworker.WithLogger(logger.WithField("component", "outbox-worker")),
			outboxworker.WithDLQPublisher(dlqPublisher),
			outboxworker.WithPollInterval(cfg.OutboxPollInterval),
		)
		go worker.Run(ctx)
	}

	catalogSvc := catalog.NewService(deps.Foods, logger.WithField("component", "catalog"))
	orderSvc := order.NewService(deps.Orders, deps.Foods, deps.Outbox, logger.WithField("component", "order"))
	paymentSvc := payment.NewService(deps.Payments, deps.Orders, deps.Outbox, logger.WithField("component", "payment"))
	promotionSvc := promotion.NewService(deps.Promotions, deps.Outbox, logger.WithField("component", "promotion"))

	router := rest.NewRouter(
		rest.NewFoodHandler(catalogSvc, logger.WithField("component", "rest.foods")),
		rest.NewOrderHandler(orderSvc, logger.WithField("component", "rest.orders")),
		rest.NewPaymentHandler(paymentSvc, logger.WithField("component", "rest.payments")),
		rest.NewPromotionHandler(promotionSvc, logger.WithField("component", "rest.promotions")),
		logger.WithField("component", "rest"),
	)

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.Store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
