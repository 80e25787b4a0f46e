// Package app собирает сервис: хранилище, HTTP API, метрики, gRPC health и воркеры.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"

	"github.com/vladislavdragonenkov/orderline/internal/health"
	"github.com/vladislavdragonenkov/orderline/internal/metrics"
	"github.com/vladislavdragonenkov/orderline/internal/service/httpapi"
	"github.com/vladislavdragonenkov/orderline/internal/service/idempotency"
	"github.com/vladislavdragonenkov/orderline/internal/service/ordering"
	"github.com/vladislavdragonenkov/orderline/internal/service/outbox"
	"github.com/vladislavdragonenkov/orderline/internal/version"
)

const readHeaderTimeout = 10 * time.Second

// listeners открываются до старта, чтобы ошибка адреса вернулась из Run сразу.
type listeners struct {
	http    net.Listener
	metrics net.Listener
	grpc    net.Listener
}

func (l listeners) close() {
	for _, lis := range []net.Listener{l.http, l.metrics, l.grpc} {
		if lis != nil {
			_ = lis.Close()
		}
	}
}

func listen(cfg Config) (listeners, error) {
	var (
		l   listeners
		err error
	)
	if l.http, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
		return l, fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}
	if l.metrics, err = net.Listen("tcp", cfg.MetricsAddr); err != nil {
		l.close()
		return l, fmt.Errorf("listen metrics %s: %w", cfg.MetricsAddr, err)
	}
	if cfg.GRPCAddr != "" {
		if l.grpc, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			l.close()
			return l, fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
		}
	}
	return l, nil
}

// Run запускает сервис и блокируется до отмены ctx или падения одного из серверов.
// При отмене ctx возвращает ctx.Err().
func Run(ctx context.Context, cfg Config) error {
	return run(ctx, cfg, log.WithField("component", "app"), nil)
}

// run принимает ready, чтобы тесты узнали фактические адреса слушателей.
func run(ctx context.Context, cfg Config, logger *log.Entry, ready func(listeners)) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	repos, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close(logger)

	pubs := openPublishers(cfg.KafkaBrokers, logger)
	defer pubs.close(logger)

	lis, err := listen(cfg)
	if err != nil {
		return err
	}
	defer lis.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	orderingMetrics := metrics.NewOrderingMetricsWithRegisterer(registry)
	articles := ordering.NewArticleService(repos.articles,
		ordering.WithLogger(logger.WithField("component", "article-service")),
		ordering.WithMetrics(orderingMetrics))
	orders := ordering.NewOrderService(repos.orders,
		ordering.WithLogger(logger.WithField("component", "order-service")),
		ordering.WithMetrics(orderingMetrics),
		ordering.WithOutbox(repos.outbox))
	orderLines := ordering.NewOrderLineService(repos.orderLines,
		ordering.WithLogger(logger.WithField("component", "order-line-service")),
		ordering.WithMetrics(orderingMetrics))

	router := httpapi.NewRouter(httpapi.Services{
		Articles:   articles,
		Orders:     orders,
		OrderLines: orderLines,
	},
		httpapi.WithLogger(logger.WithField("component", "http-api")),
		httpapi.WithMetrics(metrics.NewHTTPMetricsWithRegisterer(registry)),
		httpapi.WithIdempotency(repos.idempotency),
		httpapi.WithCORSOrigin(cfg.CORSOrigin),
	)

	checks := health.NewHandler(version.GetVersion())
	if repos.pinger != nil {
		checks.RegisterChecker("storage", health.NewPingChecker("storage", repos.pinger))
	}

	apiServer := &http.Server{Handler: router, ReadHeaderTimeout: readHeaderTimeout}
	opsServer := &http.Server{Handler: opsHandler(registry, checks), ReadHeaderTimeout: readHeaderTimeout}

	var (
		grpcServer *grpc.Server
		grpcHealth *grpchealth.Server
	)
	if lis.grpc != nil {
		grpcServer, grpcHealth = newGRPCServer(registry, promgrpc.NewServerMetrics())
	}

	outboxWorker := outbox.NewWorker(repos.outbox, pubs.events,
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithMetrics(metrics.NewOutboxMetrics(registry)),
		outbox.WithDLQPublisher(pubs.dlq),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)
	cleanupWorker := idempotency.NewCleanupWorker(repos.idempotency,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup-worker")),
		idempotency.WithMetrics(metrics.NewCleanupMetrics(registry)),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)

	if ready != nil {
		ready(lis)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP API слушает %s", lis.http.Addr())
		return serveHTTP(apiServer, lis.http)
	})
	g.Go(func() error {
		logger.Infof("метрики и health checks доступны на %s", lis.metrics.Addr())
		return serveHTTP(opsServer, lis.metrics)
	})
	if grpcServer != nil {
		g.Go(func() error {
			logger.Infof("gRPC health слушает %s", lis.grpc.Addr())
			if err := grpcServer.Serve(lis.grpc); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error { return outboxWorker.Run(gctx) })
	g.Go(func() error { return cleanupWorker.Run(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		checks.Drain()
		if grpcHealth != nil {
			grpcHealth.Shutdown()
		}
		shutdown(cfg.ShutdownTimeout, logger, grpcServer, apiServer, opsServer)
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func serveHTTP(srv *http.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shutdown останавливает серверы, укладываясь в timeout.
func shutdown(timeout time.Duration, logger *log.Entry, grpcServer *grpc.Server, servers ...*http.Server) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
			grpcServer.Stop()
		}
	}

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("http shutdown with error")
		}
	}
}
