package app

import (
	"net/http"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/orderline/internal/health"
)

// opsHandler обслуживает служебный порт: метрики и пробы.
func opsHandler(registry *prometheus.Registry, checks *health.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.Handle("/healthz", checks)
	mux.HandleFunc("/livez", health.LivenessHandler)
	mux.HandleFunc("/readyz", checks.ReadinessHandler)
	return mux
}

// newGRPCServer поднимает только grpc.health.v1 и reflection для grpcurl.
func newGRPCServer(registry prometheus.Registerer, grpcMetrics *promgrpc.ServerMetrics) (*grpc.Server, *grpchealth.Server) {
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := grpchealth.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	reflection.Register(server)

	grpcMetrics.InitializeMetrics(server)
	registry.MustRegister(grpcMetrics)
	return server, healthServer
}
