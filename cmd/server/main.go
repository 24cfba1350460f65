// Package main is the entry point for the Bridge Route External Adapter, an
// aggregation service that discovers, ranks and prepares cross-chain bridge
// transfers across multiple bridge protocols.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/bridge-route-ea/internal/adapter"
	"github.com/yourorg/bridge-route-ea/internal/aggregate"
	"github.com/yourorg/bridge-route-ea/internal/chain"
	"github.com/yourorg/bridge-route-ea/internal/circuitbreaker"
	"github.com/yourorg/bridge-route-ea/internal/config"
	"github.com/yourorg/bridge-route-ea/internal/gas"
	"github.com/yourorg/bridge-route-ea/internal/model"
	"github.com/yourorg/bridge-route-ea/internal/otel"
	"github.com/yourorg/bridge-route-ea/internal/track"
	"github.com/yourorg/bridge-route-ea/internal/txbuild"
)

// startTime records when the service was initialized for uptime reporting
var startTime = time.Now()

// Server represents the External Adapter server instance
type Server struct {
	// Configuration for the server
	cfg config.Config

	// HTTP server instance
	server *http.Server

	// Core components
	chains     *chain.Registry
	aggregator *aggregate.Aggregator
	builder    *txbuild.Builder
	tracker    *track.Tracker
	estimator  *gas.Estimator

	// Circuit breakers guarding the protocol adapters
	breakers map[model.Protocol]*circuitbreaker.Breaker

	// Metrics registry
	metrics *serverMetrics

	// Rate limiter for the tool endpoints
	rateLimit *rate.Limiter
}

// serverMetrics holds Prometheus metrics for the server
type serverMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	adapterDrops    *prometheus.CounterVec
	breakerState    *prometheus.GaugeVec
}

// registerMetrics sets up Prometheus metrics collection
func registerMetrics() *serverMetrics {
	m := &serverMetrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_requests_total",
				Help: "Total number of requests processed",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		adapterDrops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_adapter_drops_total",
				Help: "Total number of adapters dropped during route aggregation",
			},
			[]string{"protocol"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bridge_circuit_breaker_state",
				Help: "Circuit breaker state per protocol (0=closed, 1=open, 2=half-open)",
			},
			[]string{"protocol"},
		),
	}

	// Register all metrics
	prometheus.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.adapterDrops,
		m.breakerState,
	)

	return m
}

// main is the entry point for the application
func main() {
	// Configure logging
	setupLogging()

	// Load configuration
	cfg := config.Load()

	// Initialize tracing when an OTLP endpoint is configured
	shutdownTracer := otel.InitTracer(cfg.OtelEndpoint)
	defer shutdownTracer()

	// Create and start server
	server := NewServer(cfg)
	server.Start()
}

// setupLogging configures the logging for the application
func setupLogging() {
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))

	// Set log formatter based on environment
	switch logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// Set log level based on environment
	switch logLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.Info("Logging configured")
}

// NewServer wires the chain registry, protocol adapters, circuit breakers and
// the four core components into a server instance.
func NewServer(cfg config.Config) *Server {
	chains := chain.DefaultRegistry()
	httpClient := adapter.StandardClient()
	metrics := registerMetrics()

	stargateCfg := adapter.DefaultStargateConfig()
	stargateCfg.BaseURL = cfg.StargateURL
	stargateCfg.APIKey = cfg.APIKeys["stargate"]

	acrossCfg := adapter.DefaultAcrossConfig()
	acrossCfg.BaseURL = cfg.AcrossURL

	hopCfg := adapter.DefaultHopConfig()

	registry := adapter.NewRegistry(
		adapter.NewStargate(stargateCfg, httpClient),
		adapter.NewAcross(acrossCfg, httpClient),
		adapter.NewHop(hopCfg, httpClient),
	)

	// One breaker per adapter; a tripped breaker only skips its own protocol
	breakers := make(map[model.Protocol]*circuitbreaker.Breaker, len(registry.All()))
	for _, ad := range registry.All() {
		protocol := ad.Protocol()
		breakers[protocol] = circuitbreaker.New(circuitbreaker.Options{
			Name:             string(protocol),
			FailureThreshold: cfg.BreakerFailureThreshold,
			CooldownPeriod:   cfg.BreakerCooldown,
			OnTrip: func(name string, failures int) {
				logrus.Warnf("Circuit breaker tripped for %s after %d failures", name, failures)
			},
			OnStateChange: func(name string, state circuitbreaker.State) {
				metrics.breakerState.WithLabelValues(name).Set(float64(state))
			},
		})
		metrics.breakerState.WithLabelValues(string(protocol)).Set(float64(circuitbreaker.StateClosed))
	}

	highFeeChains := make(map[chain.ID]bool, len(cfg.HighFeeChains))
	for _, name := range cfg.HighFeeChains {
		id, err := chains.Resolve(name)
		if err != nil {
			logrus.Warnf("Ignoring unknown high-fee chain %q", name)
			continue
		}
		highFeeChains[id] = true
	}

	aggregator := aggregate.New(registry, chains, aggregate.Options{
		AdapterTimeout:         cfg.AdapterTimeout,
		LargeTransferThreshold: cfg.LargeTransferThreshold,
		HighFeeChains:          highFeeChains,
		OnAdapterDrop: func(protocol model.Protocol, err error) {
			metrics.adapterDrops.WithLabelValues(string(protocol)).Inc()
		},
	}).WithBreakers(breakers)

	gasOpts := gas.DefaultOptions()
	gasOpts.BridgeFeeRate = cfg.BridgeFeeRate
	gasOpts.HighGasCeilingUSD = cfg.HighGasCeilingUSD

	server := &Server{
		cfg:        cfg,
		chains:     chains,
		aggregator: aggregator,
		builder:    txbuild.New(registry, chains),
		tracker:    track.New(registry, chains),
		estimator:  gas.New(chains, gasOpts),
		breakers:   breakers,
		metrics:    metrics,
		rateLimit:  rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}

	logrus.WithFields(logrus.Fields{
		"port":            cfg.Port,
		"adapter_timeout": cfg.AdapterTimeout,
		"adapters":        len(registry.All()),
		"rate_limit_rps":  cfg.RateLimitRPS,
	}).Info("Server initialized")

	return server
}

// Start begins the HTTP server and sets up graceful shutdown
func (s *Server) Start() {
	// Create a new router
	mux := http.NewServeMux()

	// Register API endpoints
	mux.HandleFunc("/find-bridge-routes", s.handleFindRoutes)
	mux.HandleFunc("/create-bridge-transaction", s.handleCreateTransaction)
	mux.HandleFunc("/track-bridge-status", s.handleTrackStatus)
	mux.HandleFunc("/estimate-bridge-gas", s.handleEstimateGas)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	// Configure server with timeouts
	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", s.cfg.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server shutdown failed: %v", err)
	}

	logrus.Info("Server stopped")
}
