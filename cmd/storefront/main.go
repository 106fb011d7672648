package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/tair/furniture-storefront/internal/config"
	"github.com/tair/furniture-storefront/internal/storefront"
	sfhttp "github.com/tair/furniture-storefront/internal/storefront/delivery/http"
	"github.com/tair/furniture-storefront/internal/storefront/health"
	"github.com/tair/furniture-storefront/internal/transport"
	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/metrics"
	"github.com/tair/furniture-storefront/pkg/tracing"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Strs("backends", cfg.Backend.Addrs).
		Msg("Starting storefront session")

	// Initialize tracer
	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    cfg.ServiceName,
		JaegerEndpoint: cfg.JaegerEndpoint,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
			}
		}()
	}

	redisClient := connectRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize storefront with Wire DI
	m := metrics.New(prometheus.DefaultRegisterer)
	sf, cleanup, err := storefront.InitializeStorefront(cfg, redisClient, m, transport.NewGRPCDialer(m))
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize storefront")
	}
	defer cleanup()

	checker, closeProbes := newHealthChecker(cfg, sf.Breakers)
	defer closeProbes()

	app := newApp(cfg, sf, redisClient)
	ops := newOpsServer(cfg, checker)

	go func() {
		addr := ":" + cfg.HTTPPort
		logger.Logger.Info().Str("addr", addr).Msg("Session API started")
		if err := app.Listen(addr); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start session API")
		}
	}()

	go func() {
		logger.Logger.Info().
			Str("addr", ops.Addr).
			Str("metrics_endpoint", "/metrics").
			Msg("Ops server started")
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start ops server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down storefront...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Session API forced to shutdown")
	}
	if err := ops.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Ops server forced to shutdown")
	}

	logger.Logger.Info().Msg("Storefront stopped")
}

// connectRedis returns nil when redis is not configured or unreachable; the query cache then
// stays in memory and rate limiting is disabled
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Logger.Info().Msg("Redis not configured - using in-memory query cache")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", cfg.Redis.Addr).
			Msg("Failed to connect to Redis - using in-memory query cache, rate limiting disabled")
		client.Close()
		return nil
	}

	logger.Logger.Info().
		Str("redis_addr", cfg.Redis.Addr).
		Msg("Connected to Redis for query cache and rate limiting")
	return client
}

func newApp(cfg *config.Config, sf *storefront.Storefront, redisClient *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Furniture Storefront",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    64 * 1024 * 1024,
		ErrorHandler: sfhttp.ErrorHandler,
	})

	// Recover from panics
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID (must be first)
	app.Use(requestid.New())

	// OpenTelemetry Tracing (after request ID)
	app.Use(sfhttp.TracingMiddleware())

	// Structured Logging (after tracing for trace ID)
	app.Use(sfhttp.StructuredLoggingMiddleware())

	app.Use(sfhttp.MetricsMiddleware(sf.Metrics))

	// Rate Limiting (if Redis available)
	if redisClient != nil {
		logger.Logger.Info().
			Int("max_requests", cfg.RateLimit).
			Dur("window", cfg.RateWindow).
			Msg("Rate limiting enabled")
		app.Use(sfhttp.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateWindow).Middleware())
	} else {
		logger.Logger.Warn().Msg("Rate limiting disabled (Redis not available)")
	}

	app.Use(fibercors.New(fibercors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-Id, traceparent, tracestate",
		AllowCredentials: cfg.CORSOrigins != "*",
		ExposeHeaders:    "X-Request-Id, X-Trace-Id, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:           86400,
	}))

	// Compression
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	sf.Handler.RegisterRoutes(app)
	return app
}

// newHealthChecker dials a dedicated probe connection per backend endpoint
func newHealthChecker(cfg *config.Config, breakers *transport.BreakerSet) (*health.Checker, func()) {
	conns := make(map[string]grpc.ClientConnInterface, len(cfg.Backend.Addrs))
	var closers []func() error

	for _, addr := range cfg.Backend.Addrs {
		conn, closer, err := transport.GRPCDial(addr)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("endpoint", addr).Msg("Failed to create health probe")
			continue
		}
		conns[addr] = conn
		closers = append(closers, closer.Close)
	}

	return health.NewChecker(cfg.ServiceName, conns, breakers, 5*time.Second), func() {
		for _, c := range closers {
			_ = c()
		}
	}
}

func newOpsServer(cfg *config.Config, checker *health.Checker) *http.Server {
	router := mux.NewRouter()

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Live())
	}).Methods(http.MethodGet)

	router.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		report := checker.CheckAll(r.Context())
		code := http.StatusOK
		if report.Status == health.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	}).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return &http.Server{
		Addr:              ":" + cfg.OpsPort,
		Handler:           otelhttp.NewHandler(c.Handler(router), "storefront-ops"),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to write response")
	}
}
