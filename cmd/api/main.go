package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/jmcampos/tienda/internal/auth"
	cataloghttp "github.com/jmcampos/tienda/internal/catalog/adapters/http"
	catalogpostgres "github.com/jmcampos/tienda/internal/catalog/adapters/postgres"
	catalogapp "github.com/jmcampos/tienda/internal/catalog/app"
	"github.com/jmcampos/tienda/internal/config"
	"github.com/jmcampos/tienda/internal/database"
	idempostgres "github.com/jmcampos/tienda/internal/idempotency/postgres"
	"github.com/jmcampos/tienda/internal/kafka"
	"github.com/jmcampos/tienda/internal/orders/adapters"
	ordershttp "github.com/jmcampos/tienda/internal/orders/adapters/http"
	orderspostgres "github.com/jmcampos/tienda/internal/orders/adapters/postgres"
	ordersapp "github.com/jmcampos/tienda/internal/orders/app"
	ordersmetrics "github.com/jmcampos/tienda/internal/orders/metrics"
	"github.com/jmcampos/tienda/internal/orders/ports"
	"github.com/jmcampos/tienda/internal/payment/paypal"
	"github.com/jmcampos/tienda/internal/telemetry"
	usershttp "github.com/jmcampos/tienda/internal/users/adapters/http"
	userspostgres "github.com/jmcampos/tienda/internal/users/adapters/postgres"
	usersapp "github.com/jmcampos/tienda/internal/users/app"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations completed successfully")
	}

	meter := otel.Meter(cfg.Service.Name)

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create database metrics", "error", err)
		os.Exit(1)
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create kafka metrics", "error", err)
		os.Exit(1)
	}
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := ordershttp.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	var eventBus ports.EventBus
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewEventBus(cfg.Kafka.Brokers)
		if err != nil {
			logger.Error("failed to connect to kafka", "error", err, "brokers", strings.Join(cfg.Kafka.Brokers, ","))
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("failed to close kafka producer", "error", err)
			}
		}()
		eventBus = producer
	} else {
		logger.Info("no kafka brokers configured, events are logged only")
		eventBus = kafka.NewNoopEventBus()
	}

	gateway := paypal.NewClient(paypal.Config{
		BaseURL:      cfg.PayPal.BaseURL,
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		ReturnURL:    cfg.PayPal.ReturnURL,
		CancelURL:    cfg.PayPal.CancelURL,
		Timeout:      cfg.PayPal.Timeout,
		MaxRetries:   uint64(cfg.PayPal.MaxRetries),
	})

	ordersRepo := adapters.NewObservableRepository(orderspostgres.NewRepository(pool), dbMetrics)
	observableBus := adapters.NewObservableEventBus(eventBus, kafkaMetrics)
	idemStore := idempostgres.NewStore(pool)

	ordersService := ordersapp.NewService(
		ordersRepo,
		gateway,
		observableBus,
		idemStore,
		logger,
		orderMetrics,
		cfg.PayPal.Currency,
	)

	tokenIssuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	usersService := usersapp.NewService(userspostgres.NewRepository(pool), tokenIssuer, logger)
	if err := usersService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	catalogService := catalogapp.NewService(
		catalogpostgres.NewRepository(pool),
		catalogpostgres.NewReviewRepository(pool),
		logger,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := database.CheckHealth(r.Context(), pool); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc(cfg.HTTP.MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics are exported via OTLP\n"))
	})

	usershttp.NewHandler(usersService).Register(mux)

	ordersMux := http.NewServeMux()
	ordershttp.NewHandler(ordersService).Register(ordersMux)
	protectedOrders := auth.Middleware(tokenIssuer, ordersMux)
	mux.Handle("/v1/orders", protectedOrders)
	mux.Handle("/v1/orders/", protectedOrders)

	catalogMux := http.NewServeMux()
	cataloghttp.NewHandler(catalogService).Register(catalogMux)
	catalogHandler := auth.OptionalMiddleware(tokenIssuer, catalogMux)
	for _, path := range []string{
		"/v1/products", "/v1/products/",
		"/v1/categories", "/v1/categories/",
		"/v1/reviews", "/v1/reviews/",
	} {
		mux.Handle(path, catalogHandler)
	}

	handler := ordershttp.WithMetrics(withRecovery(withLogging(mux)), httpMetrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
