package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/n1platform/stakevault/internal/cache"
	"github.com/n1platform/stakevault/internal/config"
	"github.com/n1platform/stakevault/internal/custody"
	"github.com/n1platform/stakevault/internal/database"
	"github.com/n1platform/stakevault/internal/server"
	"github.com/n1platform/stakevault/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration from environment variables
	cfg, err := config.Load(ctx)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	setupLogger(cfg)
	slog.Info("starting stakevault", slog.String("environment", cfg.App.Environment))

	// Initialize database connections; the schema is applied on connect
	db, err := database.NewDB(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connections", slog.String("error", err.Error()))
		}
	}()

	// Connect to the custody bus
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("stakevault"))
	if err != nil {
		slog.Error("failed to connect to NATS", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer nc.Drain()

	requestTimeout := time.Duration(cfg.NATS.RequestTimeout) * time.Second
	bus := custody.NewBus(nc, cfg.Custody.EngineAccount, requestTimeout)

	// Optional Redis campaign cache
	opts := []service.Option{}
	if cfg.Redis.Addr != "" {
		campaignCache, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password,
			cfg.Redis.DB, time.Duration(cfg.Redis.TTL)*time.Second)
		if err != nil {
			slog.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer campaignCache.Close()
		opts = append(opts, service.WithCache(campaignCache))
		slog.Info("campaign cache enabled", slog.String("addr", cfg.Redis.Addr))
	}

	engine := service.NewEngine(db.Postgres, bus, bus, cfg.Custody.EngineAccount, opts...)

	// Subscribe to deposit notifications
	consumer := custody.NewConsumer(nc, engine,
		cfg.NATS.NFTDepositSubject, cfg.NATS.TokenDepositSubject, requestTimeout)
	if err := consumer.Start(); err != nil {
		slog.Error("failed to subscribe to deposit subjects", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer consumer.Stop()

	srv := server.New(engine, db.Postgres, cfg.Server.AdminToken)

	// Create server with configuration optimized for high concurrency
	httpServer := &http.Server{
		Addr:           cfg.Server.GetServerAddr(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
		// Use h2c so we can serve HTTP/2 without TLS
		Handler: h2c.NewHandler(srv.Handler(), &http2.Server{
			MaxConcurrentStreams: 1000,
		}),
	}

	go func() {
		slog.Info("starting stakevault API", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	switch cfg.App.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.App.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
