package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/prodsmart/backend/internal/config"
	httpx "github.com/prodsmart/backend/internal/http"
	"github.com/prodsmart/backend/internal/observability"
	"github.com/prodsmart/backend/internal/session"
	"github.com/prodsmart/backend/internal/store/postgres"
)

func main() {
	// .env for local dev; absent file is fine
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in via OTLP_ENDPOINT
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "prodsmart-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	registry := prometheus.NewRegistry()
	prom := observability.NewProm(registry)

	pool, err := postgres.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("postgres connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	docs := postgres.New(pool, prom)

	{
		ctx, cancel := config.WithTimeout(5 * time.Second)
		err := docs.EnsureSchema(ctx)
		cancel()

		if err != nil {
			log.Error("schema bootstrap failed", "err", err)
			os.Exit(1)
		}
	}

	rdb := session.NewClient(session.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	defer rdb.Close()

	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)

	{
		ctx, cancel := config.WithTimeout(2 * time.Second)
		err := sessions.Ping(ctx)
		cancel()

		if err != nil {
			log.Error("redis connect failed", "err", err)
			os.Exit(1)
		}
	}

	pingDB := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return docs.Ping(ctx)
	}

	pingRedis := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return sessions.Ping(ctx)
	}

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Docs:      docs,
		Sessions:  sessions,
		Prom:      prom,
		Registry:  registry,
		PingDB:    pingDB,
		PingRedis: pingRedis,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
