package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vitals-monitor/analytics"
	"vitals-monitor/cache"
	"vitals-monitor/config"
	"vitals-monitor/handlers"
	"vitals-monitor/ingest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	redisClient, err := cache.NewRedisClient(pingCtx, cfg.Redis)
	cancelPing()
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	engine := analytics.NewAnalyticsEngine(cfg.Analytics, cfg.Engine, redisClient, logger, handlers.RecordAnomalies)
	// engine закрывается после HTTP и MQTT, чтобы дописать очередь в redis
	defer engine.Close()

	if cfg.MQTT.Broker != "" {
		subscriber := ingest.NewSubscriber(cfg.MQTT, engine, logger)
		if err := subscriber.Start(); err != nil {
			return err
		}
		defer subscriber.Stop()
	}

	readingHandler := handlers.NewReadingHandler(engine, redisClient, logger)

	srv := &http.Server{
		Addr:           cfg.HTTP.Addr,
		Handler:        handlers.NewRouter(readingHandler),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
