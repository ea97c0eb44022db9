// Command goscope-server exposes the token engine over HTTP.
//
// Configuration comes from GOSCOPE_* environment variables, optionally seeded from a
// .env file in the working directory.
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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	goScope "github.com/MrEthical07/goScope"
	"github.com/MrEthical07/goScope/internal/envconfig"
	"github.com/MrEthical07/goScope/internal/logging"
	promexport "github.com/MrEthical07/goScope/metrics/export/prometheus"
)

func main() {
	cfg, err := envconfig.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	builder := goScope.New().
		WithConfig(cfg.EngineConfig()).
		WithLogger(log)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		builder = builder.WithRedis(rdb)
	}
	if cfg.Audit {
		builder = builder.WithAuditSink(goScope.NewZapSink(log))
	}

	engine, err := builder.Build()
	if err != nil {
		log.Fatal("engine build failed", zap.Error(err))
	}
	defer engine.Close()

	var metrics http.Handler
	if cfg.Metrics {
		metrics = promexport.Handler(engine)
	}
	if cfg.OTLPEndpoint != "" {
		stopTelemetry, err := startTelemetry(context.Background(), cfg.OTLPEndpoint, cfg.OTLPInterval, engine)
		if err != nil {
			log.Fatal("otlp metrics setup failed", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := stopTelemetry(ctx); err != nil {
				log.Warn("otlp metrics flush failed", zap.Error(err))
			}
		}()
		log.Info("otlp metrics enabled",
			zap.String("endpoint", cfg.OTLPEndpoint),
			zap.Duration("interval", cfg.OTLPInterval),
		)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(engine, log, metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("goscope-server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("goscope-server stopped")
}
