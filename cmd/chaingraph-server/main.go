// Command chaingraph-server runs the chaingraphdb HTTP API daemon,
// grounded on cmd/explorer/main.go's .env-then-viper-then-serve shape.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"chaingraphdb/core"
	"chaingraphdb/pkg/config"
	"chaingraphdb/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.WithError(err).Fatal("init zap logger")
	}
	defer zlog.Sync()
	server.SetLogger(zlog.Sugar())

	cat, err := core.OpenCatalog(cfg.Catalog.Root, core.GraphOptions{
		BufferPoolSize: cfg.Storage.BufferPoolSize,
		Compress:       cfg.Storage.Compress,
	})
	if err != nil {
		log.WithError(err).Fatal("open catalog")
	}

	defaultGraph := cfg.Catalog.DefaultGraph
	if defaultGraph == "" {
		defaultGraph = "default"
	}
	if _, err := cat.Use(defaultGraph); err != nil {
		if _, err := cat.Create(defaultGraph); err != nil {
			log.WithError(err).Fatal("create default graph")
		}
	}

	metrics := core.NewMetrics(prometheus.DefaultRegisterer)
	svc := server.NewGraphService(cat, metrics, defaultGraph)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := server.NewServer(addr, svc)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("chaingraph-server listening")
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("server failed")
		}
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("graceful shutdown")
		}
	}
}
