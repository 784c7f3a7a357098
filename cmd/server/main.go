package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wikimirror/wikimirror/internal/api"
	"github.com/wikimirror/wikimirror/internal/config"
	"github.com/wikimirror/wikimirror/internal/pipeline"
	"github.com/wikimirror/wikimirror/internal/wiki"
)

func main() {
	cfg := config.Load()

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	log := slog.New(slog.NewJSONHandler(out, nil))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize clients.
	var cache wiki.Cache
	var redisCache *wiki.RedisCache
	if cfg.RedisAddr != "" {
		redisCache = wiki.NewRedisCache(cfg.RedisAddr, log)
		cache = redisCache
		log.Info("response cache enabled", "addr", cfg.RedisAddr)
	}
	wikiClient := wiki.NewClient(cfg.WikiHost, cache, log)

	// Initialize the merge pipeline.
	coord := pipeline.NewCoordinator(wikiClient, pipeline.Options{
		MergeTimeout:  cfg.MergeTimeout,
		SizeGateBytes: cfg.SizeGateBytes,
		MaxTimeouts:   cfg.MaxMergeTimeouts,
	}, log)

	// Initialize HTTP server.
	srv := api.NewServer(coord, wikiClient, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		wikiClient.Close()
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	log.Info("starting wikimirror", "port", cfg.Port, "wiki", cfg.WikiHost)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
