package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"call-center-simulator/pkg/config"
	"call-center-simulator/pkg/logging"
	"call-center-simulator/pkg/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()

	logger.WithField("pod_id", cfg.PodID).Info("Starting call center simulation service")

	if cfg.GroqAPIKey == "" {
		logger.Warn("GROQ_API_KEY is not set, model replies will fall back to the apology message")
	}

	// Initialize metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := service.NewService(cfg, logger, reg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create service")
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start service")
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := svc.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during service shutdown")
	}

	logger.Info("Call center simulation service shutdown complete")
}
