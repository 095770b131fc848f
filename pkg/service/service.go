package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/config"
	"call-center-simulator/pkg/events"
	"call-center-simulator/pkg/handlers"
	"call-center-simulator/pkg/llm"
	"call-center-simulator/pkg/metrics"
	redisClient "call-center-simulator/pkg/redis"
	"call-center-simulator/pkg/server"
	"call-center-simulator/pkg/simulation"
)

// Service owns the simulation registry, the HTTP server and, when enabled,
// the Redis event stream.
type Service struct {
	config    *config.Config
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	registry  *simulation.Registry
	redis     *redisClient.Client
	publisher *events.StreamPublisher
	consumer  *events.StreamConsumer
	server    *http.Server
}

func NewService(config *config.Config, logger *logrus.Logger, reg *prometheus.Registry) (*Service, error) {
	m := metrics.NewMetrics(reg)

	s := &Service{
		config:   config,
		logger:   logger,
		metrics:  m,
		gatherer: reg,
	}

	var sink events.Sink = events.NoopSink{}
	if config.EventStreamEnabled {
		rc, err := redisClient.NewClient(redisClient.DefaultConnectionConfig(config.RedisURL), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up event stream: %w", err)
		}
		s.redis = rc
		s.publisher = events.NewStreamPublisher(rc.GetRedisClient(), config, logger, m)
		s.consumer = events.NewStreamConsumer(rc.GetRedisClient(), config, logger, m)
		sink = s.publisher
	}

	gateway := llm.NewGateway(llm.Config{
		APIKey:      config.GroqAPIKey,
		BaseURL:     config.LLMBaseURL,
		Model:       config.LLMModel,
		MaxTokens:   config.LLMMaxTokens,
		Temperature: config.LLMTemperature,
		Timeout:     config.LLMTimeout(),
	}, logger, m)

	s.registry = simulation.NewRegistry(gateway, logger, m, simulation.WithEventSink(sink))
	return s, nil
}

func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting call center simulation service")

	if s.publisher != nil {
		if err := s.publisher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start event publisher: %w", err)
		}
		if err := s.consumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start event consumer: %w", err)
		}
	}

	handler := handlers.NewHandler(s.registry, s.logger, s.config.PodID)
	s.server = server.NewHTTPServer(s.config, handler, s.gatherer, s.logger)

	go func() {
		s.logger.WithField("port", s.config.Port).Info("Starting HTTP server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	s.logger.WithFields(logrus.Fields{
		"pod_id":       s.config.PodID,
		"event_stream": s.config.EventStreamEnabled,
	}).Info("Call center simulation service started successfully")
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping call center simulation service")

	var shutdownErr error
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
			shutdownErr = err
		}
	}

	// Publisher stops after the server so events from in-flight requests are flushed.
	if s.publisher != nil {
		s.consumer.Stop()
		s.publisher.Stop()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close Redis connection")
		}
	}

	s.logger.Info("Call center simulation service stopped")
	return shutdownErr
}

func (s *Service) Registry() *simulation.Registry {
	return s.registry
}
