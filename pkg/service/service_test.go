package service

import (
	"context"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"call-center-simulator/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		PodID:              "test-pod",
		LLMBaseURL:         "http://127.0.0.1:1/v1",
		LLMModel:           "test-model",
		LLMMaxTokens:       10,
		LLMTimeoutMS:       100,
		EventConsumerGroup: "test-group",
		EventBufferSize:    8,
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestService_StartStopWithoutEventStream(t *testing.T) {
	svc, err := NewService(testConfig(), testLogger(), prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Nil(t, svc.publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, svc.Start(ctx))

	// The model endpoint is unreachable, so the reply is the fallback.
	registry := svc.Registry()
	require.True(t, registry.StartSimulation("sim-1"))
	reply, ok := registry.ProcessMessage(ctx, "sim-1", "hello")
	require.True(t, ok)
	assert.NotEmpty(t, reply)

	assert.NoError(t, svc.Stop(context.Background()))
}

func TestService_EventStreamRequiresRedis(t *testing.T) {
	cfg := testConfig()
	cfg.EventStreamEnabled = true
	cfg.RedisURL = "redis://127.0.0.1:1"

	svc, err := NewService(cfg, testLogger(), prometheus.NewRegistry())
	assert.Error(t, err)
	assert.Nil(t, svc)
}
