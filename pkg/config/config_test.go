package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "qwen-2.5-32b", cfg.LLMModel)
	assert.Equal(t, 150, cfg.LLMMaxTokens)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout())
	assert.False(t, cfg.EventStreamEnabled)
	assert.NotEmpty(t, cfg.PodID)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LLM_MAX_TOKENS", "64")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("EVENT_STREAM_ENABLED", "true")
	t.Setenv("POD_ID", "pod-a")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 64, cfg.LLMMaxTokens)
	assert.InDelta(t, 0.2, cfg.LLMTemperature, 1e-9)
	assert.True(t, cfg.EventStreamEnabled)
	assert.Equal(t, "pod-a", cfg.PodID)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "lots")
	t.Setenv("EVENT_STREAM_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 150, cfg.LLMMaxTokens)
	assert.False(t, cfg.EventStreamEnabled)
}
