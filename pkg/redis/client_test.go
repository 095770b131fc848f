package redis

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionConfig_Options(t *testing.T) {
	cfg := DefaultConnectionConfig("redis://localhost:6379/4")

	opt, err := cfg.options()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, 4, opt.DB)
	assert.Equal(t, cfg.PoolSize, opt.PoolSize)
	assert.Greater(t, opt.ReadTimeout, time.Second)
}

func TestNewClient_InvalidURL(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	_, err := NewClient(DefaultConnectionConfig("not-a-redis-url"), logger)
	assert.Error(t, err)
}

func TestNewClient_Unreachable(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	cfg := DefaultConnectionConfig("redis://127.0.0.1:1")
	cfg.MaxRetries = -1
	cfg.DialTimeout = 200 * time.Millisecond
	cfg.PingTimeout = 500 * time.Millisecond

	_, err := NewClient(cfg, logger)
	assert.Error(t, err)
}
