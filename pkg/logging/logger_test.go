package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StdoutOnly(t *testing.T) {
	logger, closer, err := New("debug", "")
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}

func TestNew_InvalidLevelKeepsDefault(t *testing.T) {
	logger, closer, err := New("chatty", "")
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNew_WritesDailyFile(t *testing.T) {
	dir := t.TempDir()

	logger, closer, err := New("info", dir)
	require.NoError(t, err)

	logger.WithField("simulation_id", "sim-1").Info("Started simulation")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, DailyFileName(time.Now())))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Started simulation")
	assert.Contains(t, string(data), "sim-1")
}

func TestDailyFileName(t *testing.T) {
	day := time.Date(2024, time.March, 7, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "app_20240307.log", DailyFileName(day))
}
