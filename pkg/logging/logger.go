package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Output always goes to stdout; when logDir
// is set it is also appended to logDir/app_YYYYMMDD.log. The returned closer
// releases the log file and is never nil.
func New(level, logDir string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	if parsed, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if logDir == "" {
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, DailyFileName(time.Now()))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	return logger, file, nil
}

// DailyFileName returns the log file name for the given day.
func DailyFileName(t time.Time) string {
	return "app_" + t.Format("20060102") + ".log"
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
