package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields aliases logrus.Fields so callers don't import logrus directly.
type Fields = logrus.Fields

// New creates a configured JSON logger. Level comes from LOG_LEVEL
// (debug/info/warn/error), defaulting to info.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(levelFromEnv())
	return logger
}

// NewWithService creates a logger whose entries all carry a service field.
func NewWithService(service string) *logrus.Entry {
	return New().WithField("service", service)
}

func levelFromEnv() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
