// Package logging configures the structured logger shared by the application.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
)

// NewLogger builds a logrus logger from configuration
func NewLogger(config domain.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(config.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	out, err := openOutput(config)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(out)

	return logger, nil
}

func openOutput(config domain.LoggingConfig) (io.Writer, error) {
	switch strings.ToLower(config.Output) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	case "file":
		if config.Filename == "" {
			return nil, fmt.Errorf("logging filename is required when output is file")
		}
		f, err := os.OpenFile(config.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported log output: %s", config.Output)
	}
}

// Close releases the log file opened for file output. Standard streams are left open.
func Close(logger *logrus.Logger) error {
	f, ok := logger.Out.(*os.File)
	if !ok || f == os.Stdout || f == os.Stderr {
		return nil
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Discard returns a logger that drops everything
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Operation tracks one logged unit of work
type Operation struct {
	entry *logrus.Entry
	start time.Time
}

// StartOperation logs the start of a named operation and returns a handle to end it
func StartOperation(logger logrus.FieldLogger, name string, fields logrus.Fields) *Operation {
	entry := logger.WithFields(fields).WithFields(logrus.Fields{
		"operation_id":   uuid.New().String(),
		"operation_name": name,
	})
	entry.Debug("Operation started")
	return &Operation{entry: entry, start: time.Now()}
}

// ID returns the operation identifier attached to every entry
func (o *Operation) ID() string {
	id, _ := o.entry.Data["operation_id"].(string)
	return id
}

// End logs completion, or failure when err is non-nil
func (o *Operation) End(err error, fields logrus.Fields) {
	entry := o.entry.WithFields(fields).WithField("duration", time.Since(o.start))
	if err != nil {
		entry.WithError(err).Error("Operation failed")
		return
	}
	entry.Info("Operation completed")
}
