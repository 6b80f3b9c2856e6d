package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// NewLogger returns a colored debug logger in development and a JSON one
// otherwise.
func NewLogger(w io.Writer) *slog.Logger {
	if Development() {
		return slog.New(
			tint.NewHandler(w, &tint.Options{Level: slog.LevelDebug}),
		)
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

// SetupEngineLog configures the logrus logger used by the mines package.
// ENGINE_LOG_FILE additionally sends its entries to a rotated JSON file.
func SetupEngineLog(log *logrus.Logger) error {
	level := logrus.InfoLevel
	if Development() {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: Development()})

	path, ok := os.LookupEnv("ENGINE_LOG_FILE")
	if !ok || path == "" {
		return nil
	}

	maxSize := 10
	if s, ok := os.LookupEnv("ENGINE_LOG_MAX_SIZE_MB"); ok {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		maxSize = n
	}

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: 5,
		MaxAge:     28,
		Level:      level,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return err
	}
	log.AddHook(hook)
	return nil
}
