package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"telwire/internal/config"
)

// Setup builds the process logger from the configured outputs and installs it
// as the slog default. With quiet set, everything is discarded. With debug
// set, every output logs at debug level regardless of its configured level.
// An empty configuration logs to stdout at info level.
func Setup(configs []config.LoggerConfig, debug, quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var handlers []slog.Handler
	for _, cfg := range configs {
		if debug {
			cfg.Level = "debug"
		}
		if cfg.Stdout {
			handlers = append(handlers, newHandler(os.Stdout, cfg, isatty.IsTerminal(os.Stdout.Fd())))
		}

		if cfg.File != "" {
			file, err := openLogFile(cfg.File)
			if err != nil {
				log.Print(err)
				continue
			}
			handlers = append(handlers, newHandler(file, cfg, false))
		}
	}

	var logger *slog.Logger
	switch len(handlers) {
	case 0:
		// Fallback if no loggers configured
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
			Level:      level,
			TimeFormat: time.TimeOnly,
		}))
	case 1:
		logger = slog.New(handlers[0])
	default:
		logger = slog.New(NewFanout(handlers...))
	}

	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LoggerConfig, color bool) slog.Handler {
	timeFormat := time.TimeOnly
	if cfg.TimeFormat != "" {
		timeFormat = cfg.TimeFormat
	}

	return tint.NewHandler(w, &tint.Options{
		NoColor:    !color,
		Level:      ParseLevel(cfg.Level),
		AddSource:  cfg.Source,
		TimeFormat: timeFormat,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if cfg.HideTime && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
}

func openLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
