// Package logger configures the process-wide structured logger.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the global logger. Packages log through the helpers below.
var Logger = log.Logger

// Config controls level, output format and caller reporting.
type Config struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or pretty
	TimeFormat   string `json:"time_format"`
	ReportCaller bool   `json:"report_caller"`
}

// Init replaces the global logger according to cfg, writing to stdout.
func Init(cfg Config) {
	InitWithWriter(cfg, os.Stdout)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(cfg Config, out io.Writer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	output := out
	if cfg.Format == "pretty" {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: cfg.TimeFormat}
	}

	ctxLogger := zerolog.New(output).Level(level).With().Timestamp()
	if cfg.ReportCaller {
		ctxLogger = ctxLogger.Caller()
	}

	Logger = ctxLogger.Logger()
	log.Logger = Logger
}

// Debug starts a debug level event.
func Debug() *zerolog.Event { return Logger.Debug() }

// Info starts an info level event.
func Info() *zerolog.Event { return Logger.Info() }

// Warn starts a warn level event.
func Warn() *zerolog.Event { return Logger.Warn() }

// Error starts an error level event.
func Error() *zerolog.Event { return Logger.Error() }

// Fatal starts a fatal event; the process exits after it is sent.
func Fatal() *zerolog.Event { return Logger.Fatal() }

// Ctx returns the logger attached to ctx, or the global one.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &Logger
}

// WithContext attaches the global logger to ctx.
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
