// Package logging wraps zerolog with the level/format/output surface the
// rest of this module's config and CLI layers expect.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level is a logging verbosity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config controls how a Logger is built.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger is a structured logger used throughout the engine, experiment
// runner, and CLI.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	var out io.Writer = cfg.Output
	if cfg.Format == FormatText {
		out = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: time.RFC3339,
		}
	}

	zl := zerolog.New(out).With().Timestamp().Logger().Level(levelOf(cfg.Level))
	return &Logger{zl: zl}
}

func levelOf(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.emit(l.zl.Debug(), msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.emit(l.zl.Info(), msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.emit(l.zl.Warn(), msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.emit(l.zl.Error(), msg, kv...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.emit(l.zl.Fatal(), msg, kv...) }

func (l *Logger) emit(event *zerolog.Event, msg string, kv ...interface{}) {
	if len(kv)%2 != 0 {
		event.Str("log_error", "odd number of key-value arguments")
		event.Msg(msg)
		return
	}
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			event.Str("log_error", "non-string field key")
			continue
		}
		event.Interface(key, kv[i+1])
	}
	event.Msg(msg)
}

// With returns a child Logger carrying one extra field on every entry.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// Zerolog returns the underlying zerolog.Logger for callers (e.g.
// pkg/telemetry's HTTP server) that want to log via its native API.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// InitGlobal points the zerolog package-level logger at cfg, for code paths
// that log through the global rather than carrying a *Logger explicitly —
// cobra's PersistentPreRun hooks, mainly.
func InitGlobal(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	var out io.Writer = cfg.Output
	if cfg.Format == FormatText {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(levelOf(cfg.Level))
}
