// Package logger wraps zerolog with context-scoped loggers for the report
// service.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "weekly_report"

var (
	base     = newLogger(os.Stdout, zerolog.InfoLevel)
	initOnce sync.Once
)

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", serviceName).Logger()
}

// ParseLevel maps a configured level name to a zerolog level. Empty or
// unknown names mean info.
func ParseLevel(name string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// InitLogging sends logs to stdout and, when logFilePath is set, appends them
// to that file. Only the first call has any effect.
func InitLogging(logFilePath, level string) {
	initOnce.Do(func() {
		writers := []io.Writer{os.Stdout}
		if logFilePath != "" {
			file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
			if err != nil {
				os.Stderr.WriteString("logger: cannot open " + logFilePath + ": " + err.Error() + "\n")
			} else {
				writers = append(writers, file)
			}
		}

		base = newLogger(zerolog.MultiLevelWriter(writers...), ParseLevel(level))
		log.Logger = base
	})
}

// WithLogger returns ctx carrying a logger enriched with fields.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	l := from(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// from returns the logger stored in ctx, or the base logger.
func from(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &base
	}
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &base
}

func DebugLog(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Debug().Msgf(format, args...)
}

func InfoLog(ctx context.Context, format string, args ...interface{}) {
	from(ctx).Info().Msgf(format, args...)
}

// WarnLog logs at warn level with err attached as the "error" field. err may
// be nil.
func WarnLog(ctx context.Context, err error, format string, args ...interface{}) {
	from(ctx).Warn().Err(err).Msgf(format, args...)
}

// ErrorLog logs at error level with err attached as the "error" field.
func ErrorLog(ctx context.Context, err error, format string, args ...interface{}) {
	from(ctx).Error().Err(err).Msgf(format, args...)
}
