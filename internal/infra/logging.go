package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// Logger writes structured JSON lines tagged with the service name and the
// correlation id carried by the context.
type Logger struct {
	zl zerolog.Logger
}

func NewLogger(out io.Writer, service string) *Logger {
	return NewLoggerWithLevel(out, service, "info")
}

// NewLoggerWithLevel is NewLogger with an explicit level; unknown levels fall back to info.
func NewLoggerWithLevel(out io.Writer, service, level string) *Logger {
	if out == nil {
		out = io.Discard
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if service = strings.TrimSpace(service); service != "" {
		ctx = ctx.Str("service", service)
	}
	return &Logger{zl: ctx.Logger()}
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationIDKey, strings.TrimSpace(id))
}

func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

// Zerolog exposes the underlying logger for components that log with fields.
func (l *Logger) Zerolog() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return l.zl
}

// For returns a zerolog logger enriched with the context's correlation id.
func (l *Logger) For(ctx context.Context) *zerolog.Logger {
	zl := l.Zerolog()
	if id := CorrelationIDFromContext(ctx); id != "" {
		zl = zl.With().Str("trace_id", id).Logger()
	}
	return &zl
}

func (l *Logger) Printf(ctx context.Context, format string, v ...any) {
	if l == nil {
		return
	}
	l.For(ctx).Info().Msg(fmt.Sprintf(format, v...))
}

func (l *Logger) Println(ctx context.Context, v ...any) {
	if l == nil {
		return
	}
	l.For(ctx).Info().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l *Logger) Errorf(ctx context.Context, err error, format string, v ...any) {
	if l == nil {
		return
	}
	l.For(ctx).Error().Err(err).Msg(fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(ctx context.Context, format string, v ...any) {
	if l == nil {
		return
	}
	l.For(ctx).Debug().Msg(fmt.Sprintf(format, v...))
}

func (l *Logger) Fatalf(ctx context.Context, format string, v ...any) {
	if l != nil {
		l.For(ctx).WithLevel(zerolog.FatalLevel).Msg(fmt.Sprintf(format, v...))
	}
	os.Exit(1)
}
