// Package kernellog wraps zap the way the rest of the stack does:
// a small context-first Logger interface, a process-wide default
// instance reachable through L(), and field helpers for the IDs the
// Kernel threads through every log line.
package kernellog

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Logger is the context-first logging surface used across the Kernel.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

type zapLogger struct {
	z *zap.Logger
}

func (l *zapLogger) Debug(_ context.Context, msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(_ context.Context, msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(_ context.Context, msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *zapLogger) Error(_ context.Context, msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

// New builds a Logger around a production zap config; dev builds may
// pass a *zap.Logger from zap.NewDevelopment() via Wrap instead.
func New() (Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{z: z}, nil
}

// Wrap adapts an existing *zap.Logger (e.g. a test's zaptest logger).
func Wrap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

var global atomic.Pointer[Logger]

// ReplaceGlobals installs l as the process-wide default returned by L().
func ReplaceGlobals(l Logger) {
	global.Store(&l)
}

// L returns the process-wide default logger. If ReplaceGlobals was
// never called it builds a fresh production logger, or a no-op logger
// if that cannot be built.
func L() Logger {
	if p := global.Load(); p != nil {
		return *p
	}
	l, err := New()
	if err != nil {
		// zap.NewProduction should never fail with default config; fall
		// back to a discard logger rather than panic from a logging call.
		return &zapLogger{z: zap.NewNop()}
	}
	return l
}

// WithNotebookID, WithCellID and WithHandlerID are the field helpers
// threaded through most Kernel log lines.
func WithNotebookID(id string) zap.Field { return zap.String("notebook_id", id) }
func WithCellID(id string) zap.Field     { return zap.String("cell_id", id) }
func WithHandlerID(id string) zap.Field  { return zap.String("handler_id", id) }
