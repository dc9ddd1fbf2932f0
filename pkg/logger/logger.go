// Package logger provides the process-wide structured logger built on log/slog.
//
// Handlers log through WithCtx so every line carries the request_id set by
// the request-logging middleware:
//
//	logger.WithCtx(r.Context()).Info("sweet purchased", "sweet_id", id)
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/sweetshop/config"
)

var L *slog.Logger

func init() {
	Init()
}

// Init rebuilds L for the current APP_ENV. Call it after config.Load.
func Init() {
	L = New(os.Stdout, config.AppEnv())
	slog.SetDefault(L)
}

// New builds a logger for env: JSON at info level in production, text at
// debug level everywhere else.
func New(w io.Writer, env string) *slog.Logger {
	return slog.New(handlerFor(w, env))
}

func handlerFor(w io.Writer, env string) slog.Handler {
	switch env {
	case "production", "prod":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}

// AttachMongo tees every record into a MongoDB collection in addition to
// stdout. The returned func flushes and disconnects the sink.
func AttachMongo(ctx context.Context, uri, db, collection string) (func(), error) {
	mh, err := NewMongoHandler(ctx, uri, db, collection)
	if err != nil {
		return func() {}, fmt.Errorf("logger: attach mongo: %w", err)
	}
	L = slog.New(NewMultiHandler(handlerFor(os.Stdout, config.AppEnv()), mh))
	slog.SetDefault(L)
	return mh.Close, nil
}

type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores log in ctx for WithCtx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
