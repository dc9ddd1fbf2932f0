package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "production")
	log.Debug("hidden")
	log.Info("stock low", "sweet_id", "s1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stock low", line["msg"])
	assert.Equal(t, "s1", line["sweet_id"])
}

func TestNewLocalWritesDebugText(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "local").Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}

func TestWithCtx(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	var buf bytes.Buffer
	scoped := New(&buf, "local").With("request_id", "r-1")
	ctx := InjectLogger(context.Background(), scoped)
	WithCtx(ctx).Info("hello")
	assert.Contains(t, buf.String(), "request_id=r-1")
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("svc", "sweetshop")
	log.Info("only-a")
	log.Error("both")

	assert.Contains(t, a.String(), "only-a")
	assert.Contains(t, a.String(), "both")
	assert.NotContains(t, b.String(), "only-a")
	assert.Contains(t, b.String(), "svc=sweetshop")
}
