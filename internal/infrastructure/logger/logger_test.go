package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_WritesToFileAndExtraCore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	extra, recorded := observer.New(zapcore.InfoLevel)

	l, err := New(Config{Level: "info", Format: "json", Output: path}, extra, nil)
	require.NoError(t, err)

	l.Info("analysis finished", zap.Int("dishes", 3))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"analysis finished"`)
	assert.Contains(t, string(data), `"dishes":3`)

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "analysis finished", recorded.All()[0].Message)
}

func TestNew_BadOutputPath(t *testing.T) {
	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
	assert.Error(t, err)
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetTraceID(ctx))
	assert.NotNil(t, FromContext(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUserID(ctx, "chef-7")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "chef-7", GetUserID(ctx))

	core, recorded := observer.New(zapcore.InfoLevel)
	ctx = WithContext(ctx, zap.New(core))
	FromContext(ctx).Info("attached")
	assert.Equal(t, 1, recorded.Len())
}

func TestCtx_EnrichesWithTraceAndRequest(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0af7651916cd43dd8448eb211c80319c")
	spanID, _ := trace.SpanIDFromHex("b7ad6b7169203331")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithRequestID(ctx, "req-9")

	core, recorded := observer.New(zapcore.InfoLevel)
	Ctx(ctx, zap.New(core)).Info("hello")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", fields["trace_id"])
	assert.Equal(t, "b7ad6b7169203331", fields["span_id"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.NotContains(t, fields, "user_id")
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", GetTraceID(ctx))
}
