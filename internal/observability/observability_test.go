package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func restoreDefaultLogger(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestInstrumentLocal(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		logged  func()
		want    []string
		notWant []string
	}{
		{
			name:    "text at warn drops info",
			opts:    Options{Level: "warn", Format: "text"},
			logged:  func() { slog.Info("hidden"); slog.Warn("shown", "db", "alpha") },
			want:    []string{"shown", "db=alpha"},
			notWant: []string{"hidden"},
		},
		{
			name:   "json at debug",
			opts:   Options{Level: "debug", Format: "json"},
			logged: func() { slog.Debug("polling", "attempt", 2) },
			want:   []string{`"msg":"polling"`, `"attempt":2`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreDefaultLogger(t)
			var buf bytes.Buffer
			tt.opts.Writer = &buf

			shutdown, err := Instrument(context.Background(), tt.opts)
			require.NoError(t, err)
			tt.logged()
			require.NoError(t, shutdown(context.Background()))

			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestInstrumentRejectsInvalidOptions(t *testing.T) {
	restoreDefaultLogger(t)

	_, err := Instrument(context.Background(), Options{Level: "loud"})
	assert.Error(t, err)

	_, err = Instrument(context.Background(), Options{Level: "info", Format: "xml"})
	assert.Error(t, err)

	_, err = Instrument(context.Background(), Options{Level: "info", Exporter: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestInstrumentWithStdoutExporter(t *testing.T) {
	restoreDefaultLogger(t)
	var buf bytes.Buffer

	shutdown, err := Instrument(context.Background(), Options{Level: "info", Exporter: ExporterStdout, Writer: &buf})
	require.NoError(t, err)

	slog.Info("exported")
	require.NoError(t, shutdown(context.Background()))

	// once from the local handler, once from the exporter
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "exported"), 2)
}

func TestInstrumentInstallsTracerProvider(t *testing.T) {
	restoreDefaultLogger(t)
	var buf bytes.Buffer

	shutdown, err := Instrument(context.Background(), Options{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	ctx, span := otel.Tracer("test").Start(context.Background(), "login")
	require.True(t, span.SpanContext().IsValid())
	slog.InfoContext(ctx, "inside span")
	span.RecordError(errors.New("boom"))
	span.End()
	require.NoError(t, shutdown(context.Background()))

	traceID := span.SpanContext().TraceID().String()
	var sawLog, sawSpan bool
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var record map[string]any
		require.NoError(t, json.Unmarshal(line, &record))
		switch record["msg"] {
		case "inside span":
			sawLog = true
			assert.Equal(t, traceID, record["trace_id"])
		case "span finished":
			sawSpan = true
			assert.Equal(t, "login", record["span"])
			assert.Equal(t, traceID, record["trace_id"])
			assert.Equal(t, "boom", record["error"])
		}
	}
	assert.True(t, sawLog)
	assert.True(t, sawSpan)
}

func TestTraceHandlerAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(withTrace(slog.NewJSONHandler(&buf, nil)))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "with span")
	logger.Info("without span")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", first["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", first["span_id"])
	assert.NotContains(t, second, "trace_id")
}

func TestFanoutRespectsLevels(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	logger := slog.New(fanout{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	}).With("component", "test")

	logger.Debug("detail")
	logger.Error("failure")

	assert.Contains(t, debugBuf.String(), "detail")
	assert.Contains(t, debugBuf.String(), "failure")
	assert.NotContains(t, errorBuf.String(), "detail")
	assert.Contains(t, errorBuf.String(), "component=test")
}
