package observability

import (
	"context"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanLogger writes every finished span to the default logger at debug level.
// Errors recorded on the span are logged with it.
type spanLogger struct{}

var _ sdktrace.SpanProcessor = spanLogger{}

func (spanLogger) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (spanLogger) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	attrs := []slog.Attr{
		slog.String("span", s.Name()),
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
		slog.Duration("duration", s.EndTime().Sub(s.StartTime())),
	}
	for _, event := range s.Events() {
		if event.Name != "exception" {
			continue
		}
		for _, kv := range event.Attributes {
			if kv.Key == "exception.message" {
				attrs = append(attrs, slog.String("error", kv.Value.AsString()))
			}
		}
	}
	slog.Default().LogAttrs(context.Background(), slog.LevelDebug, "span finished", attrs...)
}

func (spanLogger) Shutdown(context.Context) error   { return nil }
func (spanLogger) ForceFlush(context.Context) error { return nil }
