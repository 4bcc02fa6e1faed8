// Package observability configures structured logging for the CLI.
//
// Logs always go to a local slog handler (text or JSON). When an exporter is
// configured, records are also sent through an OpenTelemetry log pipeline.
// A tracer provider is installed as the global one, so spans started with
// otel.Tracer carry real ids. Records logged with a context that carries a
// valid span get trace_id and span_id attributes, and finished spans are
// logged at debug level.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const instrumentationName = "github.com/iasql/cli"

// Exporter names accepted in Options.Exporter.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Options configures Instrument.
type Options struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Format is text or json.
	Format string
	// Exporter selects the OpenTelemetry log exporter. Empty means none.
	Exporter string
	// Writer receives local log output. Defaults to os.Stderr.
	Writer io.Writer
}

// Instrument installs the default slog logger and the global tracer provider.
// The returned function flushes and stops both pipelines and must be called
// before the process exits.
func Instrument(ctx context.Context, opts Options) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return noop, fmt.Errorf("parsing log level %q: %w", opts.Level, err)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	local, err := localHandler(w, opts.Format, level)
	if err != nil {
		return noop, err
	}

	exporter, err := newExporter(ctx, opts.Exporter, w)
	if err != nil {
		return noop, err
	}

	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanLogger{}))
	otel.SetTracerProvider(tracerProvider)

	if exporter == nil {
		slog.SetDefault(slog.New(withTrace(local)))
		return tracerProvider.Shutdown, nil
	}

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(level))
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(processor))
	global.SetLoggerProvider(provider)

	remote := otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(provider))
	slog.SetDefault(slog.New(withTrace(fanout{local, remote})))

	return func(ctx context.Context) error {
		// Spans log on end, so the tracer provider stops before the log pipeline.
		return errors.Join(tracerProvider.Shutdown(ctx), provider.Shutdown(ctx))
	}, nil
}

func localHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

// newExporter returns nil when no exporter is configured. The stdout exporter
// writes to w alongside the local handler.
func newExporter(ctx context.Context, name string, w io.Writer) (sdklog.Exporter, error) {
	switch name {
	case "", ExporterNone:
		return nil, nil
	case ExporterStdout:
		return stdoutlog.New(stdoutlog.WithWriter(w))
	case ExporterOTLPHTTP:
		return otlploghttp.New(ctx)
	case ExporterOTLPGRPC:
		return otlploggrpc.New(ctx)
	default:
		return nil, errors.New("unsupported telemetry exporter " + name)
	}
}

func severity(level slog.Level) minsev.Severity {
	switch {
	case level < slog.LevelInfo:
		return minsev.SeverityDebug
	case level < slog.LevelWarn:
		return minsev.SeverityInfo
	case level < slog.LevelError:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
