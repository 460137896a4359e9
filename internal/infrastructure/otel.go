package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"aurelion/internal/config"
)

// TracerName identifies the pipeline tracer.
const TracerName = "aurelion.pipeline"

// Tracing holds the configured tracer provider and its cleanup hooks.
type Tracing struct {
	Tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	file     *os.File
}

// InitTracing sets up OpenTelemetry tracing for pipeline steps. Spans
// are exported as JSON lines to the configured trace file. When tracing
// is disabled a no-op tracer is returned.
func InitTracing(cfg config.LoggingConfig, paths *config.Paths) (*Tracing, error) {
	if !cfg.TracingEnabled() {
		return &Tracing{Tracer: noop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	tracePath := paths.GetLogPath(cfg.TraceFilePath)
	if err := os.MkdirAll(filepath.Dir(tracePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	file, err := os.OpenFile(tracePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file %s: %w", tracePath, err)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return &Tracing{
		Tracer:   provider.Tracer(TracerName),
		provider: provider,
		file:     file,
	}, nil
}

// Shutdown flushes pending spans and closes the trace file.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	err := t.provider.Shutdown(ctx)
	if t.file != nil {
		if cerr := t.file.Close(); err == nil {
			err = cerr
		}
		t.file = nil
	}
	return err
}
