package config

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/version"
)

type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	out            io.Closer
}

// SetupTelemetry installs global tracer and meter providers.
// Data is sent to TelemetryEndpoint via OTLP/gRPC, or written as JSON to
// TelemetryOutput (stderr if empty) when no endpoint is configured.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName("rts"),
			semconv.ServiceVersion(version.Version),
		))
	if err != nil {
		return nil, err
	}
	ret := &Telemetry{}
	var spanExporter sdktrace.SpanExporter
	var metricExporter sdkmetric.Exporter

	if TelemetryEndpoint != "" {
		if spanExporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(TelemetryEndpoint),
			otlptracegrpc.WithInsecure()); err != nil {
			return nil, err
		}
		if metricExporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
			otlpmetricgrpc.WithInsecure()); err != nil {
			return nil, err
		}
	} else {
		var out io.Writer = os.Stderr
		if TelemetryOutput != "" {
			f, err := os.Create(TelemetryOutput)
			if err != nil {
				return nil, err
			}
			out = f
			ret.out = f
		}
		if spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(out)); err != nil {
			return nil, err
		}
		if metricExporter, err = stdoutmetric.New(stdoutmetric.WithWriter(out)); err != nil {
			return nil, err
		}
	}

	ret.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	ret.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(ret.tracerProvider)
	otel.SetMeterProvider(ret.meterProvider)

	if err := otlpruntime.Start(
		otlpruntime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	return ret, nil
}

// Shutdown flushes pending telemetry data
func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := errors.Join(
		t.tracerProvider.Shutdown(ctx),
		t.meterProvider.Shutdown(ctx),
	)
	if t.out != nil {
		err = errors.Join(err, t.out.Close())
	}
	if err != nil {
		log.Warn("Error shutting down telemetry", log.ErrorField(err))
	}
}
