package telemetry

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func TestSetup_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Setup(context.Background(), Options{}, quietLogger())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if otel.GetTracerProvider() != before {
		t.Fatalf("disabled setup replaced the global tracer provider")
	}
}

func TestSetup_EnabledInstallsProviders(t *testing.T) {
	shutdown, err := Setup(context.Background(), Options{
		Enabled:       true,
		CollectorAddr: "127.0.0.1:4317",
		ServiceName:   "users-api-test",
		Version:       "test",
		Environment:   "test",
		SampleRatio:   1,
	}, quietLogger())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		// nothing listens on the collector address; flush errors are expected
		_ = shutdown(ctx)
	})

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("tracer provider = %T", otel.GetTracerProvider())
	}
	if _, ok := otel.GetMeterProvider().(*sdkmetric.MeterProvider); !ok {
		t.Fatalf("meter provider = %T", otel.GetMeterProvider())
	}
}

func TestSetup_MetricExporterFailureLeavesGlobalsAlone(t *testing.T) {
	tracerBefore := otel.GetTracerProvider()
	meterBefore := otel.GetMeterProvider()
	traceExp := tracetest.NewInMemoryExporter()

	shutdown, err := setup(context.Background(), Options{Enabled: true, SampleRatio: 1}, quietLogger(), exporters{
		trace: func(context.Context, string) (sdktrace.SpanExporter, error) { return traceExp, nil },
		metric: func(context.Context, string) (sdkmetric.Exporter, error) {
			return nil, errors.New("connection refused")
		},
	})
	if err == nil {
		t.Fatalf("expected setup to fail")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown after failure: %v", err)
	}
	if otel.GetTracerProvider() != tracerBefore {
		t.Fatalf("tracer provider replaced: %T", otel.GetTracerProvider())
	}
	if otel.GetMeterProvider() != meterBefore {
		t.Fatalf("meter provider replaced: %T", otel.GetMeterProvider())
	}
}
