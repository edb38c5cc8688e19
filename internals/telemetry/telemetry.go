package telemetry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

type Options struct {
	Enabled       bool
	CollectorAddr string
	ServiceName   string
	Version       string
	Environment   string
	SampleRatio   float64
}

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(ctx context.Context) error

func noop(context.Context) error { return nil }

// exporters builds the OTLP exporters for a collector address.
type exporters struct {
	trace  func(ctx context.Context, addr string) (sdktrace.SpanExporter, error)
	metric func(ctx context.Context, addr string) (sdkmetric.Exporter, error)
}

var otlpExporters = exporters{
	trace: func(ctx context.Context, addr string) (sdktrace.SpanExporter, error) {
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(addr), otlptracegrpc.WithInsecure())
	},
	metric: func(ctx context.Context, addr string) (sdkmetric.Exporter, error) {
		return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpoint(addr), otlpmetricgrpc.WithInsecure())
	},
}

// Setup installs OTLP trace and metric providers as the otel globals.
// When opts.Enabled is false nothing is installed and the global no-op providers stay in place.
func Setup(ctx context.Context, opts Options, log *logrus.Logger) (ShutdownFunc, error) {
	return setup(ctx, opts, log, otlpExporters)
}

// setup installs the globals only once both exporters exist, so a failure leaves them untouched.
func setup(ctx context.Context, opts Options, log *logrus.Logger, exp exporters) (ShutdownFunc, error) {
	if !opts.Enabled {
		log.Info("Tracing disabled.")
		return noop, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(opts.ServiceName),
			semconv.ServiceVersionKey.String(opts.Version),
			semconv.DeploymentEnvironmentKey.String(opts.Environment),
		),
	)
	if err != nil {
		return noop, errors.Wrap(err, "build resource")
	}

	traceExp, err := exp.trace(ctx, opts.CollectorAddr)
	if err != nil {
		return noop, errors.Wrap(err, "create trace exporter")
	}
	metricExp, err := exp.metric(ctx, opts.CollectorAddr)
	if err != nil {
		_ = traceExp.Shutdown(ctx)
		return noop, errors.Wrap(err, "create metric exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	log.WithField("collector", opts.CollectorAddr).Info("Tracing enabled.")
	return func(ctx context.Context) error {
		traceErr := tp.Shutdown(ctx)
		if err := mp.Shutdown(ctx); err != nil {
			if traceErr != nil {
				return errors.Wrapf(err, "shutdown meter provider (tracer provider: %v)", traceErr)
			}
			return errors.Wrap(err, "shutdown meter provider")
		}
		return errors.Wrap(traceErr, "shutdown tracer provider")
	}, nil
}
