package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/consensus/logger"
)

// Metric instrument names.
const (
	MetricIntersectionTotal    = "intersect.invocations"
	MetricIntersectionDuration = "intersect.duration"
	MetricIntersectionSize     = "intersect.result.size"
	MetricSourceErrors         = "intersect.source.errors"
	MetricOperationTotal       = "operation.total"
	MetricOperationDuration    = "operation.duration"
	MetricErrorTotal           = "error.total"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is the OTLP HTTP endpoint host:port.
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs a global meter provider exporting over OTLP/HTTP.
// The caller owns shutdown of the returned provider.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(config.Endpoint)}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded by intersections and provider middleware.
type Metrics struct {
	intersectionTotal    metric.Int64Counter
	intersectionDuration metric.Float64Histogram
	intersectionSize     metric.Int64Histogram
	sourceErrors         metric.Int64Counter
	operationTotal       metric.Int64Counter
	operationDuration    metric.Float64Histogram
	errorTotal           metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.intersectionTotal, err = meter.Int64Counter(MetricIntersectionTotal,
		metric.WithDescription("Intersection invocations by status"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricIntersectionTotal, err)
	}
	if m.intersectionDuration, err = meter.Float64Histogram(MetricIntersectionDuration,
		metric.WithDescription("Duration of intersection invocations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricIntersectionDuration, err)
	}
	if m.intersectionSize, err = meter.Int64Histogram(MetricIntersectionSize,
		metric.WithDescription("Number of items returned by an intersection"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricIntersectionSize, err)
	}
	if m.sourceErrors, err = meter.Int64Counter(MetricSourceErrors,
		metric.WithDescription("Source failures that aborted an intersection"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricSourceErrors, err)
	}
	if m.operationTotal, err = meter.Int64Counter(MetricOperationTotal,
		metric.WithDescription("Total number of provider operations"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricOperationTotal, err)
	}
	if m.operationDuration, err = meter.Float64Histogram(MetricOperationDuration,
		metric.WithDescription("Duration of provider operations in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricOperationDuration, err)
	}
	if m.errorTotal, err = meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Total errors by type and component"),
	); err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}
	return m, nil
}

// RecordIntersection records one intersection invocation.
func (m *Metrics) RecordIntersection(ctx context.Context, name, status string, sources, size int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("intersection", name),
		attribute.String("status", status),
		attribute.Int("sources", sources),
	)
	m.intersectionTotal.Add(ctx, 1, attrs)
	m.intersectionDuration.Record(ctx, duration.Seconds(), attrs)
	if status == "ok" {
		m.intersectionSize.Record(ctx, int64(size), metric.WithAttributes(
			attribute.String("intersection", name),
		))
	}
}

// RecordSourceError records the source whose failure aborted an intersection.
func (m *Metrics) RecordSourceError(ctx context.Context, name string, source int) {
	m.sourceErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intersection", name),
		attribute.Int("source", source),
	))
}

// RecordOperation records a provider operation.
func (m *Metrics) RecordOperation(ctx context.Context, component, operation, status string, duration time.Duration) {
	m.operationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	m.operationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("operation", operation),
	))
}

// RecordError records an error by type and component.
func (m *Metrics) RecordError(ctx context.Context, errType, component string) {
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", errType),
		attribute.String("component", component),
	))
}
