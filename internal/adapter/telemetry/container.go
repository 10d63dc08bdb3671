package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.uber.org/zap"

	"todolist/internal/core/port"
	"todolist/internal/core/telemetry"
	"todolist/pkg/logger"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	MetricsPort    string
	OTLPEndpoint   string
	Enabled        bool
}

// Container owns the Prometheus registry and, when tracing is enabled, the
// OTLP trace and meter providers.
type Container struct {
	TracerProvider     *sdktrace.TracerProvider
	MeterProvider      *sdkmetric.MeterProvider
	PrometheusRegistry *prometheus.Registry
	MetricsServer      *http.Server
	AppMetrics         *telemetry.AppMetrics
	enabled            bool
}

func NewContainer(ctx context.Context, config Config, log *logger.Logger) (*Container, error) {
	registry := prometheus.NewRegistry()

	container := &Container{
		PrometheusRegistry: registry,
		AppMetrics:         telemetry.NewAppMetrics(registry),
		enabled:            config.Enabled,
	}

	if config.Enabled {
		if err := container.startProviders(ctx, config); err != nil {
			return nil, err
		}
	}

	if config.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		container.MetricsServer = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}

		go func() {
			if err := container.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Logger.Error("Failed to start metrics server", zap.Error(err))
			}
		}()
	}

	return container, nil
}

func (c *Container) startProviders(ctx context.Context, config Config) error {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(config.Environment),
	)

	c.MeterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(c.MeterProvider)

	otlpExporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(config.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)

	if err != nil {
		return err
	}

	c.TracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(otlpExporter,
			sdktrace.WithBatchTimeout(1*time.Second),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(c.TracerProvider)

	return runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second))
}

func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.TracerProvider != nil {
		errs = append(errs, c.TracerProvider.Shutdown(ctx))
	}

	if c.MeterProvider != nil {
		errs = append(errs, c.MeterProvider.Shutdown(ctx))
	}

	if c.MetricsServer != nil {
		errs = append(errs, c.MetricsServer.Shutdown(ctx))
	}

	return errors.Join(errs...)
}

// NewTelemetryProbe returns the OTEL probe when tracing is on and the no-op
// probe otherwise.
func (c *Container) NewTelemetryProbe(log *logger.Logger) port.Telemetry {
	if !c.enabled {
		return telemetry.NewNoOpProbe()
	}

	return telemetry.NewOTELProbe(log.Logger, c.AppMetrics)
}
