// Package metrics records rewardsync instruments through OpenTelemetry and
// serves them to Prometheus from a private registry.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Provider owns the meter provider every instrument in the app is created from.
type Provider struct {
	namespace     string
	registry      *prometheus.Registry
	exporter      *promexporter.Exporter
	meterProvider *sdkmetric.MeterProvider
	handler       http.Handler
}

// NewProvider builds a registry holding the OpenTelemetry instruments together
// with the Go runtime and process collectors, all under namespace.
func NewProvider(namespace string) (*Provider, error) {
	registry := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register runtime collector: %w", err)
		}
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", serviceName(namespace)))

	return &Provider{
		namespace: namespace,
		registry:  registry,
		exporter:  exporter,
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(res),
		),
		handler: promhttp.InstrumentMetricHandler(
			registry,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{
				Registry:          registry,
				ErrorHandling:     promhttp.ContinueOnError,
				EnableOpenMetrics: true,
			}),
		),
	}, nil
}

func serviceName(namespace string) string {
	if namespace == "" {
		return "rewardsync"
	}
	return namespace
}

// Namespace is the prefix shared by the instruments created from this provider.
func (p *Provider) Namespace() string {
	return p.namespace
}

// Handler serves the registry in the Prometheus exposition format. Scrapes are
// themselves counted under promhttp_metric_handler_requests_total.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// MeterProvider returns the OpenTelemetry meter provider.
func (p *Provider) MeterProvider() *sdkmetric.MeterProvider {
	return p.meterProvider
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
