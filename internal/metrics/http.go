package metrics

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests that hit no registered route, so probing
// arbitrary paths cannot grow the label set.
const unmatchedRoute = "unmatched"

// apiLatencyBuckets cover local API calls: sub-millisecond reads up to payment
// calls that wait on the backend.
var apiLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type apiInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newAPIInstruments(meterProvider metric.MeterProvider, namespace string) (*apiInstruments, error) {
	meter := meterProvider.Meter(namespace)

	requests, err := meter.Int64Counter(
		metricName(namespace, "api_requests_total"),
		metric.WithDescription("Local API requests by route template"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api request counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		metricName(namespace, "api_request_duration_seconds"),
		metric.WithDescription("Local API request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(apiLatencyBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api duration histogram: %w", err)
	}

	inFlight, err := meter.Int64UpDownCounter(
		metricName(namespace, "api_requests_in_flight"),
		metric.WithDescription("Local API requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create api in-flight counter: %w", err)
	}

	return &apiInstruments{requests: requests, duration: duration, inFlight: inFlight}, nil
}

func metricName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "_" + name
}

// HTTPMetricsMiddleware records request count, latency and concurrency for the
// local API. Requests are labelled with the gin route template (for example
// /v1/queues/:kind) and the status class, never the raw path.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) (gin.HandlerFunc, error) {
	instruments, err := newAPIInstruments(meterProvider, namespace)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		ctx := c.Request.Context()
		routeAttrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
		)

		instruments.inFlight.Add(ctx, 1, routeAttrs)
		start := time.Now()

		c.Next()

		elapsed := time.Since(start).Seconds()
		instruments.inFlight.Add(ctx, -1, routeAttrs)

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.String("status_class", statusClass(c.Writer.Status())),
		)
		instruments.requests.Add(ctx, 1, attrs)
		instruments.duration.Record(ctx, elapsed, attrs)
	}, nil
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return fmt.Sprintf("%dxx", status/100)
}
