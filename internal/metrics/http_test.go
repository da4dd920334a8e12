package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type apiMetricsFixture struct {
	reader *sdkmetric.ManualReader
	router *gin.Engine
}

func newAPIMetricsFixture(t *testing.T) *apiMetricsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reader := sdkmetric.NewManualReader()
	middleware, err := HTTPMetricsMiddleware(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)), "rewardsync")
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware)
	router.GET("/v1/queues/:kind", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": []string{}}) })
	router.POST("/v1/queues/:kind/process", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	router.GET("/v1/payments/:id", func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "not_found"}) })

	return &apiMetricsFixture{reader: reader, router: router}
}

func (f *apiMetricsFixture) serve(method, path string) {
	f.router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, path, nil))
}

func (f *apiMetricsFixture) metric(t *testing.T, name string) metricdata.Metrics {
	t.Helper()
	return collectMetric(t, f.reader, name)
}

func int64Point(t *testing.T, m metricdata.Metrics, kv ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	want := attribute.NewSet(kv...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	t.Fatalf("no %s point for %v", m.Name, kv)
	return 0
}

func TestHTTPMetricsMiddleware_LabelsByRouteTemplate(t *testing.T) {
	f := newAPIMetricsFixture(t)

	f.serve(http.MethodGet, "/v1/queues/ANSWER_SUBMISSION")
	f.serve(http.MethodGet, "/v1/queues/ANSWER_SUBMISSION")
	f.serve(http.MethodGet, "/v1/queues/MEDIA_UPLOAD")
	f.serve(http.MethodPost, "/v1/queues/MEDIA_UPLOAD/process")
	f.serve(http.MethodGet, "/v1/payments/0b9f3c9e-1111-4222-8333-444455556666")

	requests := f.metric(t, "rewardsync_api_requests_total")
	assert.Equal(t, int64(3), int64Point(t, requests,
		attribute.String("method", http.MethodGet),
		attribute.String("route", "/v1/queues/:kind"),
		attribute.String("status_class", "2xx"),
	))
	assert.Equal(t, int64(1), int64Point(t, requests,
		attribute.String("method", http.MethodPost),
		attribute.String("route", "/v1/queues/:kind/process"),
		attribute.String("status_class", "2xx"),
	))
	assert.Equal(t, int64(1), int64Point(t, requests,
		attribute.String("method", http.MethodGet),
		attribute.String("route", "/v1/payments/:id"),
		attribute.String("status_class", "4xx"),
	))

	sum := requests.Data.(metricdata.Sum[int64])
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value("route")
		assert.NotContains(t, route.AsString(), "ANSWER_SUBMISSION", "raw path leaked into labels")
	}
}

func TestHTTPMetricsMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	f := newAPIMetricsFixture(t)

	f.serve(http.MethodGet, "/wp-login.php")
	f.serve(http.MethodGet, "/v1/queues")
	f.serve(http.MethodGet, "/.env")

	requests := f.metric(t, "rewardsync_api_requests_total")
	assert.Equal(t, int64(3), int64Point(t, requests,
		attribute.String("method", http.MethodGet),
		attribute.String("route", "unmatched"),
		attribute.String("status_class", "4xx"),
	))
	assert.Len(t, requests.Data.(metricdata.Sum[int64]).DataPoints, 1)
}

func TestHTTPMetricsMiddleware_RecordsLatency(t *testing.T) {
	f := newAPIMetricsFixture(t)

	f.serve(http.MethodGet, "/v1/queues/ANSWER_SUBMISSION")
	f.serve(http.MethodGet, "/v1/queues/MEDIA_UPLOAD")

	duration := f.metric(t, "rewardsync_api_request_duration_seconds")
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
	assert.Equal(t, apiLatencyBuckets, hist.DataPoints[0].Bounds)
}

func TestHTTPMetricsMiddleware_TracksInFlight(t *testing.T) {
	f := newAPIMetricsFixture(t)
	routeAttrs := []attribute.KeyValue{
		attribute.String("method", http.MethodPost),
		attribute.String("route", "/v1/sync"),
	}

	var during int64
	f.router.POST("/v1/sync", func(c *gin.Context) {
		during = int64Point(t, f.metric(t, "rewardsync_api_requests_in_flight"), routeAttrs...)
		c.Status(http.StatusAccepted)
	})

	f.serve(http.MethodPost, "/v1/sync")

	assert.Equal(t, int64(1), during)
	assert.Equal(t, int64(0), int64Point(t, f.metric(t, "rewardsync_api_requests_in_flight"), routeAttrs...))
}

func TestHTTPMetricsMiddleware_ExportedThroughProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	provider, err := NewProvider("rewardsync")
	require.NoError(t, err)
	defer func() { assert.NoError(t, provider.Shutdown(context.Background())) }()

	middleware, err := HTTPMetricsMiddleware(provider.MeterProvider(), provider.Namespace())
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware)
	router.GET("/v1/queues/:kind", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/queues/MEDIA_UPLOAD", nil))

	output := scrape(t, provider)
	assert.Regexp(t, `rewardsync_api_requests_total\{[^}]*route="/v1/queues/:kind"[^}]*\} 1`, output)
	assert.Regexp(t, `rewardsync_api_request_duration_seconds_count\{[^}]*route="/v1/queues/:kind"[^}]*\} 1`, output)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusAccepted))
	assert.Equal(t, "4xx", statusClass(http.StatusTooManyRequests))
	assert.Equal(t, "5xx", statusClass(http.StatusBadGateway))
	assert.Equal(t, "other", statusClass(0))
}
