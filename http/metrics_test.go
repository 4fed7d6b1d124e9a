package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	gatehttp "github.com/sagarc03/bucketgate/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Endpoint(t *testing.T) {
	m := gatehttp.NewMetrics()
	h, _ := newTestHandler(t, func(c *gatehttp.HandlerConfig) { c.Metrics = m })

	serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	serve(h, httptest.NewRequest(http.MethodGet, "/download?path=a.txt", nil))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bucketgate_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
	assert.Contains(t, body, `bucketgate_http_requests_total{code="401",method="GET",route="/download"} 1`)
	assert.Contains(t, body, "bucketgate_auth_failures_total 1")
}

func TestMetrics_CountsAuthFailures(t *testing.T) {
	m := gatehttp.NewMetrics()
	h, _ := newTestHandler(t, func(c *gatehttp.HandlerConfig) { c.Metrics = m })

	req := httptest.NewRequest(http.MethodDelete, "/delete?path=a.txt", nil)
	req.SetBasicAuth("alice", "wrong")
	serve(h, req)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var failures float64
	for _, f := range families {
		if f.GetName() == "bucketgate_auth_failures_total" {
			failures = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), failures)
}

func TestMetrics_DisabledByDefault(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
