package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/storefront-api/internal/metrics"
)

func TestCollector_Auth(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordRegistration(metrics.OutcomeSuccess)
	c.RecordRegistration(metrics.OutcomeDuplicate)
	c.RecordRegistration(metrics.OutcomeDuplicate)
	c.RecordLogin(metrics.MethodPassword, metrics.OutcomeInvalid)

	expected := `
# HELP storefront_auth_registrations_total Local registration attempts by outcome
# TYPE storefront_auth_registrations_total counter
storefront_auth_registrations_total{outcome="duplicate"} 2
storefront_auth_registrations_total{outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storefront_auth_registrations_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "storefront_auth_logins_total"))
}

func TestCollector_HTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordRequest(http.MethodPost, "/api/login", http.StatusUnauthorized, 15*time.Millisecond)

	srv := httptest.NewServer(metrics.Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `storefront_http_requests_total{method="POST",route="/api/login",status="401"} 1`)
	assert.Contains(t, string(body), "storefront_http_request_duration_seconds_bucket")
}
