package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("package", time.Second)
	r.IncStageResult("package", ResultSuccess)
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome(BuildOutcomeSuccess)
	r.IncPrerenderIssue("route")
	r.ObserveHTTPRequest(http.MethodGet, http.StatusOK, time.Millisecond)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveStageDuration("prerender", 150*time.Millisecond)
	pr.IncStageResult("prerender", ResultWarning)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(BuildOutcomeWarning)
	pr.IncPrerenderIssue("anchor")
	pr.IncPrerenderIssue("anchor")
	pr.IncPrerenderIssue("route")
	pr.ObserveHTTPRequest(http.MethodGet, http.StatusNotFound, time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.prerenderIssues.WithLabelValues("anchor")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.prerenderIssues.WithLabelValues("route")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("warning")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.httpRequests.WithLabelValues("GET", "4xx")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorder_NilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncPrerenderIssue("route")
		pr.ObserveHTTPRequest(http.MethodGet, http.StatusOK, time.Millisecond)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(BuildOutcomeSuccess)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `sitedeploy_build_outcomes_total{outcome="success"} 1`)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(200))
	assert.Equal(t, "3xx", StatusClass(301))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(503))
	assert.Equal(t, "1xx", StatusClass(101))
}
