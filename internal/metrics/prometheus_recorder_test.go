package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prom.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveTransformDuration(OutcomeRewritten, 2*time.Millisecond)
	pr.IncTransform(OutcomeRewritten)
	pr.IncTransform(OutcomeRewritten)
	pr.IncTransform(OutcomePassthrough)
	pr.ObserveInitDuration(5 * time.Millisecond)
	pr.IncInit(InitSuccess)
	pr.SetManagedPages(7)
	pr.ObserveBuildDuration(time.Second)

	families := gather(t, reg)

	transforms := families["pageinject_transforms_total"]
	require.NotNil(t, transforms)
	counts := map[string]float64{}
	for _, m := range transforms.GetMetric() {
		counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.InDelta(t, 2, counts["rewritten"], 0)
	assert.InDelta(t, 1, counts["passthrough"], 0)

	pages := families["pageinject_managed_pages"]
	require.NotNil(t, pages)
	assert.InDelta(t, 7, pages.GetMetric()[0].GetGauge().GetValue(), 0)

	assert.Contains(t, families, "pageinject_manifest_inits_total")
	assert.Contains(t, families, "pageinject_transform_duration_seconds")
	assert.Contains(t, families, "pageinject_build_duration_seconds")
}

func TestServerHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncInit(InitFailed)
	srv := NewServer("127.0.0.1:0", reg, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pageinject_manifest_inits_total{result="failed"} 1`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
