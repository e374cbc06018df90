package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pageinject"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	transformDuration *prom.HistogramVec
	transforms        *prom.CounterVec
	initDuration      prom.Histogram
	inits             *prom.CounterVec
	managedPages      prom.Gauge
	buildDuration     prom.Histogram
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		transformDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "transform_duration_seconds",
			Help:      "Duration of individual document transforms",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"outcome"}),
		transforms: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "transforms_total",
			Help:      "Document transforms by outcome",
		}, []string{"outcome"}),
		initDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "manifest_init_duration_seconds",
			Help:      "Duration of manifest (re)initialization",
			Buckets:   prom.DefBuckets,
		}),
		inits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_inits_total",
			Help:      "Manifest initializations by result",
		}, []string{"result"}),
		managedPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "managed_pages",
			Help:      "Number of routes in the resolved page mapping",
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total duration of a full build",
			Buckets:   prom.DefBuckets,
		}),
	}
	reg.MustRegister(pr.transformDuration, pr.transforms, pr.initDuration, pr.inits, pr.managedPages, pr.buildDuration)
	return pr
}

func (p *PrometheusRecorder) ObserveTransformDuration(outcome Outcome, d time.Duration) {
	if p == nil {
		return
	}
	p.transformDuration.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTransform(outcome Outcome) {
	if p == nil {
		return
	}
	p.transforms.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveInitDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.initDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncInit(result InitResult) {
	if p == nil {
		return
	}
	p.inits.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetManagedPages(n int) {
	if p == nil {
		return
	}
	p.managedPages.Set(float64(n))
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}
