package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveTransformDuration(OutcomeRewritten, time.Millisecond)
		r.IncTransform(OutcomeFailed)
		r.ObserveInitDuration(time.Second)
		r.IncInit(InitSuccess)
		r.SetManagedPages(3)
		r.ObserveBuildDuration(time.Second)
	})
}

func TestNilPrometheusRecorder(t *testing.T) {
	var p *PrometheusRecorder
	assert.NotPanics(t, func() {
		p.IncTransform(OutcomePassthrough)
		p.SetManagedPages(1)
	})
}
