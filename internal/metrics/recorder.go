package metrics

import "time"

// Outcome enumerates per-document transform results.
type Outcome string

const (
	OutcomeRewritten   Outcome = "rewritten"
	OutcomePassthrough Outcome = "passthrough"
	OutcomeFailed      Outcome = "failed"
)

// InitResult enumerates manifest initialization results.
type InitResult string

const (
	InitSuccess InitResult = "success"
	InitFailed  InitResult = "failed"
)

// Recorder defines observability hooks for manifest initialization and document transforms.
type Recorder interface {
	ObserveTransformDuration(outcome Outcome, d time.Duration)
	IncTransform(outcome Outcome)
	ObserveInitDuration(d time.Duration)
	IncInit(result InitResult)
	SetManagedPages(n int)
	ObserveBuildDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTransformDuration(Outcome, time.Duration) {}
func (NoopRecorder) IncTransform(Outcome)                            {}
func (NoopRecorder) ObserveInitDuration(time.Duration)               {}
func (NoopRecorder) IncInit(InitResult)                              {}
func (NoopRecorder) SetManagedPages(int)                             {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)              {}
