// Package metrics provides the transform metrics of the injector.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so call sites never check for nil:
//
//	type Orchestrator struct {
//	    recorder metrics.Recorder
//	}
//
//	o.recorder.IncTransform(metrics.OutcomeRewritten)
//
// PrometheusRecorder registers its collectors on a caller-provided registry;
// Server exposes that registry for scraping while the watch command runs.
package metrics
