package injector

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/pageinject/internal/eventstore"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
)

// EventSink receives ledger events. *eventstore.SQLiteStore satisfies it.
type EventSink interface {
	Append(ctx context.Context, event eventstore.Event) error
}

// RouteTypesWriter writes the route declaration file and reports whether it changed.
type RouteTypesWriter func(path string, routes []string) (bool, error)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder (default metrics.NoopRecorder).
func WithRecorder(recorder metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}

// WithEventSink records initialization and transform events to sink.
func WithEventSink(sink EventSink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// WithRouteTypesWriter replaces the route declaration writer (default routetypes.Write).
func WithRouteTypesWriter(w RouteTypesWriter) Option {
	return func(o *Orchestrator) {
		if w != nil {
			o.writeRouteTypes = w
		}
	}
}
