package injector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/pageinject/internal/config"
	"git.home.luguber.info/inful/pageinject/internal/eventstore"
	"git.home.luguber.info/inful/pageinject/internal/logfields"
	"git.home.luguber.info/inful/pageinject/internal/manifest"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
	"git.home.luguber.info/inful/pageinject/internal/observability"
	"git.home.luguber.info/inful/pageinject/internal/rewrite"
	"git.home.luguber.info/inful/pageinject/internal/route"
	"git.home.luguber.info/inful/pageinject/internal/routetypes"
)

// ProgressInterval is how many transforms pass between progress log lines.
const ProgressInterval = 20

// ChangeKind is the kind of a watched file change.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Snapshot is the resolved state of one successful initialization.
type Snapshot struct {
	Root       string
	Manifest   string
	Mapping    manifest.Mapping
	PageFiles  []string
	TotalPages int
}

// Orchestrator owns the resolved page mapping and transforms documents with it.
// It is safe for concurrent use.
type Orchestrator struct {
	cfg             *config.Config
	logger          *slog.Logger
	recorder        metrics.Recorder
	sink            EventSink
	writeRouteTypes RouteTypesWriter

	initMu     sync.Mutex
	state      atomic.Pointer[Snapshot]
	transforms atomic.Int64
}

// New creates an uninitialized Orchestrator for cfg.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = &config.Config{}
	}
	o := &Orchestrator{
		cfg:             cfg,
		logger:          slog.Default(),
		recorder:        metrics.NoopRecorder{},
		writeRouteTypes: routetypes.Write,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() *config.Config {
	return o.cfg
}

// Snapshot returns the current state, or nil when uninitialized.
func (o *Orchestrator) Snapshot() *Snapshot {
	return o.state.Load()
}

// Initialized reports whether a resolved mapping is available.
func (o *Orchestrator) Initialized() bool {
	return o.state.Load() != nil
}

// TransformCount returns the number of managed pages transformed since the last initialization.
func (o *Orchestrator) TransformCount() int64 {
	return o.transforms.Load()
}

// OnBuildStart initializes the orchestrator unless it already is.
func (o *Orchestrator) OnBuildStart(ctx context.Context) error {
	observability.Logger(ctx, o.logger).Debug("Starting build initialization")
	if o.Initialized() {
		observability.Logger(ctx, o.logger).Debug("Already initialized, skipping")
		return nil
	}
	return o.Initialize(ctx)
}

// OnWatchedFileChanged reinitializes when the manifest file was updated.
// It reports whether a reinitialization ran.
func (o *Orchestrator) OnWatchedFileChanged(ctx context.Context, id string, kind ChangeKind) (bool, error) {
	if kind != ChangeUpdate || filepath.Base(filepath.FromSlash(id)) != o.cfg.ManifestName() {
		return false, nil
	}
	observability.Logger(ctx, o.logger).Info("Detected manifest update, reinitializing",
		logfields.Path(id), logfields.Event(string(kind)))
	return true, o.Initialize(ctx)
}

// Initialize loads the manifest and replaces the resolved state. While it
// runs the state is cleared, so concurrent transforms pass through. On failure
// the state stays empty and the error is returned.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.initMu.Lock()
	defer o.initMu.Unlock()

	o.state.Store(nil)
	span := observability.StartSpan(ctx, o.logger, "manifest.initialize")
	log := observability.Logger(ctx, o.logger)

	paths, err := o.cfg.ResolvePaths()
	if err != nil {
		span.RecordError(err)
		o.recordInitDuration(span)
		return o.fail(ctx, "", err)
	}

	m, files, err := manifest.Load(paths.Manifest, paths.Root)
	if err != nil {
		span.RecordError(err)
		o.recordInitDuration(span)
		return o.fail(ctx, paths.Manifest, err)
	}

	mapping := manifest.Resolve(m, o.cfg)
	snap := &Snapshot{
		Root:       paths.Root,
		Manifest:   paths.Manifest,
		Mapping:    mapping,
		PageFiles:  files,
		TotalPages: len(mapping),
	}
	o.writeDeclarations(ctx, snap)

	o.transforms.Store(0)
	o.state.Store(snap)
	span.SetAttribute(logfields.PageCount(snap.TotalPages))
	o.recordInitDuration(span)
	o.recorder.IncInit(metrics.InitSuccess)
	o.recorder.SetManagedPages(snap.TotalPages)

	if snap.TotalPages > 0 {
		log.Info("Initialized pages", logfields.PageCount(snap.TotalPages), logfields.Manifest(paths.Manifest))
	} else {
		log.Warn("No pages found in manifest", logfields.Manifest(paths.Manifest))
	}
	o.record(ctx, func(buildID string) (eventstore.Event, error) {
		return eventstore.NewManifestLoaded(buildID, eventstore.ManifestLoadedPayload{
			Manifest:  paths.Manifest,
			PageCount: snap.TotalPages,
			FileCount: len(files),
		})
	})
	return nil
}

// Reset clears the resolved state and the transform counter.
func (o *Orchestrator) Reset() {
	o.state.Store(nil)
	o.transforms.Store(0)
	o.recorder.SetManagedPages(0)
}

func (o *Orchestrator) fail(ctx context.Context, manifestPath string, err error) error {
	o.Reset()
	o.recorder.IncInit(metrics.InitFailed)
	observability.Logger(ctx, o.logger).Error("Initialization failed",
		logfields.Manifest(manifestPath), logfields.Error(err))
	o.record(ctx, func(buildID string) (eventstore.Event, error) {
		return eventstore.NewManifestFailed(buildID, eventstore.ManifestFailedPayload{
			Manifest: manifestPath,
			Error:    err.Error(),
		})
	})
	return err
}

func (o *Orchestrator) recordInitDuration(span *observability.Span) {
	o.recorder.ObserveInitDuration(span.End())
}

func (o *Orchestrator) writeDeclarations(ctx context.Context, snap *Snapshot) {
	if o.cfg.DTS == "" {
		return
	}
	path := o.cfg.ResolveOutput(o.cfg.DTS)
	log := observability.Logger(ctx, o.logger)
	changed, err := o.writeRouteTypes(path, snap.Mapping.Routes())
	if err != nil {
		log.Warn("Failed to write route declarations", logfields.Path(path), logfields.Error(err))
		return
	}
	if changed {
		log.Debug("Route declarations updated", logfields.Path(path))
	}
}

// OnTransform rewrites a managed page. Documents that are not pages, arrive
// while the state is stale, or have no manifest entry pass through unchanged.
// Rewrite failures also pass the document through, with Result.Errors set.
func (o *Orchestrator) OnTransform(ctx context.Context, id, source string) rewrite.Result {
	if !route.IsPage(id) {
		return rewrite.Result{Code: source}
	}
	start := time.Now()
	log := observability.Logger(ctx, o.logger)

	snap := o.state.Load()
	if snap == nil {
		log.Warn("Not initialized, skipping transform", logfields.Document(id))
		o.finish(ctx, start, eventstore.DocumentTransformedPayload{Document: id}, metrics.OutcomePassthrough)
		return rewrite.Result{Code: source}
	}

	r, ok := route.ToRoute(snap.Root, id)
	if !ok {
		log.Debug("No route match", logfields.Document(id))
		o.finish(ctx, start, eventstore.DocumentTransformedPayload{Document: id}, metrics.OutcomePassthrough)
		return rewrite.Result{Code: source}
	}
	labels, ok := snap.Mapping[r]
	if !ok {
		log.Debug("No page config found for route", logfields.Document(id), logfields.Route(r))
		o.finish(ctx, start, eventstore.DocumentTransformedPayload{Document: id, Route: r}, metrics.OutcomePassthrough)
		return rewrite.Result{Code: source}
	}

	o.logProgress(log, o.transforms.Add(1), snap.TotalPages)

	res := rewrite.Transform(id, source, labels, o.cfg.Components)
	if res.Map != nil {
		res.Map.File = id
	}

	outcome := metrics.OutcomeRewritten
	if len(res.Errors) > 0 {
		outcome = metrics.OutcomeFailed
		log.Warn("Transform failed, passing document through",
			logfields.Document(id), logfields.Route(r), logfields.Error(res.Err))
	}
	o.finish(ctx, start, eventstore.DocumentTransformedPayload{
		Document: id,
		Route:    r,
		Labels:   labels,
		Errors:   res.Errors,
	}, outcome)
	return res
}

func (o *Orchestrator) logProgress(log *slog.Logger, count int64, total int) {
	if total <= 0 {
		return
	}
	if count%ProgressInterval != 0 && count != int64(total) {
		return
	}
	progress := math.Min(100, math.Round(float64(count)/float64(total)*100))
	log.Debug("Processing pages...",
		slog.Int64("count", count),
		slog.Int("total", total),
		slog.String("progress", fmt.Sprintf("%d/%d (%.0f%%)", count, total, progress)))
}

func (o *Orchestrator) finish(ctx context.Context, start time.Time, p eventstore.DocumentTransformedPayload, outcome metrics.Outcome) {
	d := time.Since(start)
	o.recorder.IncTransform(outcome)
	o.recorder.ObserveTransformDuration(outcome, d)

	p.Outcome = string(outcome)
	p.DurationMS = d.Milliseconds()
	o.record(ctx, func(buildID string) (eventstore.Event, error) {
		return eventstore.NewDocumentTransformed(buildID, p)
	})
}

// record appends a ledger event when a sink is configured and ctx carries a build ID.
func (o *Orchestrator) record(ctx context.Context, build func(buildID string) (eventstore.Event, error)) {
	if o.sink == nil {
		return
	}
	buildID := observability.BuildID(ctx)
	if buildID == "" {
		return
	}
	event, err := build(buildID)
	if err == nil {
		err = o.sink.Append(ctx, event)
	}
	if err != nil {
		observability.Logger(ctx, o.logger).Warn("Failed to record ledger event", logfields.Error(err))
	}
}
