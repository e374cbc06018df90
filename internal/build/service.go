package build

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pageinject/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/injector"
	"git.home.luguber.info/inful/pageinject/internal/logfields"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
	"git.home.luguber.info/inful/pageinject/internal/observability"
	"git.home.luguber.info/inful/pageinject/internal/pathglob"
)

// BuildService is the canonical interface for transform builds.
type BuildService interface {
	// Run discovers every document under the source root and transforms it.
	Run(ctx context.Context, req Request) (*Result, error)
	// RunFiles transforms only the given documents.
	RunFiles(ctx context.Context, req Request, files []string) (*Result, error)
}

// Request holds the inputs of one build.
type Request struct {
	// OutputDir receives the documents, mirroring their root-relative layout.
	OutputDir string
	// DryRun transforms without writing output.
	DryRun bool
}

// Result is the outcome of one build.
type Result struct {
	Status     BuildStatus
	BuildID    string
	OutputPath string

	Documents   int
	Rewritten   int
	Passthrough int
	Failed      int
	// Diagnostics maps a failed document to its errors.
	Diagnostics map[string][]string

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a build.
type BuildStatus string

const (
	BuildStatusSuccess   BuildStatus = "success"
	BuildStatusFailed    BuildStatus = "failed"
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess reports whether the build completed. Documents that failed to
// transform were passed through and do not fail the build.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}

// Option configures a DefaultBuildService.
type Option func(*DefaultBuildService)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *DefaultBuildService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder used for build durations.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(s *DefaultBuildService) {
		if recorder != nil {
			s.recorder = recorder
		}
	}
}

// WithEventSink records build start and completion events to sink.
func WithEventSink(sink injector.EventSink) Option {
	return func(s *DefaultBuildService) {
		s.sink = sink
	}
}

// DefaultBuildService is the BuildService backed by an injector.Orchestrator.
type DefaultBuildService struct {
	orch     *injector.Orchestrator
	logger   *slog.Logger
	recorder metrics.Recorder
	sink     injector.EventSink
	newID    func() string
}

var _ BuildService = (*DefaultBuildService)(nil)

// NewBuildService creates a build service around orch.
func NewBuildService(orch *injector.Orchestrator, opts ...Option) *DefaultBuildService {
	s := &DefaultBuildService{
		orch:     orch,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run initializes the orchestrator when needed, then transforms the managed
// pages and the files matching the configured includes.
func (s *DefaultBuildService) Run(ctx context.Context, req Request) (*Result, error) {
	return s.run(ctx, req, nil)
}

// RunFiles transforms files. Files that no longer exist have their outputs removed.
func (s *DefaultBuildService) RunFiles(ctx context.Context, req Request, files []string) (*Result, error) {
	if files == nil {
		files = []string{}
	}
	return s.run(ctx, req, files)
}

func (s *DefaultBuildService) run(ctx context.Context, req Request, files []string) (*Result, error) {
	if s.orch == nil {
		return nil, ferrors.ValidationError("orchestrator is required").Build()
	}
	if req.OutputDir == "" && !req.DryRun {
		return nil, ferrors.ValidationError("output directory is required").Build()
	}

	cfg := s.orch.Config()
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Status:      BuildStatusSuccess,
		BuildID:     s.newID(),
		OutputPath:  req.OutputDir,
		StartTime:   time.Now(),
		Diagnostics: map[string][]string{},
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)
	ctx = observability.WithStage(ctx, "build")
	log := observability.Logger(ctx, s.logger)

	s.record(ctx, func(buildID string) (eventstore.Event, error) {
		return eventstore.NewBuildStarted(buildID, eventstore.BuildStartedPayload{
			Root:     paths.Root,
			Manifest: paths.Manifest,
			Mode:     string(cfg.InsertPos.Mode()),
		})
	})

	if err := s.orch.OnBuildStart(ctx); err != nil {
		log.Warn("Manifest initialization failed, documents pass through", logfields.Error(err))
	}

	if files == nil {
		files, err = Discover(paths.Root, s.orch.Snapshot(), pathglob.Set(cfg.Includes))
		if err != nil {
			return nil, err
		}
	}
	log.Info("Starting build", logfields.Root(paths.Root), slog.Int("documents", len(files)), slog.String("output", req.OutputDir))

	for _, file := range files {
		if ctx.Err() != nil {
			result.Status = BuildStatusCancelled
			break
		}
		if err := s.processFile(ctx, paths.Root, file, req, result); err != nil {
			result.Status = BuildStatusFailed
			s.complete(ctx, result)
			return result, err
		}
	}

	s.complete(ctx, result)
	log.Info("Build completed",
		slog.Int("documents", result.Documents),
		slog.Int("rewritten", result.Rewritten),
		slog.Int("passthrough", result.Passthrough),
		slog.Int("failed", result.Failed),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

// processFile transforms one document and writes its output. Only output
// failures are returned; document failures, including documents that resolve
// outside the root, are counted in result.
func (s *DefaultBuildService) processFile(ctx context.Context, root, file string, req Request, result *Result) error {
	log := observability.Logger(ctx, s.logger)

	if _, err := OutputPath(req.OutputDir, root, file); err != nil {
		result.Documents++
		result.Failed++
		result.Diagnostics[file] = []string{err.Error()}
		log.Warn("Skipping document outside the source root", logfields.Document(file), logfields.Root(root))
		return nil
	}

	// #nosec G304 -- file comes from the manifest or a walk of the source root.
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		if req.DryRun {
			return nil
		}
		log.Debug("Document removed, deleting output", logfields.Document(file))
		return RemoveOutput(req.OutputDir, root, file)
	}
	if err != nil {
		result.Documents++
		result.Failed++
		result.Diagnostics[file] = []string{err.Error()}
		log.Warn("Failed to read document", logfields.Document(file), logfields.Error(err))
		return nil
	}

	source := string(data)
	out := s.orch.OnTransform(ctx, file, source)
	result.Documents++
	switch {
	case len(out.Errors) > 0:
		result.Failed++
		result.Diagnostics[file] = out.Errors
	case out.Map != nil || out.Code != source:
		result.Rewritten++
	default:
		result.Passthrough++
	}

	if req.DryRun {
		return nil
	}
	return WriteOutput(req.OutputDir, root, file, out)
}

func (s *DefaultBuildService) complete(ctx context.Context, result *Result) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)
	s.record(ctx, func(buildID string) (eventstore.Event, error) {
		return eventstore.NewBuildCompleted(buildID, eventstore.BuildCompletedPayload{
			Documents:   result.Documents,
			Rewritten:   result.Rewritten,
			Passthrough: result.Passthrough,
			Failed:      result.Failed,
			DurationMS:  result.Duration.Milliseconds(),
		})
	})
}

func (s *DefaultBuildService) record(ctx context.Context, build func(buildID string) (eventstore.Event, error)) {
	if s.sink == nil {
		return
	}
	event, err := build(observability.BuildID(ctx))
	if err == nil {
		err = s.sink.Append(ctx, event)
	}
	if err != nil {
		observability.Logger(ctx, s.logger).Warn("Failed to record ledger event", logfields.Error(err))
	}
}
