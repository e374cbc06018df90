package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pageinject/internal/build"
	"git.home.luguber.info/inful/pageinject/internal/injector"
	"git.home.luguber.info/inful/pageinject/internal/logfields"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
	"git.home.luguber.info/inful/pageinject/internal/pathglob"
	"git.home.luguber.info/inful/pageinject/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output      string        `short:"o" name:"out" help:"Output directory for transformed documents" default:"./dist"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	Ledger      string        `help:"SQLite ledger file to record build events in"`
	Debounce    time.Duration `help:"Quiet period before a batch of changes is rebuilt" default:"200ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, g, root)
}

func (w *WatchCmd) run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root, g)
	if err != nil {
		return err
	}
	if err := pathglob.Set(cfg.WatchFile).Validate(); err != nil {
		return err
	}
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	store, err := openLedger(w.Ledger)
	if err != nil {
		return err
	}
	defer closeLedger(g, store)

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		srv := metrics.NewServer(w.MetricsAddr, reg, g.Logger)
		srv.Start()
		defer srv.Stop()
	}

	orch := newOrchestrator(cfg, g, recorder, store)
	opts := []build.Option{build.WithLogger(g.Logger), build.WithRecorder(recorder)}
	if store != nil {
		opts = append(opts, build.WithEventSink(store))
	}
	svc := build.NewBuildService(orch, opts...)
	req := build.Request{OutputDir: w.Output}

	result, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	printResult(g, result)

	watcher, err := watch.New(watch.Classifier{
		Root:       paths.Root,
		Manifest:   paths.Manifest,
		BaseDir:    cfg.BaseDir(),
		WatchFiles: pathglob.Set(cfg.WatchFile),
	}, func(ctx context.Context, changes []watch.Change) {
		w.handle(ctx, g, orch, svc, req, changes)
	}, watch.Options{QuietWindow: w.Debounce, Logger: g.Logger})
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Watching %s for changes\n", paths.Root)
	return watcher.Run(ctx)
}

// handle applies one batch of changes. A manifest update reinitializes and
// rebuilds everything, as does a watchFile change; otherwise only the
// changed documents are rebuilt. A failed reinitialization drops the batch.
func (w *WatchCmd) handle(ctx context.Context, g *Global, orch *injector.Orchestrator, svc build.BuildService, req build.Request, changes []watch.Change) {
	rebuildAll := false
	var documents []string
	for _, change := range changes {
		switch change.Class {
		case watch.ClassManifest:
			reinitialized, err := orch.OnWatchedFileChanged(ctx, change.Path, change.Kind)
			if err != nil {
				// Already logged; the orchestrator passes documents through until the next edit.
				return
			}
			rebuildAll = rebuildAll || reinitialized
		case watch.ClassWatchFile:
			rebuildAll = true
		case watch.ClassDocument:
			documents = append(documents, change.Path)
		case watch.ClassIgnored:
		}
	}

	var (
		result *build.Result
		err    error
	)
	switch {
	case rebuildAll:
		result, err = svc.Run(ctx, req)
	case len(documents) > 0:
		result, err = svc.RunFiles(ctx, req, documents)
	default:
		return
	}
	if err != nil {
		g.Logger.Error("Rebuild failed", logfields.Error(err))
		return
	}
	printResult(g, result)
}
