package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"git.home.luguber.info/inful/pageinject/internal/build"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" name:"out" help:"Output directory for transformed documents" default:"./dist"`
	Ledger string `help:"SQLite ledger file to record build events in"`
	DryRun bool   `name:"dry-run" help:"Transform without writing output"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, g)
	if err != nil {
		return err
	}
	store, err := openLedger(b.Ledger)
	if err != nil {
		return err
	}
	defer closeLedger(g, store)

	recorder := metrics.NoopRecorder{}
	orch := newOrchestrator(cfg, g, recorder, store)
	opts := []build.Option{build.WithLogger(g.Logger), build.WithRecorder(recorder)}
	if store != nil {
		opts = append(opts, build.WithEventSink(store))
	}
	svc := build.NewBuildService(orch, opts...)

	result, err := svc.Run(context.Background(), build.Request{OutputDir: b.Output, DryRun: b.DryRun})
	if err != nil {
		return err
	}
	printResult(g, result)
	return nil
}

func printResult(g *Global, result *build.Result) {
	fmt.Fprintf(g.Out, "Built %d documents (%d rewritten, %d passed through, %d failed) in %s\n",
		result.Documents, result.Rewritten, result.Passthrough, result.Failed, result.Duration.Round(time.Millisecond))
	if result.Status != build.BuildStatusSuccess {
		fmt.Fprintf(g.Out, "Build %s\n", result.Status)
	}

	failed := make([]string, 0, len(result.Diagnostics))
	for doc := range result.Diagnostics {
		failed = append(failed, doc)
	}
	sort.Strings(failed)
	for _, doc := range failed {
		fmt.Fprintf(g.Out, "  %s (passed through)\n", doc)
		for _, diag := range result.Diagnostics[doc] {
			fmt.Fprintf(g.Out, "    %s\n", diag)
		}
	}
}
