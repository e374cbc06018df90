package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/pageinject/internal/eventstore"
	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Ledger   string `required:"" type:"existingfile" help:"SQLite ledger file written by build or watch"`
	Build    string `help:"Show the summary of one build"`
	Document string `help:"Show the transform history of one document"`
	Limit    int    `help:"Maximum number of document events to show" default:"20"`
}

func (h *HistoryCmd) Run(g *Global, _ *CLI) error {
	store, err := eventstore.NewSQLiteStore(h.Ledger)
	if err != nil {
		return err
	}
	defer closeLedger(g, store)

	ctx := context.Background()
	switch {
	case h.Build != "":
		return h.showBuild(ctx, g, store)
	case h.Document != "":
		return h.showDocument(ctx, g, store)
	}

	builds, err := store.ListBuilds(ctx)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		fmt.Fprintln(g.Out, "No builds recorded")
		return nil
	}
	tw := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUILD ID\tSTARTED\tEVENTS")
	for _, b := range builds {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", b.BuildID, b.StartedAt.Format(time.RFC3339), b.EventCount)
	}
	return tw.Flush()
}

func (h *HistoryCmd) showDocument(ctx context.Context, g *Global, store eventstore.Store) error {
	document := h.Document
	if abs, err := filepath.Abs(document); err == nil {
		document = filepath.ToSlash(abs)
	}
	events, err := store.GetByDocument(ctx, document, h.Limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintf(g.Out, "No transforms recorded for %s\n", document)
		return nil
	}

	tw := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUILD ID\tAT\tOUTCOME\tLABELS\tDURATION")
	for _, event := range events {
		var p eventstore.DocumentTransformedPayload
		if err := eventstore.Decode(event, &p); err != nil {
			return err
		}
		labels := "-"
		if len(p.Labels) > 0 {
			labels = strings.Join(p.Labels, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%dms\n",
			event.BuildID(), event.Timestamp().Format(time.RFC3339), p.Outcome, labels, p.DurationMS)
	}
	return tw.Flush()
}

func (h *HistoryCmd) showBuild(ctx context.Context, g *Global, store eventstore.Store) error {
	events, err := store.GetByBuildID(ctx, h.Build)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return ferrors.NewError(ferrors.CategoryNotFound, "build not found in ledger").
			WithContext("build_id", h.Build).
			Build()
	}
	summary, err := eventstore.Summarize(h.Build, events)
	if err != nil {
		return err
	}

	fmt.Fprintf(g.Out, "Build:       %s\n", summary.BuildID)
	fmt.Fprintf(g.Out, "Status:      %s\n", summary.Status)
	fmt.Fprintf(g.Out, "Started:     %s\n", summary.StartedAt.Format(time.RFC3339))
	if summary.CompletedAt != nil {
		fmt.Fprintf(g.Out, "Duration:    %s\n", summary.Duration)
	}
	if summary.Root != "" {
		fmt.Fprintf(g.Out, "Root:        %s\n", summary.Root)
	}
	fmt.Fprintf(g.Out, "Pages:       %d\n", summary.PageCount)
	if summary.ManifestError != "" {
		fmt.Fprintf(g.Out, "Manifest:    %s\n", summary.ManifestError)
	}
	fmt.Fprintf(g.Out, "Rewritten:   %d\n", summary.Rewritten)
	fmt.Fprintf(g.Out, "Passthrough: %d\n", summary.Passthrough)
	fmt.Fprintf(g.Out, "Failed:      %d\n", summary.Failed)

	docs := make([]string, 0, len(summary.FailedDocuments))
	for doc := range summary.FailedDocuments {
		docs = append(docs, doc)
	}
	sort.Strings(docs)
	for _, doc := range docs {
		fmt.Fprintf(g.Out, "  %s\n", doc)
		for _, diag := range summary.FailedDocuments[doc] {
			fmt.Fprintf(g.Out, "    %s\n", diag)
		}
	}
	return nil
}
