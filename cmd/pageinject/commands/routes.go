package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	Format string `help:"Output format" enum:"text,json" default:"text"`
}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, g)
	if err != nil {
		return err
	}
	// Route declarations are written by the dts command only.
	cfg.DTS = ""
	orch := newOrchestrator(cfg, g, metrics.NoopRecorder{}, nil)
	if err := orch.Initialize(context.Background()); err != nil {
		return err
	}
	mapping := orch.Snapshot().Mapping

	if r.Format == "json" {
		data, err := json.MarshalIndent(mapping, "", "  ")
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode mapping").Build()
		}
		fmt.Fprintln(g.Out, string(data))
		return nil
	}

	for _, route := range mapping.Routes() {
		labels := "-"
		if len(mapping[route]) > 0 {
			labels = strings.Join(mapping[route], ",")
		}
		fmt.Fprintf(g.Out, "%s\t%s\n", route, labels)
	}
	return nil
}
