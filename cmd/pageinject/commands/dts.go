package commands

import (
	"context"
	"fmt"

	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
	"git.home.luguber.info/inful/pageinject/internal/routetypes"
)

// DTSCmd implements the 'dts' command.
type DTSCmd struct {
	Output string `short:"o" name:"out" help:"Declaration file path (defaults to the dts option)"`
}

func (d *DTSCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, g)
	if err != nil {
		return err
	}
	path := d.Output
	if path == "" {
		path = cfg.ResolveOutput(cfg.DTS)
	}
	if path == "" {
		return ferrors.ConfigError("no declaration path: set dts or pass --out").Build()
	}

	cfg.DTS = ""
	orch := newOrchestrator(cfg, g, metrics.NoopRecorder{}, nil)
	if err := orch.Initialize(context.Background()); err != nil {
		return err
	}

	changed, err := routetypes.Write(path, orch.Snapshot().Mapping.Routes())
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintf(g.Out, "Wrote %s\n", path)
	} else {
		fmt.Fprintf(g.Out, "%s is up to date\n", path)
	}
	return nil
}
