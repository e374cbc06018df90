package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/logfields"
	"git.home.luguber.info/inful/pageinject/internal/metrics"
)

// TransformCmd implements the 'transform' command.
type TransformCmd struct {
	File string `arg:"" type:"existingfile" help:"Page file to transform"`
	Map  bool   `help:"Print the position map after the code"`
}

// Run prints the transformed document. A document that fails to transform is
// printed unchanged and its error returned.
func (c *TransformCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, g)
	if err != nil {
		return err
	}
	file, err := filepath.Abs(c.File)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to resolve file").
			WithContext("path", c.File).
			Build()
	}
	// #nosec G304 -- the file is named on the command line.
	data, err := os.ReadFile(file)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read file").
			WithContext("path", file).
			Build()
	}

	ctx := context.Background()
	orch := newOrchestrator(cfg, g, metrics.NoopRecorder{}, nil)
	if err := orch.OnBuildStart(ctx); err != nil {
		g.Logger.Warn("Manifest initialization failed, document passes through", logfields.Error(err))
	}

	res := orch.OnTransform(ctx, file, string(data))
	fmt.Fprintln(g.Out, res.Code)
	if c.Map && res.Map != nil {
		encoded, err := res.Map.JSON()
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode position map").Build()
		}
		fmt.Fprintln(g.Out, string(encoded))
	}
	return res.Err
}
