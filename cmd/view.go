package cmd

import (
	"context"
	"fmt"

	"github.com/nibzard/archmap-go/internal/outdir"
	"github.com/nibzard/archmap-go/internal/ui"
)

// viewCommand opens the terminal viewer over the outputs directory.
func viewCommand(ctx context.Context, e *env, args []string) error {
	fs := newCommandFlags("view", e)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	layout, err := outdir.Resolve(e.cfg.OutputsDir)
	if err != nil {
		return err
	}
	e.logger.Debug("Starting viewer", "dir", layout.Dir)
	return ui.Run(ctx, layout)
}
