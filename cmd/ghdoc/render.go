package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ericfisherdev/ghdoc/internal/adapter/driven/textsurface"
	"github.com/ericfisherdev/ghdoc/internal/application"
	"github.com/ericfisherdev/ghdoc/internal/config"
	"github.com/ericfisherdev/ghdoc/internal/domain/document"
	"github.com/ericfisherdev/ghdoc/internal/domain/model"
)

func runRender(ctx context.Context, cfg *config.Config, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("render takes exactly one surface name, got %d", c.Args().Len())
	}

	name, err := model.ParseSurfaceName(c.Args().First())
	if err != nil {
		return err
	}

	client, err := newGitHubClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	buf := textsurface.New()
	session := application.NewSession(name, buf, client, client, nil, nil)
	go session.Run(ctx)

	if err := session.Load(ctx); err != nil {
		return err
	}

	if c.Bool("state") {
		// Completion caches are fetched in the background after a load.
		if err := session.Flush(ctx); err != nil {
			return err
		}
		state, err := session.State(ctx)
		if err != nil {
			return err
		}
		return writeIndentedJSON(os.Stdout, state)
	}

	fmt.Fprintln(os.Stdout, buf.String())

	if c.Bool("decorations") {
		var decorations document.Decorations
		err := session.View(ctx, func(d *document.Document) error {
			decorations = d.Decorations()
			return nil
		})
		if err != nil {
			return err
		}
		return writeIndentedJSON(os.Stdout, decorations)
	}

	return nil
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
