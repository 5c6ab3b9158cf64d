package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/recera/fightweb/cmd/fightweb/internal/ui"
	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/interaction"
	"github.com/recera/fightweb/pkg/fightweb/overlay"
	"github.com/recera/fightweb/pkg/fightweb/render"
	"github.com/recera/fightweb/pkg/fightweb/view"
	"github.com/recera/fightweb/pkg/styling"
)

type renderFlags struct {
	output string
	html   bool
	hover  string
	pick   string
	fit    bool
}

func newRenderCommand(a *app) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <payload.json>",
		Short: "Render a payload to SVG or a static HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := graph.LoadPayload(args[0])
			if err != nil {
				return err
			}
			c, err := a.newView(p)
			if err != nil {
				return err
			}
			defer c.Close()

			snap, err := prepare(cmd.Context(), c, f, a.cfg.Detail.Timeout)
			if err != nil {
				return err
			}

			var doc string
			if f.html {
				doc, err = render.RenderPage(render.Page{
					Title:   a.cfg.Server.Title,
					Frame:   snap.Frame,
					Overlay: snap.Overlay,
					Sheets:  []*styling.Sheet{overlay.Styles},
				})
			} else {
				doc, err = render.RenderSVG(snap.Frame)
			}
			if err != nil {
				return err
			}

			if f.output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.WriteFile(f.output, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.output, err)
			}
			ui.Good.Fprintf(cmd.ErrOrStderr(), "wrote %s ", f.output)
			ui.Faint.Fprintf(cmd.ErrOrStderr(), "(%d fighters, %d rivalries)\n", len(snap.Frame.Nodes), len(snap.Frame.Edges))
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&f.html, "html", false, "write a full HTML page instead of bare SVG")
	cmd.Flags().StringVar(&f.hover, "hover", "", "render with this fighter hovered")
	cmd.Flags().StringVar(&f.pick, "select", "", "render with this fighter selected")
	cmd.Flags().BoolVar(&f.fit, "fit", false, "fit the whole graph into the surface")
	return cmd
}

// prepare applies the requested interaction and waits for the overlay
// detail to settle.
func prepare(ctx context.Context, c *view.Controller, f renderFlags, timeout time.Duration) (view.Snapshot, error) {
	if f.fit {
		if err := c.FitGraph(); err != nil {
			return view.Snapshot{}, err
		}
	}
	if f.pick != "" {
		if err := c.Click(f.pick); err != nil {
			return view.Snapshot{}, err
		}
	}
	if f.hover != "" {
		if err := c.PointerEnter(f.hover); err != nil {
			return view.Snapshot{}, err
		}
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		snap, err := c.Snapshot()
		if err != nil {
			return snap, err
		}
		if snap.Detail.Status != interaction.FetchLoading {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			// render whatever is there; the overlay shows its loading line
			ui.Warn.Fprintln(os.Stderr, "detail fetch still pending, rendering loading state")
			return snap, nil
		case <-ticker.C:
		}
	}
}
