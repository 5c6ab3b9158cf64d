package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/recera/fightweb/cmd/fightweb/internal/ui"
	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/layout"
)

func newLayoutCommand(a *app) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "layout <payload.json>",
		Short: "Compute node positions for a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := graph.LoadPayload(args[0])
			if err != nil {
				return err
			}
			r := layout.Compute(p.Nodes, p.Links, a.cfg.Layout.Options())
			a.log.Debug("layout computed",
				zap.Int("nodes", len(r.Nodes)),
				zap.Int("edges", len(r.Edges)))

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}
			return writeLayout(out, format, p, r)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func writeLayout(w io.Writer, format string, p *graph.Payload, r layout.Result) error {
	switch format {
	case "table":
		names := make(map[string]string, len(p.Nodes))
		divisions := make(map[string]string, len(p.Nodes))
		for _, n := range p.Nodes {
			names[n.ID] = n.Name
			divisions[n.ID] = n.Division
		}
		_, err := fmt.Fprintln(w, ui.LayoutTable(ui.LayoutRows(r, names, divisions)))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
