package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/fightweb/cmd/fightweb/internal/ui"
	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/view"
)

// programActions turns overlay actions into status notices.
type programActions struct {
	send func(tea.Msg)
}

func (p *programActions) OpenProfile(id string) {
	p.notify(fmt.Sprintf("open profile %s", id))
}

func (p *programActions) FilterByDivision(division string) {
	p.notify(fmt.Sprintf("filter by division %s", division))
}

func (p *programActions) notify(s string) {
	if p.send != nil {
		// called from Update; Send would block on the same goroutine
		go p.send(ui.NoticeMsg(s))
	}
}

func newExploreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explore <payload.json>",
		Short: "Browse the network in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := graph.LoadPayload(args[0])
			if err != nil {
				return err
			}
			actions := &programActions{}
			c, err := a.newView(p, view.WithActions(actions))
			if err != nil {
				return err
			}
			defer c.Close()

			snap, err := c.Snapshot()
			if err != nil {
				return err
			}
			title := a.cfg.Server.Title
			if p.Metadata != nil && p.Metadata.Query != "" {
				title += " · " + p.Metadata.Query
			}

			prog := tea.NewProgram(ui.NewModel(c, title, snap), tea.WithAltScreen())
			actions.send = prog.Send

			unsubscribe, err := c.Subscribe(func(s view.Snapshot) {
				// listeners run on the view loop and must not block
				go prog.Send(ui.SnapshotMsg(s))
			})
			if err != nil {
				return err
			}
			defer unsubscribe()

			_, err = prog.Run()
			return err
		},
	}
}
