package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/recera/fightweb/pkg/fightweb/layout"
)

// LayoutRow is one fighter line of the layout table.
type LayoutRow struct {
	ID       string
	Name     string
	Division string
	Degree   int
	X, Y     float64
}

// LayoutRows joins layout positions with their fighters.
func LayoutRows(r layout.Result, names, divisions map[string]string) []LayoutRow {
	rows := make([]LayoutRow, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		rows = append(rows, LayoutRow{
			ID:       n.ID,
			Name:     names[n.ID],
			Division: divisions[n.ID],
			Degree:   n.Degree,
			X:        n.X,
			Y:        n.Y,
		})
	}
	return rows
}

// LayoutTable renders rows as a bordered terminal table.
func LayoutTable(rows []LayoutRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers("ID", "NAME", "DIVISION", "DEGREE", "X", "Y").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r.ID, r.Name, r.Division, strconv.Itoa(r.Degree), formatCoord(r.X), formatCoord(r.Y))
	}
	return t.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
