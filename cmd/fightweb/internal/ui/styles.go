// Package ui holds the terminal presentation of the fightweb CLI.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	primaryColor = lipgloss.Color("#e4572e")
	mutedColor   = lipgloss.Color("#9aa0ab")
	errorColor   = lipgloss.Color("#f2a097")
	borderColor  = lipgloss.Color("#3a3f4b")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	emphasisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d8dce3"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Status line colors for non-interactive commands.
var (
	Good  = color.New(color.FgGreen)
	Warn  = color.New(color.FgYellow)
	Bad   = color.New(color.FgRed, color.Bold)
	Faint = color.New(color.FgHiBlack)
)
