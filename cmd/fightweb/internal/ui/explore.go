package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/recera/fightweb/pkg/fightweb/overlay"
	"github.com/recera/fightweb/pkg/fightweb/render"
	"github.com/recera/fightweb/pkg/fightweb/view"
)

// Controller is the part of a view the explorer drives.
type Controller interface {
	FocusNext(step int) error
	Key(key string) error
	FitGraph() error
	ResetView() error
	OpenProfile() error
	FilterDivision() error
}

// KeyMap defines the explorer's keyboard shortcuts.
type KeyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Pan      key.Binding
	Select   key.Binding
	Clear    key.Binding
	ZoomIn   key.Binding
	ZoomOut  key.Binding
	Fit      key.Binding
	Reset    key.Binding
	Profile  key.Binding
	Division key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Select, k.Clear, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Select, k.Clear},
		{k.Pan, k.ZoomIn, k.ZoomOut, k.Fit, k.Reset},
		{k.Profile, k.Division, k.Help, k.Quit},
	}
}

var DefaultKeyMap = KeyMap{
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "k"),
		key.WithHelp("shift+tab/k", "previous fighter"),
	),
	Next: key.NewBinding(
		key.WithKeys("tab", "j"),
		key.WithHelp("tab/j", "next fighter"),
	),
	Pan: key.NewBinding(
		key.WithKeys("up", "down", "left", "right"),
		key.WithHelp("←↑↓→", "pan"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "select"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-", "_"),
		key.WithHelp("-", "zoom out"),
	),
	Fit: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fit"),
	),
	Reset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset view"),
	),
	Profile: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open profile"),
	),
	Division: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "filter division"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// arrowKeys maps terminal arrow names to DOM key names.
var arrowKeys = map[string]string{
	"up":    "ArrowUp",
	"down":  "ArrowDown",
	"left":  "ArrowLeft",
	"right": "ArrowRight",
}

// SnapshotMsg carries a new view snapshot into the program.
type SnapshotMsg view.Snapshot

// NoticeMsg is a one-line status shown under the list.
type NoticeMsg string

// Model is the explorer TUI state.
type Model struct {
	ctrl  Controller
	title string
	keys  KeyMap
	help  help.Model

	snap   view.Snapshot
	notice string
	err    error

	width  int
	height int
}

// NewModel returns an explorer over ctrl starting at snap.
func NewModel(ctrl Controller, title string, snap view.Snapshot) Model {
	return Model{
		ctrl:  ctrl,
		title: title,
		keys:  DefaultKeyMap,
		help:  help.New(),
		snap:  snap,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case SnapshotMsg:
		// snapshots are delivered asynchronously and may arrive out of order
		if msg.Version >= m.snap.Version {
			m.snap = view.Snapshot(msg)
		}
		return m, nil

	case NoticeMsg:
		m.notice = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Prev):
		err = m.ctrl.FocusNext(-1)
	case key.Matches(msg, m.keys.Next):
		err = m.ctrl.FocusNext(1)
	case key.Matches(msg, m.keys.Pan):
		err = m.ctrl.Key(arrowKeys[msg.String()])
	case key.Matches(msg, m.keys.Select):
		err = m.ctrl.Key("Enter")
	case key.Matches(msg, m.keys.Clear):
		err = m.ctrl.Key("Escape")
	case key.Matches(msg, m.keys.ZoomIn):
		err = m.ctrl.Key("+")
	case key.Matches(msg, m.keys.ZoomOut):
		err = m.ctrl.Key("-")
	case key.Matches(msg, m.keys.Fit):
		err = m.ctrl.FitGraph()
	case key.Matches(msg, m.keys.Reset):
		err = m.ctrl.ResetView()
	case key.Matches(msg, m.keys.Profile):
		err = m.ctrl.OpenProfile()
	case key.Matches(msg, m.keys.Division):
		err = m.ctrl.FilterDivision()
	}
	m.err = err
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	list := m.renderList()
	side := m.renderPanel()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", side))
	b.WriteString("\n\n")

	status := fmt.Sprintf("zoom %.2fx  ·  %d fighters  ·  %d rivalries",
		m.snap.Transform.Scale, len(m.snap.Frame.Nodes), len(m.snap.Frame.Edges))
	b.WriteString(mutedStyle.Render(status))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.notice != "" {
		b.WriteString(normalStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// listHeight is the number of fighter rows that fit on screen.
func (m Model) listHeight() int {
	h := m.height - 8
	if h < 5 {
		return 5
	}
	return h
}

func (m Model) renderList() string {
	nodes := m.snap.Frame.Nodes
	if len(nodes) == 0 {
		return boxStyle.Render(mutedStyle.Render("No fighters"))
	}

	cursor := 0
	for i, n := range nodes {
		if n.ID == m.snap.State.KeyFocused {
			cursor = i
			break
		}
	}
	start, end := window(len(nodes), cursor, m.listHeight())

	var b strings.Builder
	for i := start; i < end; i++ {
		n := nodes[i]
		marker := "  "
		if n.ID == m.snap.State.KeyFocused {
			marker = "> "
		}
		line := fmt.Sprintf("%s%-24s %3d", marker, truncate(n.Label, 24), n.Degree)
		switch {
		case n.Selected:
			line = selectedStyle.Render(line + " *")
		case n.Emphasis == render.Active || n.Emphasis == render.Emphasized:
			line = emphasisStyle.Render(line)
		case n.Emphasis == render.Dimmed:
			line = mutedStyle.Render(line)
		default:
			line = normalStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return boxStyle.Render(b.String())
}

func (m Model) renderPanel() string {
	p := m.snap.Panel
	if p == nil {
		return boxStyle.Render(mutedStyle.Render("Press tab to focus a fighter"))
	}
	at := mutedStyle.Render(fmt.Sprintf("overlay at (%.0f, %.0f)", p.At.X, p.At.Y))
	return boxStyle.Render(PanelText(*p) + "\n" + at)
}

// PanelText is the overlay content as terminal lines.
func PanelText(p overlay.Panel) string {
	var lines []string
	name := p.Name
	if p.Color != "" {
		name = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●") + " " + name
	}
	lines = append(lines, emphasisStyle.Render(name))
	if p.Division != "" {
		lines = append(lines, mutedStyle.Render(p.Division))
	}
	if p.Record != "" {
		lines = append(lines, "Record "+p.Record)
	}
	if p.TotalFights == 1 {
		lines = append(lines, "1 fight")
	} else {
		lines = append(lines, fmt.Sprintf("%d fights", p.TotalFights))
	}
	if p.Streak != "" {
		lines = append(lines, p.Streak)
	}
	if s := p.StatusLine(); s != "" {
		style := mutedStyle
		if p.Message != "" {
			style = errorStyle
		}
		lines = append(lines, style.Render(s))
	}
	for _, bout := range p.Upcoming {
		opp, event, date := bout.Display()
		lines = append(lines, fmt.Sprintf("vs %s, %s, %s", opp, event, date))
	}
	return strings.Join(lines, "\n")
}

// window returns the [start, end) range of size n around cursor.
func window(total, cursor, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
