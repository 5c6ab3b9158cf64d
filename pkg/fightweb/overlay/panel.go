package overlay

import (
	"fmt"
	"math"
	"strings"

	"github.com/recera/fightweb/pkg/fightweb/graph"
	"github.com/recera/fightweb/pkg/fightweb/interaction"
	"github.com/recera/fightweb/pkg/fightweb/viewport"
	"github.com/recera/fightweb/pkg/styling"
	"github.com/recera/fightweb/pkg/vdom"
)

// Action names carried in data-action attributes of the panel buttons.
const (
	ActionOpenProfile    = "open-profile"
	ActionFilterDivision = "filter-division"
)

const (
	loadingLine    = "Loading details..."
	noUpcomingLine = "No upcoming bouts"
)

// Styles is the panel stylesheet.
var Styles = styling.Scope(`
.panel { position: absolute; min-width: 240px; max-width: 360px; padding: 16px; border-radius: 8px; background: #15171c; color: #e8e9ec; font: 13px/18px system-ui, sans-serif; box-shadow: 0 6px 24px rgba(0,0,0,0.45); }
.head { display: flex; gap: 10px; align-items: center; }
.portrait { width: 40px; height: 40px; border-radius: 50%; object-fit: cover; }
.name { margin: 0; font-size: 15px; }
.swatch { display: inline-block; width: 8px; height: 8px; margin-right: 6px; border-radius: 50%; }
.muted { color: #9aa0ab; }
.status.failed { color: #f2a097; }
.upcoming { margin: 6px 0 0; padding-left: 16px; }
.actions { display: flex; gap: 8px; margin-top: 10px; }
`)

// Panel is the view model of the overlay. Node fields come from the
// graph payload and are always present; the rest follows the detail
// fetch.
type Panel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Division    string `json:"division,omitempty"`
	Record      string `json:"record,omitempty"`
	TotalFights int    `json:"total_fights"`
	ImageURL    string `json:"image_url,omitempty"`
	Color       string `json:"color,omitempty"`

	Status   interaction.FetchStatus `json:"status"`
	Message  string                  `json:"message,omitempty"`
	Streak   string                  `json:"streak,omitempty"`
	Upcoming []graph.Bout            `json:"upcoming,omitempty"`

	// Autofocus marks the first control for input focus (keyboard mode).
	Autofocus bool `json:"autofocus,omitempty"`

	// At is the placed top-left corner.
	At viewport.Point `json:"at"`
}

// NewPanel combines a graph node with the detail state of the overlay
// target. Fetched record/division win over the payload's copies.
func NewPanel(node graph.FighterNode, color string, d interaction.Detail) Panel {
	p := Panel{
		ID:          node.ID,
		Name:        node.Name,
		Division:    node.Division,
		Record:      node.Record,
		TotalFights: node.TotalFights,
		ImageURL:    node.ImageURL,
		Color:       color,
		Status:      d.Status,
		Message:     d.Message,
	}
	if p.Name == "" {
		p.Name = node.ID
	}
	if d.Status == interaction.FetchLoaded && d.Data != nil {
		if d.Data.Record != "" {
			p.Record = d.Data.Record
		}
		if d.Data.Division != "" {
			p.Division = d.Data.Division
		}
		p.Streak = Streak(d.Data.CurrentStreakType, d.Data.CurrentStreakCount)
		p.Upcoming = d.Data.Upcoming()
	}
	return p
}

// Streak formats a streak as e.g. "3-fight win streak".
func Streak(kind string, count int) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || count <= 0 {
		return ""
	}
	switch kind {
	case "w":
		kind = "win"
	case "l":
		kind = "loss"
	}
	return fmt.Sprintf("%d-fight %s streak", count, kind)
}

// StatusLine is the one-line fetch status shown under the header.
func (p Panel) StatusLine() string {
	switch p.Status {
	case interaction.FetchLoading:
		return loadingLine
	case interaction.FetchFailed:
		if p.Message != "" {
			return p.Message
		}
		return interaction.FailureMessage
	case interaction.FetchLoaded:
		if len(p.Upcoming) == 0 {
			return noUpcomingLine
		}
	}
	return ""
}

// Node renders the panel. The "Open profile" button is always the first
// control.
func (p Panel) Node() *vdom.VNode {
	s := Styles

	var portrait *vdom.VNode
	if p.ImageURL != "" {
		portrait = vdom.NewElement("img", vdom.Props{
			"class": s.Class("portrait"),
			"src":   p.ImageURL,
			"alt":   p.Name,
		})
	}
	head := vdom.NewElement("div", vdom.Props{"class": s.Class("head")},
		portrait,
		vdom.NewElement("div", nil,
			vdom.NewElement("h3", vdom.Props{"class": s.Class("name")}, vdom.NewText(p.Name)),
			textLine(s.Class("muted"), recordLine(p.Record)),
		),
	)

	var division *vdom.VNode
	if p.Division != "" {
		division = vdom.NewElement("div", nil,
			vdom.NewElement("span", vdom.Props{
				"class": s.Class("swatch"),
				"style": "background:" + p.Color,
			}),
			vdom.NewText(p.Division),
		)
	}

	var status *vdom.VNode
	if line := p.StatusLine(); line != "" {
		cls := []string{"status", "muted"}
		if p.Status == interaction.FetchFailed {
			cls = []string{"status", "failed"}
		}
		status = vdom.NewElement("p", vdom.Props{
			"class":     s.Classes(cls...),
			"key":       "overlay-status",
			"aria-live": "polite",
		}, vdom.NewText(line))
	}

	var streak *vdom.VNode
	if p.Streak != "" {
		streak = textLine("", p.Streak)
	}

	var upcoming *vdom.VNode
	if len(p.Upcoming) > 0 {
		items := make([]*vdom.VNode, 0, len(p.Upcoming))
		for _, b := range p.Upcoming {
			opp, event, date := b.Display()
			items = append(items, vdom.NewElement("li", nil,
				vdom.NewText("vs "+opp+", "+event+", "+date)))
		}
		upcoming = vdom.NewFragment(
			vdom.NewElement("h4", nil, vdom.NewText("Upcoming")),
			vdom.NewElement("ul", vdom.Props{"class": s.Class("upcoming"), "key": "overlay-upcoming"}, items...),
		)
	}

	open := vdom.NewElement("button", vdom.Props{
		"type":        "button",
		"key":         "overlay-open",
		"data-action": ActionOpenProfile,
		"data-id":     p.ID,
		"autofocus":   p.Autofocus,
	}, vdom.NewText("Open profile"))

	var filter *vdom.VNode
	if p.Division != "" {
		filter = vdom.NewElement("button", vdom.Props{
			"type":          "button",
			"key":           "overlay-filter",
			"data-action":   ActionFilterDivision,
			"data-division": p.Division,
		}, vdom.NewText("Filter by division"))
	}

	return vdom.NewElement("div", vdom.Props{
		"key":        "overlay",
		"class":      s.Class("panel"),
		"role":       "dialog",
		"aria-label": p.Name,
		"data-id":    p.ID,
		"style":      fmt.Sprintf("left:%spx;top:%spx", vdom.FormatFloat(p.At.X), vdom.FormatFloat(p.At.Y)),
	},
		head,
		division,
		textLine(s.Class("muted"), fightsLine(p.TotalFights)),
		status,
		streak,
		upcoming,
		vdom.NewElement("div", vdom.Props{"class": s.Class("actions")}, open, filter),
	)
}

func textLine(class, text string) *vdom.VNode {
	var props vdom.Props
	if class != "" {
		props = vdom.Props{"class": class}
	}
	return vdom.NewElement("div", props, vdom.NewText(text))
}

func recordLine(record string) string {
	if record == "" {
		return "Record unavailable"
	}
	return "Record " + record
}

func fightsLine(n int) string {
	if n == 1 {
		return "1 fight"
	}
	return fmt.Sprintf("%d fights", n)
}

// Layout metrics used by Estimate; they follow the Styles rules.
const (
	estPadding  = 16.0
	estLine     = 18.0
	estHeader   = 44.0
	estButtons  = 40.0
	estCharW    = 7.2
	estMinWidth = 240.0
	estMaxWidth = 360.0
)

// Estimate approximates the rendered size of p where no DOM is available
// to measure it. It grows with the content, so a resolved fetch that
// adds upcoming bouts yields a taller panel.
func Estimate(p Panel) Size {
	longest := len(p.Name) * 13 / 10
	for _, l := range []string{recordLine(p.Record), p.Division, p.StatusLine(), p.Streak} {
		longest = max(longest, len(l))
	}
	lines := 1 // fights
	if p.Division != "" {
		lines++
	}
	if p.StatusLine() != "" {
		lines++
	}
	if p.Streak != "" {
		lines++
	}
	if n := len(p.Upcoming); n > 0 {
		lines += 1 + n
		for _, b := range p.Upcoming {
			opp, event, date := b.Display()
			longest = max(longest, len(opp)+len(event)+len(date)+7)
		}
	}

	w := float64(longest)*estCharW + 2*estPadding
	if p.ImageURL != "" {
		w += 50
	}
	w = math.Max(estMinWidth, math.Min(estMaxWidth, w))
	h := 2*estPadding + estHeader + float64(lines)*estLine + estButtons
	return Size{Width: w, Height: h}
}
