// Package graph holds the rivalry-network payload exchanged with the
// aggregation backend and the fighter detail records fetched per node.
package graph

import (
	"encoding/json"
	"strings"
	"time"
)

// FighterNode is one fighter vertex in the rivalry network.
type FighterNode struct {
	ID              string `json:"fighter_id" yaml:"fighter_id"`
	Name            string `json:"name" yaml:"name"`
	Division        string `json:"division,omitempty" yaml:"division,omitempty"`
	Record          string `json:"record,omitempty" yaml:"record,omitempty"`
	TotalFights     int    `json:"total_fights" yaml:"total_fights"`
	ImageURL        string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	LatestEventDate string `json:"latest_event_date,omitempty" yaml:"latest_event_date,omitempty"`
}

// RivalryEdge is an unordered head-to-head link between two fighters.
type RivalryEdge struct {
	Source         string `json:"source" yaml:"source"`
	Target         string `json:"target" yaml:"target"`
	Fights         int    `json:"fights" yaml:"fights"`
	FirstEventDate string `json:"first_event_date,omitempty" yaml:"first_event_date,omitempty"`
	LastEventDate  string `json:"last_event_date,omitempty" yaml:"last_event_date,omitempty"`
	LastEventName  string `json:"last_event_name,omitempty" yaml:"last_event_name,omitempty"`
}

// Metadata describes the query that produced a payload. Keys other than
// query and generated_at are kept verbatim in Extra, whatever their type,
// and written back out at the top level.
type Metadata struct {
	Query       string
	GeneratedAt string
	Extra       map[string]any
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	for k, v := range raw {
		switch k {
		case "query":
			if json.Unmarshal(v, &m.Query) == nil {
				continue
			}
		case "generated_at":
			if json.Unmarshal(v, &m.GeneratedAt) == nil {
				continue
			}
		}
		var x any
		if err := json.Unmarshal(v, &x); err != nil {
			return err
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = x
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Query != "" {
		out["query"] = m.Query
	}
	if m.GeneratedAt != "" {
		out["generated_at"] = m.GeneratedAt
	}
	return json.Marshal(out)
}

// Payload is the aggregated graph handed to a view.
type Payload struct {
	Nodes    []FighterNode `json:"nodes"`
	Links    []RivalryEdge `json:"links"`
	Metadata *Metadata     `json:"metadata,omitempty"`
}

// FightRecord is one entry of a fighter's history. Future bookings carry
// a result of "next", "upcoming" or "scheduled".
type FightRecord struct {
	Opponent  string `json:"opponent,omitempty"`
	Result    string `json:"result,omitempty"`
	EventName string `json:"event_name,omitempty"`
	Date      string `json:"date,omitempty"`
	Method    string `json:"method,omitempty"`
	Round     int    `json:"round,omitempty"`
}

// FighterDetail is the per-fighter record returned by the detail service.
type FighterDetail struct {
	Record             string        `json:"record,omitempty"`
	Division           string        `json:"division,omitempty"`
	FightHistory       []FightRecord `json:"fight_history"`
	CurrentStreakType  string        `json:"current_streak_type,omitempty"`
	CurrentStreakCount int           `json:"current_streak_count,omitempty"`
}

// Placeholder is shown for any upcoming-bout field the service left empty.
const Placeholder = "TBA"

// Bout is a future booking surfaced in the overlay.
type Bout struct {
	Opponent  string
	EventName string
	Date      string
}

// Display returns opponent, event and date with placeholders filled in.
func (b Bout) Display() (opponent, event, date string) {
	return orPlaceholder(b.Opponent), orPlaceholder(b.EventName), orPlaceholder(b.Date)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// IsUpcoming reports whether a history result marks a future booking.
func IsUpcoming(result string) bool {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "next", "upcoming", "scheduled":
		return true
	}
	return false
}

// Upcoming returns the future bookings in history order.
func (d FighterDetail) Upcoming() []Bout {
	var out []Bout
	for _, f := range d.FightHistory {
		if !IsUpcoming(f.Result) {
			continue
		}
		out = append(out, Bout{Opponent: f.Opponent, EventName: f.EventName, Date: f.Date})
	}
	return out
}

var activityLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseActivity parses a latest-activity timestamp. Empty or unknown
// formats report false.
func ParseActivity(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range activityLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
