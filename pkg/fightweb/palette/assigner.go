package palette

import "github.com/recera/fightweb/pkg/fightweb/graph"

// Entry is one legend row.
type Entry struct {
	Division string
	Color    string
}

// Assigner holds the palette for a single payload. Views own one each;
// nothing is memoized globally.
type Assigner struct {
	divisions map[string]string
	order     []string
	activity  activityRange
	hues      map[string]float64
}

// NewAssigner builds the division mapping and activity range for nodes.
func NewAssigner(nodes []graph.FighterNode) *Assigner {
	a := &Assigner{
		divisions: AssignDivisions(nodes),
		activity:  newActivityRange(nodes),
		hues:      make(map[string]float64),
	}
	seen := make(map[string]bool)
	for _, n := range nodes {
		if n.Division != "" && !seen[n.Division] {
			seen[n.Division] = true
			a.order = append(a.order, n.Division)
		}
	}
	return a
}

// Division returns the base color of a division.
func (a *Assigner) Division(division string) string {
	if c, ok := a.divisions[division]; ok {
		return c
	}
	return DefaultColor
}

// NodeColor returns the recency-tinted division color of n.
func (a *Assigner) NodeColor(n graph.FighterNode) string {
	base := a.Division(n.Division)
	h, ok := a.hues[base]
	if !ok {
		h = baseHue(base)
		a.hues[base] = h
	}
	return tint(h, a.activity.level(n.LatestEventDate))
}

// Colors returns node id -> fill color for every node.
func (a *Assigner) Colors(nodes []graph.FighterNode) map[string]string {
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		out[n.ID] = a.NodeColor(n)
	}
	return out
}

// Legend lists divisions in first-seen order.
func (a *Assigner) Legend() []Entry {
	out := make([]Entry, 0, len(a.order))
	for _, d := range a.order {
		out = append(out, Entry{Division: d, Color: a.divisions[d]})
	}
	return out
}
