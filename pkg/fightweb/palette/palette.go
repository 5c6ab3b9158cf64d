// Package palette maps fighters to colors: one hue per division in
// first-seen order, tinted by how recently each fighter was active.
package palette

import (
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/recera/fightweb/pkg/fightweb/graph"
)

// Divisions is the fixed division palette, assigned in first-seen order
// and reused with wraparound.
var Divisions = []string{
	"#e4572e", // red
	"#4e79a7", // blue
	"#59a14f", // green
	"#f28e2b", // orange
	"#b07aa1", // purple
	"#76b7b2", // teal
	"#edc948", // yellow
	"#ff9da7", // pink
	"#9c755f", // brown
	"#17becf", // cyan
}

// DefaultColor is used for fighters without a division.
const DefaultColor = "#8a8f98"

const (
	recencyExponent = 0.6

	minLightness  = 0.22
	maxLightness  = 0.65
	minSaturation = 0.15
	maxSaturation = 0.85
)

// AssignDivisions returns division -> color. The mapping depends only on
// the order in which divisions first appear.
func AssignDivisions(nodes []graph.FighterNode) map[string]string {
	out := make(map[string]string)
	next := 0
	for _, n := range nodes {
		if n.Division == "" {
			continue
		}
		if _, ok := out[n.Division]; ok {
			continue
		}
		out[n.Division] = Divisions[next%len(Divisions)]
		next++
	}
	return out
}

// Recency returns node id -> color derived from base. Recently active
// fighters are brighter and more saturated; fighters without a parseable
// date get the dimmest tier.
func Recency(base string, nodes []graph.FighterNode) map[string]string {
	r := newActivityRange(nodes)
	h := baseHue(base)
	out := make(map[string]string, len(nodes))
	for _, n := range nodes {
		out[n.ID] = tint(h, r.level(n.LatestEventDate))
	}
	return out
}

// activityRange is the observed min/max latest-activity time.
type activityRange struct {
	min, max time.Time
	ok       bool
}

func newActivityRange(nodes []graph.FighterNode) activityRange {
	var r activityRange
	for _, n := range nodes {
		t, ok := graph.ParseActivity(n.LatestEventDate)
		if !ok {
			continue
		}
		if !r.ok || t.Before(r.min) {
			r.min = t
		}
		if !r.ok || t.After(r.max) {
			r.max = t
		}
		r.ok = true
	}
	return r
}

// level maps a timestamp to [0,1] with the sub-linear curve applied.
func (r activityRange) level(date string) float64 {
	t, ok := graph.ParseActivity(date)
	if !ok || !r.ok {
		return 0
	}
	span := r.max.Sub(r.min)
	if span <= 0 {
		return 1
	}
	norm := float64(t.Sub(r.min)) / float64(span)
	norm = math.Max(0, math.Min(1, norm))
	return math.Pow(norm, recencyExponent)
}

func baseHue(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(DefaultColor)
	}
	h, _, _ := c.Hsl()
	if math.IsNaN(h) {
		return 0
	}
	return h
}

func tint(hue, level float64) string {
	s := minSaturation + (maxSaturation-minSaturation)*level
	l := minLightness + (maxLightness-minLightness)*level
	return colorful.Hsl(hue, s, l).Clamped().Hex()
}
