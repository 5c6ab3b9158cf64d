package graph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload(t *testing.T) {
	in := `{
		"nodes": [
			{"fighter_id": "a", "name": "Ana", "division": "Lightweight", "total_fights": 12},
			{"fighter_id": "b", "name": "Bo", "total_fights": 3},
			{"fighter_id": "a", "name": "Duplicate", "total_fights": 1}
		],
		"links": [{"source": "a", "target": "b", "fights": 2, "last_event_name": "Fight Night"}],
		"metadata": {"query": "division=Lightweight"}
	}`

	p, err := DecodePayload(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, "Ana", p.Nodes[0].Name)
	assert.Equal(t, "Lightweight", p.Nodes[0].Division)
	require.Len(t, p.Links, 1)
	assert.Equal(t, 2, p.Links[0].Fights)
	require.NotNil(t, p.Metadata)
	assert.Equal(t, "division=Lightweight", p.Metadata.Query)

	byID := p.NodeByID()
	assert.Equal(t, 3, byID["b"].TotalFights)
}

func TestDecodePayload_MetadataKeepsUnknownKeys(t *testing.T) {
	tests := []struct {
		name  string
		meta  string
		query string
		extra map[string]any
	}{
		{
			name:  "non-string extra",
			meta:  `{"query": "q", "extra": {"limit": 50, "strict": true}}`,
			query: "q",
			extra: map[string]any{"extra": map[string]any{"limit": float64(50), "strict": true}},
		},
		{
			name:  "unknown top-level keys",
			meta:  `{"generated_at": "2026-10-01", "source": "ufcstats", "count": 3, "tags": ["a"]}`,
			extra: map[string]any{"source": "ufcstats", "count": float64(3), "tags": []any{"a"}},
		},
		{
			name:  "mistyped query kept as extra",
			meta:  `{"query": {"division": "Flyweight"}}`,
			extra: map[string]any{"query": map[string]any{"division": "Flyweight"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"nodes": [], "links": [], "metadata": ` + tt.meta + `}`

			p, err := DecodePayload(strings.NewReader(in))
			require.NoError(t, err)
			require.NotNil(t, p.Metadata)
			assert.Equal(t, tt.query, p.Metadata.Query)
			assert.Equal(t, tt.extra, p.Metadata.Extra)
		})
	}
}

func TestMetadata_MarshalFlattensExtra(t *testing.T) {
	m := Metadata{Query: "q", GeneratedAt: "now", Extra: map[string]any{"source": "ufcstats", "query": "shadowed"}}

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"query": "q", "generated_at": "now", "source": "ufcstats"}`, string(b))

	var back Metadata
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "q", back.Query)
	assert.Equal(t, map[string]any{"source": "ufcstats"}, back.Extra)
}

func TestDecodePayload_Malformed(t *testing.T) {
	_, err := DecodePayload(strings.NewReader(`{"nodes": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode graph payload")
}

func TestUpcoming(t *testing.T) {
	d := FighterDetail{FightHistory: []FightRecord{
		{Opponent: "Cy", Result: "win", EventName: "UFC 1"},
		{Opponent: "Di", Result: " Next ", EventName: "UFC 9", Date: "2026-12-01"},
		{Result: "scheduled"},
		{Opponent: "Ed", Result: "upcoming", EventName: ""},
	}}

	got := d.Upcoming()
	require.Len(t, got, 3)
	assert.Equal(t, "Di", got[0].Opponent)

	opp, ev, date := got[1].Display()
	assert.Equal(t, Placeholder, opp)
	assert.Equal(t, Placeholder, ev)
	assert.Equal(t, Placeholder, date)

	_, ev, _ = got[2].Display()
	assert.Equal(t, Placeholder, ev)
}

func TestParseActivity(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2024-03-09", true},
		{"2024-03-09T20:00:00Z", true},
		{"March 9, 2024", true},
		{"", false},
		{"yesterday", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := ParseActivity(tt.in)
			if ok != tt.ok {
				t.Errorf("ParseActivity(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
		})
	}
}
