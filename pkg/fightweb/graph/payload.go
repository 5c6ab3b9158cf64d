package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DecodePayload reads a JSON payload. Duplicate fighter ids keep their
// first occurrence; edges are left untouched for the layout to filter.
func DecodePayload(r io.Reader) (*Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode graph payload: %w", err)
	}
	p.Nodes = dedupe(p.Nodes)
	return &p, nil
}

// LoadPayload decodes the payload stored at path.
func LoadPayload(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open payload %s: %w", path, err)
	}
	defer f.Close()
	return DecodePayload(f)
}

func dedupe(nodes []FighterNode) []FighterNode {
	seen := make(map[string]struct{}, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}

// NodeByID indexes the payload's fighters.
func (p *Payload) NodeByID() map[string]FighterNode {
	if p == nil {
		return nil
	}
	m := make(map[string]FighterNode, len(p.Nodes))
	for _, n := range p.Nodes {
		m[n.ID] = n
	}
	return m
}
