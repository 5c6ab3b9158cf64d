package styling

import "strings"

// Registry collects the sheets a page needs, deduplicated by hash and
// kept in registration order so the emitted CSS is stable.
type Registry struct {
	seen   map[string]bool
	sheets []*Sheet
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]bool)}
}

// Register adds sheets; nil, empty and already registered sheets are
// ignored.
func (r *Registry) Register(sheets ...*Sheet) {
	for _, s := range sheets {
		if s == nil || s.CSS == "" || r.seen[s.Hash] {
			continue
		}
		r.seen[s.Hash] = true
		r.sheets = append(r.sheets, s)
	}
}

// CSS returns all registered CSS as a single string
func (r *Registry) CSS() string {
	var b strings.Builder
	for _, s := range r.sheets {
		b.WriteString(s.CSS)
		b.WriteString("\n")
	}
	return b.String()
}

// Len returns the number of registered sheets.
func (r *Registry) Len() int { return len(r.sheets) }
