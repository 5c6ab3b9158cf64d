// Package styling scopes stylesheet class names so several graph views
// can share one page without their rules colliding.
package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sheet is a stylesheet whose class selectors were rewritten to
// hash-prefixed names.
type Sheet struct {
	// Hash is derived from the source CSS, e.g. "_1a2b3c"
	Hash string

	// CSS is the rewritten stylesheet
	CSS string

	// names maps source class names to scoped names
	// e.g. "node" -> "_1a2b3c_node"
	names map[string]string
	order []string
}

// Scope hashes css and rewrites every class selector in it.
func Scope(css string) *Sheet {
	sum := sha256.Sum256([]byte(css))
	s := &Sheet{
		Hash:  "_" + hex.EncodeToString(sum[:])[:6],
		names: make(map[string]string),
	}
	s.CSS = s.rewrite(removeComments(css))
	return s
}

// rewrite replaces ".name" in selectors; declaration blocks are copied
// untouched so values such as "0.5" or url(a.png) survive.
func (s *Sheet) rewrite(css string) string {
	var b strings.Builder
	b.Grow(len(css) + 64)
	depth := 0
	for i := 0; i < len(css); i++ {
		c := css[i]
		switch {
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == '.' && depth == 0 && i+1 < len(css) && isIdentStart(css[i+1]):
			end := i + 1
			for end < len(css) && isIdent(css[end]) {
				end++
			}
			b.WriteByte('.')
			b.WriteString(s.add(css[i+1 : end]))
			i = end - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (s *Sheet) add(name string) string {
	if scoped, ok := s.names[name]; ok {
		return scoped
	}
	scoped := s.Hash + "_" + name
	s.names[name] = scoped
	s.order = append(s.order, name)
	return scoped
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// removeComments removes CSS comments from the string
func removeComments(css string) string {
	var result strings.Builder
	i := 0
	for i < len(css) {
		if i < len(css)-1 && css[i] == '/' && css[i+1] == '*' {
			i += 2
			for i < len(css)-1 {
				if css[i] == '*' && css[i+1] == '/' {
					i += 2
					break
				}
				i++
			}
			continue
		}
		result.WriteByte(css[i])
		i++
	}
	return result.String()
}

// Class returns the scoped class name, or name itself when the sheet
// does not declare it.
func (s *Sheet) Class(name string) string {
	if s == nil {
		return name
	}
	if v, ok := s.names[name]; ok {
		return v
	}
	return name
}

// Classes returns multiple scoped class names separated by space.
// Empty names are skipped.
func (s *Sheet) Classes(names ...string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		parts = append(parts, s.Class(name))
	}
	return strings.Join(parts, " ")
}

// Has returns whether a class name exists in this sheet
func (s *Sheet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[name]
	return ok
}

// Names returns the declared class names in first-seen order.
func (s *Sheet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}
