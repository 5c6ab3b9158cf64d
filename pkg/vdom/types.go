// Package vdom is the immutable node tree the rendering surface and the
// overlay panel build before they are written out as SVG/HTML markup.
package vdom

import "sort"

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents an element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents multiple children without a parent element
	KindFragment
)

// Props holds the attributes of an element. Values are rendered with
// fmt's %v; bool values render as presence-only attributes.
type Props map[string]any

// VNode represents a virtual node.
// Once created it should never be modified.
type VNode struct {
	Kind  VKind
	Tag   string
	Props Props
	Kids  []VNode
	Key   string
	Text  string
}

// NewElement creates a new element VNode. Nil children are skipped.
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}

	node := &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  kids,
	}
	if key, ok := props["key"].(string); ok {
		node.Key = key
	}
	return node
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{Kind: KindText, Text: text}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return &VNode{Kind: KindFragment, Kids: kids}
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool { return v.Kind == KindElement }

// IsText returns true if this is a text node
func (v VNode) IsText() bool { return v.Kind == KindText }

// SortedKeys returns the attribute names in lexical order, skipping the
// reserved "key" prop.
func (p Props) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == "key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Find returns the first node in depth-first order whose Key equals key.
func (v *VNode) Find(key string) *VNode {
	if v == nil {
		return nil
	}
	if v.Key == key {
		return v
	}
	for i := range v.Kids {
		if found := v.Kids[i].Find(key); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits v and its descendants depth-first until fn returns false.
func (v *VNode) Walk(fn func(*VNode) bool) bool {
	if v == nil {
		return true
	}
	if !fn(v) {
		return false
	}
	for i := range v.Kids {
		if !v.Kids[i].Walk(fn) {
			return false
		}
	}
	return true
}
