package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// PatchOp represents the type of patch operation
type PatchOp uint8

const (
	// OpReplaceText replaces text node content
	OpReplaceText PatchOp = 0x01
	// OpSetAttribute sets or replaces an attribute
	OpSetAttribute PatchOp = 0x02
	// OpRemoveNode removes a node
	OpRemoveNode PatchOp = 0x03
	// OpInsertNode inserts a new node
	OpInsertNode PatchOp = 0x04
	// OpRemoveAttribute removes an attribute
	OpRemoveAttribute PatchOp = 0x06
)

// Patch is a single tree mutation. Path addresses the node by child
// indexes from the root, e.g. "0.3.1".
type Patch struct {
	Op    PatchOp
	Path  string
	Key   string
	Value string
	Node  *VNode
}

// String returns a human-readable representation of the patch
func (p Patch) String() string {
	switch p.Op {
	case OpReplaceText:
		return fmt.Sprintf("ReplaceText(%s, %q)", p.Path, p.Value)
	case OpSetAttribute:
		return fmt.Sprintf("SetAttribute(%s, %q=%q)", p.Path, p.Key, p.Value)
	case OpRemoveAttribute:
		return fmt.Sprintf("RemoveAttribute(%s, %q)", p.Path, p.Key)
	case OpRemoveNode:
		return fmt.Sprintf("RemoveNode(%s)", p.Path)
	case OpInsertNode:
		return fmt.Sprintf("InsertNode(%s)", p.Path)
	default:
		return fmt.Sprintf("Unknown(op=%d)", p.Op)
	}
}

// Diff computes the patches needed to transform prev into next.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diffNode(&patches, prev, next, "0")
	return patches
}

// Equal reports whether two trees would render identically.
func Equal(a, b *VNode) bool {
	return len(Diff(a, b)) == 0
}

func diffNode(out *[]Patch, prev, next *VNode, path string) {
	switch {
	case prev == nil && next == nil:
		return
	case next == nil:
		*out = append(*out, Patch{Op: OpRemoveNode, Path: path})
		return
	case prev == nil:
		*out = append(*out, Patch{Op: OpInsertNode, Path: path, Node: next})
		return
	}

	// Different node types or keys - replace
	if prev.Kind != next.Kind || prev.Tag != next.Tag || prev.Key != next.Key {
		*out = append(*out,
			Patch{Op: OpRemoveNode, Path: path},
			Patch{Op: OpInsertNode, Path: path, Node: next},
		)
		return
	}

	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			*out = append(*out, Patch{Op: OpReplaceText, Path: path, Value: next.Text})
		}
	case KindElement:
		diffProps(out, path, prev.Props, next.Props)
		diffChildren(out, path, prev.Kids, next.Kids)
	case KindFragment:
		diffChildren(out, path, prev.Kids, next.Kids)
	}
}

func diffProps(out *[]Patch, path string, prev, next Props) {
	for _, key := range prev.SortedKeys() {
		if _, ok := next[key]; !ok {
			*out = append(*out, Patch{Op: OpRemoveAttribute, Path: path, Key: key})
		}
	}
	for _, key := range next.SortedKeys() {
		nv := PropString(next[key])
		if pv, ok := prev[key]; ok && PropString(pv) == nv {
			continue
		}
		*out = append(*out, Patch{Op: OpSetAttribute, Path: path, Key: key, Value: nv})
	}
}

func diffChildren(out *[]Patch, path string, prev, next []VNode) {
	n := len(prev)
	if len(next) > n {
		n = len(next)
	}
	for i := 0; i < n; i++ {
		var p, q *VNode
		if i < len(prev) {
			p = &prev[i]
		}
		if i < len(next) {
			q = &next[i]
		}
		diffNode(out, p, q, path+"."+strconv.Itoa(i))
	}
}

// PropString formats a prop value the way markup renderers write it.
func PropString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return FormatFloat(x)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatFloat prints coordinates with two decimals and no trailing zeros.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
