// Package boxtree holds the retained tree of boxes and text that the
// renderer draws.
//
// Nodes live in an arena owned by a Tree and are addressed by Handles.
// Parent, child and sibling links are arena indices, so the tree has no
// pointer cycles and a freed slot can be detected through its generation.
package boxtree

import (
	"fmt"

	"github.com/vito/boxdiff/pkg/flex"
	"github.com/vito/boxdiff/pkg/style"
)

// Kind is the closed set of node variants.
type Kind uint8

const (
	// Container is a box that lays out its children.
	Container Kind = iota
	// Text is a leaf holding a string.
	Text
)

func (k Kind) String() string {
	switch k {
	case Container:
		return "container"
	case Text:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Handle addresses a node in a Tree. The zero Handle refers to no node.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h refers to no node.
func (h Handle) IsZero() bool {
	return h.index == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "node#nil"
	}
	return fmt.Sprintf("node#%d", h.index)
}

// Transformer rewrites one line of a node's output before it reaches the
// output buffer. index is the line's position within the written text.
type Transformer func(line string, index int) string

type node struct {
	gen  uint32
	live bool
	kind Kind

	style style.Style
	text  string

	parent      uint32
	first, last uint32
	prev, next  uint32
	children    int

	staticRendered bool
	transform      Transformer
	layout         *flex.Node
}

// Tree is an arena of nodes. It is not safe for concurrent use; the
// renderer and its owner mutate it from one goroutine.
type Tree struct {
	nodes []node
	free  []uint32
}

// New returns an empty tree.
func New() *Tree {
	// slot 0 is the nil handle
	return &Tree{nodes: make([]node, 1, 64)}
}

// Len returns the number of live nodes.
func (t *Tree) Len() int {
	return len(t.nodes) - 1 - len(t.free)
}

func (t *Tree) alloc(kind Kind, s style.Style) Handle {
	var i uint32
	if n := len(t.free); n > 0 {
		i = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.nodes = append(t.nodes, node{})
		i = uint32(len(t.nodes) - 1)
	}
	gen := t.nodes[i].gen + 1
	t.nodes[i] = node{gen: gen, live: true, kind: kind, style: s}
	return Handle{index: i, gen: gen}
}

// NewContainer allocates a detached container node.
func (t *Tree) NewContainer(s style.Style) Handle {
	return t.alloc(Container, s)
}

// NewText allocates a detached text leaf.
func (t *Tree) NewText(text string, s style.Style) Handle {
	h := t.alloc(Text, s)
	t.nodes[h.index].text = text
	return h
}

// Valid reports whether h refers to a live node.
func (t *Tree) Valid(h Handle) bool {
	if h.IsZero() || int(h.index) >= len(t.nodes) {
		return false
	}
	n := &t.nodes[h.index]
	return n.live && n.gen == h.gen
}

func (t *Tree) get(h Handle) (*node, error) {
	if !t.Valid(h) {
		return nil, stale(h)
	}
	return &t.nodes[h.index], nil
}

// at returns the node for a handle the caller has already validated.
func (t *Tree) at(h Handle) *node {
	return &t.nodes[h.index]
}

func (t *Tree) handle(i uint32) Handle {
	if i == 0 {
		return Handle{}
	}
	return Handle{index: i, gen: t.nodes[i].gen}
}

// Kind returns the node's variant. Stale handles report Container.
func (t *Tree) Kind(h Handle) Kind {
	if !t.Valid(h) {
		return Container
	}
	return t.at(h).kind
}

// Style returns the node's resolved style.
func (t *Tree) Style(h Handle) style.Style {
	if !t.Valid(h) {
		return style.Style{}
	}
	return t.at(h).style
}

// SetStyle replaces the node's style.
func (t *Tree) SetStyle(h Handle, s style.Style) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	n.style = s
	return nil
}

// ApplyStyle merges attribute changes into the node's style. This is the
// one entry point for attribute updates; nothing else observes writes.
func (t *Tree) ApplyStyle(h Handle, diff style.Attributes) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	n.style = n.style.Apply(diff)
	return nil
}

// Text returns the raw text of a text leaf.
func (t *Tree) Text(h Handle) string {
	if !t.Valid(h) {
		return ""
	}
	return t.at(h).text
}

// SetText replaces the text of a text leaf.
func (t *Tree) SetText(h Handle, text string) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	if n.kind != Text {
		return structuref("can't set text on %s %s", n.kind, h)
	}
	n.text = text
	return nil
}

// Parent returns the node's parent, or the zero Handle.
func (t *Tree) Parent(h Handle) Handle {
	if !t.Valid(h) {
		return Handle{}
	}
	return t.handle(t.at(h).parent)
}

// FirstChild returns the node's first child, or the zero Handle.
func (t *Tree) FirstChild(h Handle) Handle {
	if !t.Valid(h) {
		return Handle{}
	}
	return t.handle(t.at(h).first)
}

// LastChild returns the node's last child, or the zero Handle.
func (t *Tree) LastChild(h Handle) Handle {
	if !t.Valid(h) {
		return Handle{}
	}
	return t.handle(t.at(h).last)
}

// NextSibling returns the node after h in its parent, or the zero Handle.
func (t *Tree) NextSibling(h Handle) Handle {
	if !t.Valid(h) {
		return Handle{}
	}
	return t.handle(t.at(h).next)
}

// PrevSibling returns the node before h in its parent, or the zero Handle.
func (t *Tree) PrevSibling(h Handle) Handle {
	if !t.Valid(h) {
		return Handle{}
	}
	return t.handle(t.at(h).prev)
}

// ChildCount returns the number of children of h.
func (t *Tree) ChildCount(h Handle) int {
	if !t.Valid(h) {
		return 0
	}
	return t.at(h).children
}

// AppendChild adds child as the last child of parent. Appending a node
// that is already a child of parent leaves it where it is.
func (t *Tree) AppendChild(parent, child Handle) error {
	return t.InsertBefore(parent, child, Handle{})
}

// InsertBefore inserts child into parent before ref. A zero ref appends.
// A child that already belongs to parent is moved.
func (t *Tree) InsertBefore(parent, child, ref Handle) error {
	p, err := t.get(parent)
	if err != nil {
		return err
	}
	c, err := t.get(child)
	if err != nil {
		return err
	}
	if p.kind != Container {
		return structuref("can't insert %s into %s %s", child, p.kind, parent)
	}
	if parent == child {
		return structuref("can't insert %s into itself", child)
	}
	for a := p.parent; a != 0; a = t.nodes[a].parent {
		if a == child.index {
			return structuref("can't insert %s into %s: it is an ancestor", child, parent)
		}
	}
	if c.parent != 0 && c.parent != parent.index {
		return structuref("can't insert %s into %s: it already has parent %s",
			child, parent, t.handle(c.parent))
	}
	if !ref.IsZero() {
		r, err := t.get(ref)
		if err != nil {
			return err
		}
		if r.parent != parent.index {
			return structuref("can't insert %s into %s: reference %s has a different parent",
				child, parent, ref)
		}
		if ref == child {
			return nil
		}
	} else if c.parent == parent.index {
		return nil
	}

	if c.parent == parent.index {
		t.unlink(parent.index, child.index)
	}
	t.link(parent.index, child.index, ref.index)
	return nil
}

// RemoveChild detaches child from parent. The child and its subtree stay
// allocated and lose their layout nodes.
func (t *Tree) RemoveChild(parent, child Handle) error {
	if _, err := t.get(parent); err != nil {
		return err
	}
	c, err := t.get(child)
	if err != nil {
		return err
	}
	switch c.parent {
	case 0:
		return structuref("can't remove %s from %s: it has no parent", child, parent)
	case parent.index:
	default:
		return structuref("can't remove %s from %s: its parent is %s",
			child, parent, t.handle(c.parent))
	}
	t.DetachLayout(child)
	t.unlink(parent.index, child.index)
	return nil
}

// RemoveChildren detaches every child of h.
func (t *Tree) RemoveChildren(h Handle) error {
	if _, err := t.get(h); err != nil {
		return err
	}
	for c := t.FirstChild(h); !c.IsZero(); c = t.FirstChild(h) {
		if err := t.RemoveChild(h, c); err != nil {
			return err
		}
	}
	return nil
}

// Free detaches h from its parent and releases its subtree. Handles into
// the subtree become stale.
func (t *Tree) Free(h Handle) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	if n.parent != 0 {
		if err := t.RemoveChild(t.handle(n.parent), h); err != nil {
			return err
		}
	}
	t.DetachLayout(h)
	for _, d := range t.Descendants(h) {
		i := d.index
		gen := t.nodes[i].gen
		t.nodes[i] = node{gen: gen}
		t.free = append(t.free, i)
	}
	return nil
}

func (t *Tree) link(parent, child, before uint32) {
	p := &t.nodes[parent]
	c := &t.nodes[child]
	c.parent = parent
	c.next = before
	if before == 0 {
		c.prev = p.last
		if p.last != 0 {
			t.nodes[p.last].next = child
		} else {
			p.first = child
		}
		p.last = child
	} else {
		b := &t.nodes[before]
		c.prev = b.prev
		if b.prev != 0 {
			t.nodes[b.prev].next = child
		} else {
			p.first = child
		}
		b.prev = child
	}
	p.children++
}

func (t *Tree) unlink(parent, child uint32) {
	p := &t.nodes[parent]
	c := &t.nodes[child]
	if c.prev != 0 {
		t.nodes[c.prev].next = c.next
	} else {
		p.first = c.next
	}
	if c.next != 0 {
		t.nodes[c.next].prev = c.prev
	} else {
		p.last = c.prev
	}
	c.parent, c.prev, c.next = 0, 0, 0
	p.children--
}

// IsStatic reports whether the node is rendered once and then frozen.
func (t *Tree) IsStatic(h Handle) bool {
	return t.Valid(h) && t.at(h).style.Static
}

// StaticRendered reports whether a static node has been rendered and
// frozen.
func (t *Tree) StaticRendered(h Handle) bool {
	return t.Valid(h) && t.at(h).staticRendered
}

// MarkStaticRendered freezes a node. Frozen nodes lose their layout nodes
// and are skipped by later layout and render passes. There is no way back.
func (t *Tree) MarkStaticRendered(h Handle) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	if n.staticRendered {
		return nil
	}
	n.staticRendered = true
	t.DetachLayout(h)
	return nil
}

// SetTransform sets the node's output transformer; nil clears it.
func (t *Tree) SetTransform(h Handle, fn Transformer) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	n.transform = fn
	return nil
}

// Transform returns the node's output transformer, if any.
func (t *Tree) Transform(h Handle) Transformer {
	if !t.Valid(h) {
		return nil
	}
	return t.at(h).transform
}

// LayoutNode returns the node's bound layout node, or nil when the node is
// not part of the layout tree.
func (t *Tree) LayoutNode(h Handle) *flex.Node {
	if !t.Valid(h) {
		return nil
	}
	return t.at(h).layout
}

// BindLayout attaches a layout node to h.
func (t *Tree) BindLayout(h Handle, ln *flex.Node) error {
	n, err := t.get(h)
	if err != nil {
		return err
	}
	n.layout = ln
	return nil
}

// DetachLayout removes the layout nodes of the subtree at h: the subtree's
// root is taken out of its layout parent, measure functions are cleared
// and every node is unbound.
func (t *Tree) DetachLayout(h Handle) {
	if !t.Valid(h) {
		return
	}
	if ln := t.at(h).layout; ln != nil && ln.Parent() != nil {
		ln.Parent().RemoveChild(ln)
	}
	for d := range t.Walk(h) {
		n := t.at(d)
		if n.layout == nil {
			continue
		}
		n.layout.SetMeasureFunc(nil)
		n.layout.RemoveAllChildren()
		n.layout = nil
	}
}
