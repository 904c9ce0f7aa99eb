package boxtree

import (
	"iter"
	"slices"
)

// Walk returns a depth-first, pre-order sequence of the subtree rooted at
// root, root included. The sequence is lazy and may be ranged over again;
// each pass re-reads the tree. The tree must not be restructured while a
// pass is in progress.
func (t *Tree) Walk(root Handle) iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		if !t.Valid(root) {
			return
		}
		cur := root.index
		for {
			if !yield(t.handle(cur)) {
				return
			}
			if first := t.nodes[cur].first; first != 0 {
				cur = first
				continue
			}
			for cur != root.index && t.nodes[cur].next == 0 {
				cur = t.nodes[cur].parent
			}
			if cur == root.index {
				return
			}
			cur = t.nodes[cur].next
		}
	}
}

// Descendants collects Walk(root) into a slice.
func (t *Tree) Descendants(root Handle) []Handle {
	return slices.Collect(t.Walk(root))
}

// Children returns the direct children of h in order.
func (t *Tree) Children(h Handle) iter.Seq[Handle] {
	return func(yield func(Handle) bool) {
		if !t.Valid(h) {
			return
		}
		for c := t.at(h).first; c != 0; c = t.nodes[c].next {
			if !yield(t.handle(c)) {
				return
			}
		}
	}
}
