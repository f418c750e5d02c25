package rtree

import (
	"fmt"
	"strings"

	"github.com/imclab/archery/geom"
	"github.com/imclab/archery/maybe"
)

/*
Remarks:
--------

- 'cow' stands for copy-on-write and is used throughout the code for variables
  holding clones of node slices.

- Nodes are immutable after construction. Insertion and removal rebuild the
  spine of nodes from the touched leaf up to the root and share every other
  subtree with the previous incarnation of the tree.

- A new modified incarnation of a tree always is reflected by a new tree.root.
*/

// Entry is a user-visible point/value pair indexed by the tree. Two entries
// are equal iff both coordinates and the value are equal.
type Entry[T comparable] struct {
	P     geom.Point
	Value T
}

// BoundingBox returns the degenerate box sitting on the entry's point.
func (e Entry[T]) BoundingBox() geom.Box {
	return e.P.BoundingBox()
}

// DistTo returns the distance from the entry's point to p.
func (e Entry[T]) DistTo(p geom.Point) float32 {
	return e.P.DistTo(p)
}

func (e Entry[T]) String() string {
	return fmt.Sprintf("%v→%v", e.P, e.Value)
}

// xnode is a type for tree nodes, either a branch or a leaf. Leafs carry
// entries and have nil children; branches carry children and have nil
// entries. Dispatch is by that tag, never by subtyping.
type xnode[T comparable] struct {
	box      geom.Box
	entries  []Entry[T]
	children []*xnode[T]
}

// emptyLeaf is the root of a virgin tree.
func emptyLeaf[T comparable]() *xnode[T] {
	return &xnode[T]{box: geom.Empty()}
}

func (node *xnode[T]) isLeaf() bool {
	return node.children == nil
}

// BoundingBox returns the node's covering box.
func (node *xnode[T]) BoundingBox() geom.Box {
	return node.box
}

func (node *xnode[T]) String() string {
	if node.isLeaf() {
		sb := strings.Builder{}
		sb.WriteRune('[')
		for i, e := range node.entries {
			if i > 0 {
				sb.WriteRune(',')
			}
			sb.WriteString(e.P.String())
		}
		sb.WriteRune(']')
		return sb.String()
	}
	return node.box.String()
}

// --- Insertion ---------------------------------------------------------------

// inserted is the outcome of an insertion below a node: either a single
// replacement for the receiver, or the halves of a split that together take
// the receiver's place at its parent.
type inserted[T comparable] struct {
	repl   *xnode[T]
	halves []*xnode[T]
}

func replaced[T comparable](n *xnode[T]) inserted[T] {
	return inserted[T]{repl: n}
}

func divided[T comparable](halves ...*xnode[T]) inserted[T] {
	return inserted[T]{halves: halves}
}

func (ins inserted[T]) isSplit() bool {
	return ins.repl == nil
}

func (node *xnode[T]) insert(e Entry[T], p props) inserted[T] {
	if node.isLeaf() {
		return node.insertLeaf(e, p)
	}
	return node.insertBranch(e, p)
}

func (node *xnode[T]) insertLeaf(e Entry[T], p props) inserted[T] {
	cow := make([]Entry[T], len(node.entries)+1)
	copy(cow, node.entries)
	cow[len(node.entries)] = e
	if len(cow) <= p.fanout {
		return replaced(&xnode[T]{box: node.box.Expand(e.P), entries: cow})
	}
	tracer().Debugf("leaf %s overflows fan-out %d, splitting", node, p.fanout)
	g1, g2 := partition(cow, p.rnd)
	return divided(
		&xnode[T]{box: g1.box, entries: g1.members},
		&xnode[T]{box: g2.box, entries: g2.members},
	)
}

func (node *xnode[T]) insertBranch(e Entry[T], p props) inserted[T] {
	assertThat(len(node.children) > 0, "encountered branch with zero children")
	// descend into the child needing the least enlargement; first one wins ties
	best := 0
	bestGrowth := node.children[0].box.ExpandArea(e.P)
	for i, child := range node.children[1:] {
		if growth := child.box.ExpandArea(e.P); growth < bestGrowth {
			best, bestGrowth = i+1, growth
		}
	}
	ins := node.children[best].insert(e, p)
	if !ins.isSplit() {
		cow := make([]*xnode[T], len(node.children))
		copy(cow, node.children)
		cow[best] = ins.repl
		// expand by the replacement's box: it may have grown past the point
		return replaced(&xnode[T]{box: node.box.Expand(ins.repl.box), children: cow})
	}
	// drop the split child and append its halves at the end; ordering of
	// children has no semantic meaning
	cow := make([]*xnode[T], 0, len(node.children)-1+len(ins.halves))
	cow = append(cow, node.children[:best]...)
	cow = append(cow, node.children[best+1:]...)
	cow = append(cow, ins.halves...)
	if len(cow) <= p.fanout {
		box := node.box
		for _, half := range ins.halves {
			box = box.Expand(half.box)
		}
		return replaced(&xnode[T]{box: box, children: cow})
	}
	tracer().Debugf("branch %s overflows fan-out %d, splitting", node, p.fanout)
	g1, g2 := partition(cow, p.rnd)
	return divided(
		&xnode[T]{box: g1.box, children: g1.members},
		&xnode[T]{box: g2.box, children: g2.members},
	)
}

// --- Removal -----------------------------------------------------------------

// removal is the outcome of removing an entry below a node. found=false means
// the entry was not located in the subtree. Otherwise node holds the
// receiver's replacement, or Nothing if the receiver dissolved; orphans are
// entries that must be reinserted by the caller.
type removal[T comparable] struct {
	found   bool
	orphans *joined[Entry[T]]
	node    maybe.Maybe[*xnode[T]]
}

func notFound[T comparable]() removal[T] {
	return removal[T]{}
}

func removed[T comparable](orphans *joined[Entry[T]], node maybe.Maybe[*xnode[T]]) removal[T] {
	return removal[T]{found: true, orphans: orphans, node: node}
}

func (node *xnode[T]) remove(e Entry[T]) removal[T] {
	if node.isLeaf() {
		return node.removeLeaf(e)
	}
	return node.removeBranch(e)
}

func (node *xnode[T]) removeLeaf(e Entry[T]) removal[T] {
	if !node.box.ContainsPoint(e.P) {
		return notFound[T]()
	}
	at := -1
	for i, cand := range node.entries {
		if cand == e {
			at = i
			break
		}
	}
	if at < 0 {
		return notFound[T]()
	}
	switch len(node.entries) {
	case 1:
		// leaf empties out and is discarded
		return removed(emptyJoin[Entry[T]](), maybe.Nothing[*xnode[T]]())
	case 2:
		// a one-entry leaf would violate balance; orphan the survivor instead
		tracer().Debugf("leaf %s dissolves, orphaning survivor", node)
		return removed(one(node.entries[1-at]), maybe.Nothing[*xnode[T]]())
	}
	cow := make([]Entry[T], 0, len(node.entries)-1)
	cow = append(cow, node.entries[:at]...)
	cow = append(cow, node.entries[at+1:]...)
	box := node.contract(e.P, func() geom.Box {
		b := geom.Empty()
		for _, cand := range cow {
			b = b.Expand(cand.P)
		}
		return b
	})
	return removed(emptyJoin[Entry[T]](), maybe.Just(&xnode[T]{box: box, entries: cow}))
}

func (node *xnode[T]) removeBranch(e Entry[T]) removal[T] {
	if !node.box.ContainsPoint(e.P) {
		return notFound[T]()
	}
	for i, child := range node.children {
		r := child.remove(e)
		if !r.found {
			continue
		}
		if repl, ok := r.node.Get(); ok {
			cow := make([]*xnode[T], len(node.children))
			copy(cow, node.children)
			cow[i] = repl
			box := node.contract(child.box, func() geom.Box { return cover(cow) })
			return removed(r.orphans, maybe.Just(&xnode[T]{box: box, children: cow}))
		}
		// the child dissolved
		switch len(node.children) {
		case 1:
			return removed(r.orphans, maybe.Nothing[*xnode[T]]())
		case 2:
			// dissolve rather than keep a degenerate one-child branch; the
			// sibling's subtree is flattened into orphans
			sibling := node.children[1-i]
			tracer().Debugf("branch %s dissolves, orphaning sibling subtree", node)
			orphans := concat(wrap(sibling.collect(nil)), r.orphans)
			return removed(orphans, maybe.Nothing[*xnode[T]]())
		}
		cow := make([]*xnode[T], 0, len(node.children)-1)
		cow = append(cow, node.children[:i]...)
		cow = append(cow, node.children[i+1:]...)
		box := node.contract(child.box, func() geom.Box { return cover(cow) })
		return removed(r.orphans, maybe.Just(&xnode[T]{box: box, children: cow}))
	}
	return notFound[T]()
}

// contract returns the node's box unchanged if removing gone provably cannot
// shrink it, and defers to regen for the O(n) recomputation otherwise.
func (node *xnode[T]) contract(gone geom.Geom, regen func() geom.Box) geom.Box {
	if node.box.Wraps(gone) {
		return node.box
	}
	return regen()
}

// cover computes the minimum covering box of a children sequence.
func cover[T comparable](children []*xnode[T]) geom.Box {
	box := geom.Empty()
	for _, child := range children {
		box = box.Expand(child.box)
	}
	return box
}

// --- Traversal ---------------------------------------------------------------

// collect appends every entry at or below node to buf, left to right.
func (node *xnode[T]) collect(buf []Entry[T]) []Entry[T] {
	if node.isLeaf() {
		return append(buf, node.entries...)
	}
	for _, child := range node.children {
		buf = child.collect(buf)
	}
	return buf
}

// each walks the subtree in order, stopping early when fn returns false.
func (node *xnode[T]) each(fn func(Entry[T]) bool) bool {
	if node.isLeaf() {
		for _, e := range node.entries {
			if !fn(e) {
				return false
			}
		}
		return true
	}
	for _, child := range node.children {
		if !child.each(fn) {
			return false
		}
	}
	return true
}

// mapValues rebuilds the subtree with every entry value passed through f.
// Geometry is untouched, so boxes are shared as-is.
func (node *xnode[T]) mapValues(f func(T) T) *xnode[T] {
	if node.isLeaf() {
		cow := make([]Entry[T], len(node.entries))
		for i, e := range node.entries {
			cow[i] = Entry[T]{P: e.P, Value: f(e.Value)}
		}
		return &xnode[T]{box: node.box, entries: cow}
	}
	cow := make([]*xnode[T], len(node.children))
	for i, child := range node.children {
		cow[i] = child.mapValues(f)
	}
	return &xnode[T]{box: node.box, children: cow}
}

// --- Helpers -----------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("rtree: "+msg, msgargs...)
		panic(msg)
	}
}
