package rtree

import (
	"container/heap"
	"math/rand"

	"github.com/maja42/vmath/math32"
	tp "github.com/xlab/treeprint"

	"github.com/imclab/archery/geom"
	"github.com/imclab/archery/maybe"
)

// defaultFanout is the upper bound on a node's child count unless configured
// otherwise; a node splits when it would exceed it.
const defaultFanout = 50

// props carries the per-tree configuration, shared by all incarnations.
type props struct {
	fanout int
	rnd    *rand.Rand
}

func (p props) init() props {
	if p.fanout < 2 {
		p.fanout = defaultFanout
	}
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewSource(0x5eed))
	}
	return p
}

// Tree is a persistent in-memory R-tree over two-dimensional points. An empty
// instance is usable as an empty tree, i.e. this is legal:
//
//	tree := rtree.Tree[string]{}.Insert(geom.P(1, 2), "a")
//
// returning a tree containing a single entry. Every modification returns a
// new incarnation sharing unchanged subtrees with its predecessor; existing
// incarnations are never disturbed.
//
// Concurrent readers need no coordination. The split tie-breaker draws from a
// PRNG shared across incarnations, so writers to trees of a common ancestry
// must not run concurrently.
type Tree[T comparable] struct {
	props
	root *xnode[T]
	size int
}

// New constructs an R-tree with options, if you need any.
// Use it like this:
//
//	tree := rtree.New[string](rtree.Fanout(16))
//	tree = tree.Insert(geom.P(1, 2), "a")
func New[T comparable](opts ...Option) Tree[T] {
	tree := Tree[T]{}
	for _, option := range opts {
		tree.props = option.config(tree.props)
	}
	return tree
}

// Option is a type to help initializing R-trees at creation time.
type Option struct {
	config func(props) props
}

// Fanout is an option to set the maximum number of children a node in the
// tree owns. The lower bound for the fan-out is 2; the default is 50.
func Fanout(n int) Option {
	conf := func(p props) props {
		if n < 2 {
			n = 2
		}
		p.fanout = n
		return p
	}
	return Option{config: conf}
}

// Seed is an option to pin the pseudo-random source behind the split
// tie-breaker, making tree shapes reproducible.
func Seed(seed int64) Option {
	conf := func(p props) props {
		p.rnd = rand.New(rand.NewSource(seed))
		return p
	}
	return Option{config: conf}
}

// --- API -------------------------------------------------------------------

// Insert returns a copy of the tree with a new entry for value at p. Entries
// are multiset-like: inserting the same point/value pair twice yields two
// entries.
func (t Tree[T]) Insert(p geom.Point, value T) Tree[T] {
	return t.insert(Entry[T]{P: p, Value: value})
}

// InsertAll folds Insert over a sequence of entries.
func (t Tree[T]) InsertAll(entries []Entry[T]) Tree[T] {
	for _, e := range entries {
		t = t.insert(e)
	}
	return t
}

func (t Tree[T]) insert(e Entry[T]) Tree[T] {
	t.props = t.props.init()
	root := promote(t.rootOrEmpty().insert(e, t.props))
	return Tree[T]{props: t.props, root: root, size: t.size + 1}
}

// Remove returns a copy of the tree with the entry for value at p deleted,
// together with found=true. If no such entry exists, the receiver is returned
// unchanged with found=false.
//
// Entries orphaned by underflowing nodes are reinserted before the new
// incarnation is returned; no caller ever observes a tree with pending
// orphans.
func (t Tree[T]) Remove(p geom.Point, value T) (Tree[T], bool) {
	t.props = t.props.init()
	if t.root == nil {
		return t, false
	}
	r := t.root.remove(Entry[T]{P: p, Value: value})
	if !r.found {
		return t, false
	}
	newTree := Tree[T]{props: t.props, size: t.size - 1}
	if node, ok := r.node.Get(); ok {
		newTree.root = node
	} else {
		newTree.root = emptyLeaf[T]()
	}
	tracer().Debugf("removal yields %d orphans to reinsert", r.orphans.len())
	r.orphans.each(func(orphan Entry[T]) {
		newTree.root = promote(newTree.root.insert(orphan, t.props))
	})
	return newTree, true
}

// RemoveAll folds Remove over a sequence of entries. Entries not present are
// skipped.
func (t Tree[T]) RemoveAll(entries []Entry[T]) Tree[T] {
	for _, e := range entries {
		t, _ = t.Remove(e.P, e.Value)
	}
	return t
}

// promote turns an insertion outcome into a root: a split at the top grows
// the tree by a fresh branch over the halves.
func promote[T comparable](ins inserted[T]) *xnode[T] {
	if ins.isSplit() {
		return &xnode[T]{box: cover(ins.halves), children: ins.halves}
	}
	return ins.repl
}

func (t Tree[T]) rootOrEmpty() *xnode[T] {
	if t.root == nil {
		return emptyLeaf[T]()
	}
	return t.root
}

// Search returns every entry whose point lies inside space, boundary
// included. A non-finite space yields no entries.
func (t Tree[T]) Search(space geom.Box) []Entry[T] {
	if t.root == nil || !space.IsFinite() {
		return nil
	}
	return t.root.search(space, nil)
}

// Count returns the number of entries inside space without materializing
// them. A non-finite space counts 0.
func (t Tree[T]) Count(space geom.Box) int {
	if t.root == nil || !space.IsFinite() {
		return 0
	}
	return t.root.count(space)
}

// Contains reports whether the tree holds an entry for value at p.
func (t Tree[T]) Contains(p geom.Point, value T) bool {
	e := Entry[T]{P: p, Value: value}
	for _, hit := range t.Search(p.BoundingBox()) {
		if hit == e {
			return true
		}
	}
	return false
}

// Nearest returns the entry closest to p, or Nothing for an empty tree.
func (t Tree[T]) Nearest(p geom.Point) maybe.Maybe[Entry[T]] {
	return t.NearestWithin(p, math32.Infinity)
}

// NearestWithin returns the entry closest to p within a distance strictly
// below within, or Nothing if no such entry exists.
func (t Tree[T]) NearestWithin(p geom.Point, within float32) maybe.Maybe[Entry[T]] {
	if t.root == nil {
		return maybe.Nothing[Entry[T]]()
	}
	if _, e, ok := t.root.nearest(p, within); ok {
		return maybe.Just(e)
	}
	return maybe.Nothing[Entry[T]]()
}

// NearestK returns the min(k, Size) entries closest to p, ordered by
// ascending distance. Ties are broken arbitrarily.
func (t Tree[T]) NearestK(p geom.Point, k int) []Entry[T] {
	if t.root == nil || k <= 0 {
		return nil
	}
	pq := &farthestFirst[T]{}
	t.root.nearestK(p, k, math32.Infinity, pq)
	out := make([]Entry[T], pq.Len())
	for i := pq.Len() - 1; i >= 0; i-- {
		out[i] = heap.Pop(pq).(distEntry[T]).entry
	}
	return out
}

// Size returns the number of entries in the tree.
func (t Tree[T]) Size() int {
	return t.size
}

// Bounds returns the minimum covering box of all entries; the empty box for
// an empty tree.
func (t Tree[T]) Bounds() geom.Box {
	if t.root == nil {
		return geom.Empty()
	}
	return t.root.box
}

// Depth returns the number of node levels; 1 for a leaf root, 0 for the
// zero-value tree.
func (t Tree[T]) Depth() int {
	if t.root == nil {
		return 0
	}
	d := 1
	for node := t.root; !node.isLeaf(); node = node.children[0] {
		d++
	}
	return d
}

// Entries returns every entry of the tree, in traversal order.
func (t Tree[T]) Entries() []Entry[T] {
	if t.root == nil {
		return nil
	}
	return t.root.collect(nil)
}

// Each calls fn for every entry in traversal order until fn returns false.
func (t Tree[T]) Each(fn func(Entry[T]) bool) {
	if t.root != nil {
		t.root.each(fn)
	}
}

// Map returns a copy of the tree with every value passed through f. The
// tree's shape and geometry are preserved.
func (t Tree[T]) Map(f func(T) T) Tree[T] {
	if t.root == nil {
		return t
	}
	return Tree[T]{props: t.props, root: t.root.mapValues(f), size: t.size}
}

// --- Iterator --------------------------------------------------------------

// Iterator walks one incarnation of a tree entry by entry, left to right. It
// stays valid for as long as the incarnation that produced it: the subtree it
// references is unreachable to mutation. Re-invoke Tree.Iterator to restart.
type Iterator[T comparable] struct {
	stack []iterFrame[T]
}

type iterFrame[T comparable] struct {
	node *xnode[T]
	next int
}

// Iterator returns a lazy in-order iterator over the tree's entries.
func (t Tree[T]) Iterator() *Iterator[T] {
	it := &Iterator[T]{}
	if t.root != nil {
		it.stack = append(it.stack, iterFrame[T]{node: t.root})
	}
	return it
}

// Next yields the next entry, or ok=false once the iterator is exhausted.
func (it *Iterator[T]) Next() (Entry[T], bool) {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.node.isLeaf() {
			if top.next < len(top.node.entries) {
				e := top.node.entries[top.next]
				top.next++
				return e, true
			}
		} else if top.next < len(top.node.children) {
			child := top.node.children[top.next]
			top.next++
			it.stack = append(it.stack, iterFrame[T]{node: child})
			continue
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	var none Entry[T]
	return none, false
}

// --- Diagnostics -----------------------------------------------------------

// Pretty returns a multi-line dump of the tree for diagnostics. Not a
// performance path.
func (t Tree[T]) Pretty() string {
	printer := tp.New()
	if t.root != nil {
		ppt(printer, t.root)
	}
	return printer.String()
}

func ppt[T comparable](printer tp.Tree, node *xnode[T]) {
	if node.isLeaf() {
		printer.AddNode(node.String())
		return
	}
	branch := printer.AddBranch(node.String())
	for _, child := range node.children {
		ppt(branch, child)
	}
}
