package rtree

import (
	"container/heap"
	"sort"

	"github.com/imclab/archery/geom"
)

// --- Range search ------------------------------------------------------------

// search appends every entry whose point lies inside space (boundary
// included) to hits, in children order. Branches are pruned by box
// intersection.
func (node *xnode[T]) search(space geom.Box, hits []Entry[T]) []Entry[T] {
	if node.isLeaf() {
		for _, e := range node.entries {
			if space.ContainsPoint(e.P) {
				hits = append(hits, e)
			}
		}
		return hits
	}
	for _, child := range node.children {
		if space.Intersects(child.box) {
			hits = child.search(space, hits)
		}
	}
	return hits
}

// count is search without materializing the entries.
func (node *xnode[T]) count(space geom.Box) int {
	n := 0
	if node.isLeaf() {
		for _, e := range node.entries {
			if space.ContainsPoint(e.P) {
				n++
			}
		}
		return n
	}
	for _, child := range node.children {
		if space.Intersects(child.box) {
			n += child.count(space)
		}
	}
	return n
}

// --- Nearest neighbours ------------------------------------------------------

// childDist pairs a child with its box-distance for best-first traversal.
type childDist[T comparable] struct {
	dist  float32
	child *xnode[T]
}

// byDistance orders the children of a branch by ascending box-distance to p.
func byDistance[T comparable](node *xnode[T], p geom.Point) []childDist[T] {
	ordered := make([]childDist[T], len(node.children))
	for i, child := range node.children {
		ordered[i] = childDist[T]{dist: child.box.DistTo(p), child: child}
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].dist < ordered[j].dist
	})
	return ordered
}

// nearest finds the closest entry within a distance strictly below dist.
// Children are visited best-first; the scan aborts as soon as a child's
// box-distance cannot improve on the running minimum.
func (node *xnode[T]) nearest(p geom.Point, dist float32) (float32, Entry[T], bool) {
	var best Entry[T]
	var found bool
	if node.isLeaf() {
		for _, e := range node.entries {
			if d := e.P.DistTo(p); d < dist {
				dist, best, found = d, e, true
			}
		}
		return dist, best, found
	}
	for _, cd := range byDistance(node, p) {
		if cd.dist >= dist {
			break
		}
		if d, e, ok := cd.child.nearest(p, dist); ok {
			dist, best, found = d, e, true
		}
	}
	return dist, best, found
}

// nearestK accumulates the k closest entries within dist into pq and returns
// the updated pruning distance. While pq holds fewer than k entries the
// pruning distance stays at the caller-supplied bound; after the first
// eviction it tracks the k-th best distance.
func (node *xnode[T]) nearestK(p geom.Point, k int, dist float32, pq *farthestFirst[T]) float32 {
	if node.isLeaf() {
		for _, e := range node.entries {
			if d := e.P.DistTo(p); d < dist {
				heap.Push(pq, distEntry[T]{dist: d, entry: e})
				if pq.Len() > k {
					dist = heap.Pop(pq).(distEntry[T]).dist
				}
			}
		}
		return dist
	}
	for _, cd := range byDistance(node, p) {
		if cd.dist >= dist {
			break
		}
		dist = cd.child.nearestK(p, k, dist, pq)
	}
	return dist
}

// distEntry pairs an entry with its distance for the result heap.
type distEntry[T comparable] struct {
	dist  float32
	entry Entry[T]
}

// farthestFirst is a max-heap over distances: the worst candidate sits on
// top, ready for eviction once the heap outgrows k.
type farthestFirst[T comparable] []distEntry[T]

func (q farthestFirst[T]) Len() int {
	return len(q)
}

func (q farthestFirst[T]) Less(i, j int) bool {
	return q[i].dist > q[j].dist
}

func (q farthestFirst[T]) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *farthestFirst[T]) Push(x interface{}) {
	*q = append(*q, x.(distEntry[T]))
}

func (q *farthestFirst[T]) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
