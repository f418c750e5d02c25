/*
Package rtree implements a persistent (immutable) in-memory R-tree over
two-dimensional points.

A persistent R-tree has copy-on-write behaviour: each “modification”
(insertion or removal of an entry) creates a new incarnation of the tree,
leaving the original unmodified. Under the hood, copy-on-write clones only the
spine of nodes touched by the modification; all other subtrees are shared
between incarnations, transparently to clients.

Immutable trees are inherently safe for concurrent readers. Writers produce
independent incarnations and never disturb readers of older ones.

A good introduction to R-trees and their algorithms is A. Guttman,
“R-trees: A Dynamic Index Structure for Spatial Searching”, SIGMOD 1984.
*/
package rtree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'archery.rtree'.
func tracer() tracing.Trace {
	return tracing.Select("archery.rtree")
}
