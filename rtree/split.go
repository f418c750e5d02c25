package rtree

import (
	"math/rand"

	"github.com/imclab/archery/geom"
)

/*
Splitting partitions an overfull member sequence — leaf entries or branch
children — into two balanced groups, following the linear variant of
Guttman's heuristics: seed picking by normalized separation, then greedy
distribution by least enlargement.
*/

// bounded is anything the splitter can partition.
type bounded interface {
	BoundingBox() geom.Box
}

// group accumulates one half of a split; its cover is maintained
// incrementally by expansion.
type group[M bounded] struct {
	members []M
	box     geom.Box
}

func (g *group[M]) add(m M) {
	g.members = append(g.members, m)
	g.box = g.box.Expand(m.BoundingBox())
}

func (g *group[M]) len() int {
	return len(g.members)
}

// partition splits members into two non-empty groups; with five or more
// members the fill-balance guard keeps both groups at 2 members or larger.
// Callers guarantee len(members) > fanout ≥ 2. rnd breaks exact ties in the
// distribution loop.
func partition[M bounded](members []M, rnd *rand.Rand) (group[M], group[M]) {
	assertThat(len(members) >= 3, "attempt to split fewer than 3 members")
	l, r := pickSeeds(members)
	tracer().Debugf("split seeds at %d and %d of %d members", l, r, len(members))
	g1 := group[M]{box: geom.Empty()}
	g2 := group[M]{box: geom.Empty()}
	g1.add(members[l])
	g2.add(members[r])
	rest := make([]M, 0, len(members)-2)
	for i, m := range members {
		if i != l && i != r {
			rest = append(rest, m)
		}
	}
	for len(rest) > 0 {
		next := rest[len(rest)-1]
		rest = rest[:len(rest)-1]
		// fill-balance guard: never leave either group below 2 members
		if g1.len() >= 2 && g2.len()+len(rest)+1 <= 2 {
			g2.add(next)
			for _, m := range rest {
				g2.add(m)
			}
			break
		}
		if g2.len() >= 2 && g1.len()+len(rest)+1 <= 2 {
			g1.add(next)
			for _, m := range rest {
				g1.add(m)
			}
			break
		}
		bb := next.BoundingBox()
		e1 := g1.box.ExpandArea(bb)
		e2 := g2.box.ExpandArea(bb)
		switch {
		case e1 < e2:
			g1.add(next)
		case e2 < e1:
			g2.add(next)
		default:
			a1 := g1.box.Expand(bb).Area()
			a2 := g2.box.Expand(bb).Area()
			switch {
			case a1 < a2:
				g1.add(next)
			case a2 < a1:
				g2.add(next)
			case rnd.Intn(2) == 0:
				g1.add(next)
			default:
				g2.add(next)
			}
		}
	}
	assertThat(g1.len() >= 1 && g2.len() >= 1, "split produced an empty group")
	return g1, g2
}

// pickSeeds returns the indices of the two split seeds: per axis, the member
// with the maximum lower bound and the member with the minimum upper bound
// form the most separated pair; the axis with the larger normalized
// separation wins, x on ties.
func pickSeeds[M bounded](members []M) (int, int) {
	sx, lx, rx := axisSeparation(members, func(b geom.Box) (float32, float32) { return b.X, b.X2 })
	sy, ly, ry := axisSeparation(members, func(b geom.Box) (float32, float32) { return b.Y, b.Y2 })
	left, right := lx, rx
	if sy > sx {
		left, right = ly, ry
	}
	if left == right {
		// degenerate member set; fall back to an arbitrary distinct pair
		left, right = 0, 1
	}
	return left, right
}

// axisSeparation computes (maxLower − minUpper) / (maxUpper − minLower) over
// the members' projection intervals on one axis, together with the indices of
// the extreme members. A zero-width axis contributes no separation.
func axisSeparation[M bounded](members []M, project func(geom.Box) (lo, hi float32)) (sep float32, left, right int) {
	lo, hi := project(members[0].BoundingBox())
	minLower, maxLower := lo, lo
	minUpper, maxUpper := hi, hi
	for i := 1; i < len(members); i++ {
		lo, hi = project(members[i].BoundingBox())
		if lo > maxLower {
			maxLower = lo
			right = i
		}
		if lo < minLower {
			minLower = lo
		}
		if hi < minUpper {
			minUpper = hi
			left = i
		}
		if hi > maxUpper {
			maxUpper = hi
		}
	}
	if maxUpper == minLower {
		return 0, 0, 1
	}
	return (maxLower - minUpper) / (maxUpper - minLower), left, right
}
