package rtree

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imclab/archery/geom"
)

// randomTree builds a reproducible tree with a low fan-out so that queries
// traverse several levels, together with the flat list of its entries.
func randomTree(seed int64, n int) (Tree[int], []Entry[int]) {
	tree := New[int](Fanout(4), Seed(seed))
	rnd := rand.New(rand.NewSource(seed))
	entries := make([]Entry[int], n)
	for i := range entries {
		entries[i] = Entry[int]{P: geom.P(rnd.Float32()*100, rnd.Float32()*100), Value: i}
	}
	return tree.InsertAll(entries), entries
}

func TestSearchNonFiniteSpace(t *testing.T) {
	tree, _ := randomTree(3, 50)
	if hits := tree.Search(geom.Empty()); hits != nil {
		t.Errorf("expected no hits for the empty box, got %v", hits)
	}
	if hits := tree.Search(geom.B(10, 10, 0, 0)); hits != nil {
		t.Errorf("expected no hits for an inverted box, got %v", hits)
	}
}

func TestSearchIncludesBoundary(t *testing.T) {
	tree := New[string](Seed(1)).Insert(geom.P(5, 5), "edge")
	if hits := tree.Search(geom.B(5, 5, 10, 10)); len(hits) != 1 {
		t.Error("expected a point on the space's corner to be found, isn't")
	}
}

func TestSearchAgainstBruteForce(t *testing.T) {
	tree, entries := randomTree(11, 300)
	rnd := rand.New(rand.NewSource(99))
	for i := 0; i < 50; i++ {
		x, y := rnd.Float32()*100, rnd.Float32()*100
		space := geom.B(x, y, x+rnd.Float32()*40, y+rnd.Float32()*40)
		want := map[int]bool{}
		for _, e := range entries {
			if space.ContainsPoint(e.P) {
				want[e.Value] = true
			}
		}
		hits := tree.Search(space)
		if len(hits) != len(want) {
			t.Fatalf("space %v: expected %d hits, got %d", space, len(want), len(hits))
		}
		for _, h := range hits {
			if !want[h.Value] {
				t.Fatalf("space %v: unexpected hit %v", space, h)
			}
		}
		if n := tree.Count(space); n != len(want) {
			t.Fatalf("space %v: expected count %d, got %d", space, len(want), n)
		}
	}
}

func TestNearestAgainstBruteForce(t *testing.T) {
	tree, entries := randomTree(23, 300)
	rnd := rand.New(rand.NewSource(5))
	for i := 0; i < 50; i++ {
		p := geom.P(rnd.Float32()*120-10, rnd.Float32()*120-10)
		bestDist := float32(0)
		first := true
		for _, e := range entries {
			if d := e.P.DistTo(p); first || d < bestDist {
				bestDist, first = d, false
			}
		}
		e, ok := tree.Nearest(p).Get()
		if !ok {
			t.Fatalf("expected a nearest entry for %v, got Nothing", p)
		}
		if d := e.P.DistTo(p); d != bestDist {
			t.Fatalf("query %v: expected nearest distance %g, got %g (%v)", p, bestDist, d, e)
		}
	}
}

func TestNearestWithinIsExclusive(t *testing.T) {
	tree := New[string](Seed(1)).Insert(geom.P(3, 0), "a")
	if m := tree.NearestWithin(geom.P(0, 0), 3); m.IsJust() {
		t.Error("expected an entry at exactly the bound to be excluded, isn't")
	}
	if m := tree.NearestWithin(geom.P(0, 0), 3.001); !m.IsJust() {
		t.Error("expected an entry within the bound to be found, isn't")
	}
	if m := tree.NearestWithin(geom.P(5, 5), 0); m.IsJust() {
		t.Error("expected Nothing for a zero search radius, got an entry")
	}
}

func TestNearestKAgainstBruteForce(t *testing.T) {
	tree, entries := randomTree(31, 200)
	rnd := rand.New(rand.NewSource(17))
	for _, k := range []int{1, 3, 10, 200, 500} {
		p := geom.P(rnd.Float32()*100, rnd.Float32()*100)
		want := make([]float32, len(entries))
		for i, e := range entries {
			want[i] = e.P.DistTo(p)
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
		if k < len(want) {
			want = want[:k]
		}
		got := tree.NearestK(p, k)
		if len(got) != len(want) {
			t.Fatalf("k=%d: expected %d results, got %d", k, len(want), len(got))
		}
		for i, e := range got {
			if d := e.P.DistTo(p); d != want[i] {
				t.Fatalf("k=%d: distance multiset diverges at %d: %g vs %g", k, i, d, want[i])
			}
		}
	}
}

func TestNearestKOrderedAscending(t *testing.T) {
	tree, _ := randomTree(47, 100)
	p := geom.P(50, 50)
	got := tree.NearestK(p, 20)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].P.DistTo(p), got[i].P.DistTo(p),
			"results are not in ascending distance order")
	}
}

func TestNearestKMatchesNearest(t *testing.T) {
	tree, _ := randomTree(53, 150)
	p := geom.P(42, 17)
	top := tree.NearestK(p, 1)
	if len(top) != 1 {
		t.Fatalf("expected one result, got %d", len(top))
	}
	e, ok := tree.Nearest(p).Get()
	if !ok {
		t.Fatal("expected Nearest to find an entry, didn't")
	}
	if e.P.DistTo(p) != top[0].P.DistTo(p) {
		t.Errorf("expected Nearest and NearestK(…, 1) to agree, got %v vs %v", e, top[0])
	}
}

func TestNearestKScenarioLine(t *testing.T) {
	tree := New[int](Fanout(4), Seed(1))
	for i := 0; i < 10; i++ {
		tree = tree.Insert(geom.P(float32(i), 0), i)
	}
	got := tree.NearestK(geom.P(5, 0), 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	seen := map[int]bool{}
	for _, e := range got {
		seen[e.Value] = true
	}
	for _, want := range []int{4, 5, 6} {
		if !seen[want] {
			t.Errorf("expected x=%d among the 3 nearest to (5,0), got %v", want, got)
		}
	}
	if got[0].Value != 5 {
		t.Errorf("expected the coincident point first, got %v", got[0])
	}
}

func TestNearestKDegenerateArguments(t *testing.T) {
	tree, _ := randomTree(61, 20)
	if got := tree.NearestK(geom.P(0, 0), 0); got != nil {
		t.Errorf("expected k=0 to yield nothing, got %v", got)
	}
	if got := (Tree[int]{}).NearestK(geom.P(0, 0), 5); got != nil {
		t.Errorf("expected empty tree to yield nothing, got %v", got)
	}
}
