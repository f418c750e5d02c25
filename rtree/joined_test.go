package rtree

import (
	"testing"
)

func TestJoinedEmpty(t *testing.T) {
	j := emptyJoin[int]()
	if !j.isEmpty() {
		t.Error("expected emptyJoin to be empty, isn't")
	}
	if j.len() != 0 {
		t.Errorf("expected empty sequence to have length 0, has %d", j.len())
	}
	if s := j.slice(); len(s) != 0 {
		t.Errorf("expected empty sequence to materialize to nothing, got %v", s)
	}
}

func TestJoinedWrapAndOne(t *testing.T) {
	j := wrap([]int{1, 2, 3})
	if j.len() != 3 {
		t.Errorf("expected wrapped sequence to have length 3, has %d", j.len())
	}
	if wrap([]int{}) != nil {
		t.Error("expected wrapping an empty segment to be the empty sequence, isn't")
	}
	if s := one(7).slice(); len(s) != 1 || s[0] != 7 {
		t.Errorf("expected singleton [7], got %v", s)
	}
}

func TestJoinedConcatPreservesOrder(t *testing.T) {
	j := concat(concat(wrap([]int{1, 2}), one(3)), wrap([]int{4, 5}))
	want := []int{1, 2, 3, 4, 5}
	got := j.slice()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if j.len() != 5 {
		t.Errorf("expected length 5, has %d", j.len())
	}
}

func TestJoinedConcatWithEmpty(t *testing.T) {
	a := wrap([]int{1, 2})
	if concat(a, emptyJoin[int]()) != a {
		t.Error("expected concat with empty right to return left operand, doesn't")
	}
	if concat(emptyJoin[int](), a) != a {
		t.Error("expected concat with empty left to return right operand, doesn't")
	}
}

func TestJoinedEachVisitsInOrder(t *testing.T) {
	j := concat(one("a"), concat(one("b"), one("c")))
	var seen []string
	j.each(func(s string) {
		seen = append(seen, s)
	})
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Errorf("expected in-order visit [a b c], got %v", seen)
	}
}
