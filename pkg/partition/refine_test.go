package partition

import (
	"testing"
)

func TestRefineImprovesAlternatingPath(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	part := []int{0, 1, 0, 1} // cut 3, worst case for a path

	cut := refinePartition(g, part, 2, []int64{3, 3}, nil, DefaultMaxPasses, testLogger())
	if cut != 1 {
		t.Errorf("cut = %d, want 1", cut)
	}
	recount, err := g.EdgeCut(part)
	if err != nil {
		t.Fatalf("EdgeCut: %v", err)
	}
	if recount != cut {
		t.Errorf("reported cut %d != recomputed %d", cut, recount)
	}
	sizes := partSizes(part, 2)
	if sizes[0] == 0 || sizes[1] == 0 || max(sizes[0], sizes[1]) > 3 {
		t.Errorf("part sizes = %v, want both non-empty within cap 3", sizes)
	}
}

func TestRefineLeavesOptimumAlone(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	part := []int{0, 0, 1, 1}

	cut := refinePartition(g, part, 2, []int64{3, 3}, nil, DefaultMaxPasses, testLogger())
	if cut != 1 {
		t.Errorf("cut = %d, want 1", cut)
	}
	want := []int{0, 0, 1, 1}
	for v := range part {
		if part[v] != want[v] {
			t.Fatalf("optimal partition was disturbed: %v", part)
		}
	}
}

func TestRefineRespectsWeightCap(t *testing.T) {
	// The only cut-reducing move on a single edge would merge the parts,
	// which both the weight cap and the minimum count forbid.
	g := graphFromEdges(t, 2, [][2]int{{0, 1}})
	part := []int{0, 1}

	cut := refinePartition(g, part, 2, []int64{1, 1}, nil, DefaultMaxPasses, testLogger())
	if cut != 1 {
		t.Errorf("cut = %d, want 1", cut)
	}
	if part[0] == part[1] {
		t.Errorf("part = %v, a part was emptied", part)
	}
}

func TestRefineRespectsMinCounts(t *testing.T) {
	// Star around vertex 0. Leaves 4..6 would gain by joining the center
	// part, but a minimum count of 3 pins them where they are.
	g := graphFromEdges(t, 7, [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5}, {0, 6}})
	part := []int{0, 0, 0, 0, 1, 1, 1}

	cut := refinePartition(g, part, 2, []int64{7, 7}, []int{3, 3}, DefaultMaxPasses, testLogger())
	if cut != 3 {
		t.Errorf("cut = %d, want 3", cut)
	}
	sizes := partSizes(part, 2)
	if sizes[0] < 3 || sizes[1] < 3 {
		t.Errorf("part sizes = %v, violate the minimum of 3", sizes)
	}
}

func TestRefineZeroPassesIsNoop(t *testing.T) {
	g := graphFromEdges(t, 4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	part := []int{0, 1, 0, 1}

	cut := refinePartition(g, part, 2, []int64{3, 3}, nil, 0, testLogger())
	if cut != 3 {
		t.Errorf("cut = %d, want the untouched cut 3", cut)
	}
	want := []int{0, 1, 0, 1}
	for v := range part {
		if part[v] != want[v] {
			t.Fatalf("partition changed with zero passes: %v", part)
		}
	}
}
