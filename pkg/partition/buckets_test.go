package partition

import "testing"

func acceptAll(int) bool { return true }

func TestGainBucketsPopOrder(t *testing.T) {
	b := newGainBuckets(5, 10)
	b.insert(0, -3)
	b.insert(1, 7)
	b.insert(2, 0)
	b.insert(3, 7)
	b.insert(4, 2)

	// Highest gain first; within a bucket, most recently inserted first.
	want := []int{3, 1, 4, 2, 0}
	for _, w := range want {
		v, ok := b.popMax(acceptAll)
		if !ok {
			t.Fatalf("popMax exhausted early, want %d next", w)
		}
		if v != w {
			t.Fatalf("popMax = %d, want %d", v, w)
		}
	}
	if _, ok := b.popMax(acceptAll); ok {
		t.Error("popMax should report empty")
	}
}

func TestGainBucketsUpdate(t *testing.T) {
	b := newGainBuckets(3, 5)
	b.insert(0, 1)
	b.insert(1, 2)

	b.update(1, -4) // demote
	b.update(2, 3)  // insert via update

	if v, _ := b.popMax(acceptAll); v != 2 {
		t.Fatalf("popMax = %d, want 2", v)
	}
	if v, _ := b.popMax(acceptAll); v != 0 {
		t.Fatalf("popMax = %d, want 0", v)
	}
	if v, _ := b.popMax(acceptAll); v != 1 {
		t.Fatalf("popMax = %d, want 1", v)
	}
}

func TestGainBucketsDrop(t *testing.T) {
	b := newGainBuckets(3, 5)
	b.insert(0, 4)
	b.insert(1, 4)
	b.insert(2, 1)

	b.drop(0)
	b.drop(0) // dropping an absent vertex is a no-op

	if v, _ := b.popMax(acceptAll); v != 1 {
		t.Fatalf("popMax = %d, want 1", v)
	}
	if v, _ := b.popMax(acceptAll); v != 2 {
		t.Fatalf("popMax = %d, want 2", v)
	}
	if _, ok := b.popMax(acceptAll); ok {
		t.Error("popMax should report empty")
	}
}

func TestGainBucketsAcceptSkips(t *testing.T) {
	b := newGainBuckets(4, 5)
	b.insert(0, 5)
	b.insert(1, 3)
	b.insert(2, 3)

	v, ok := b.popMax(func(v int) bool { return v != 0 && v != 2 })
	if !ok || v != 1 {
		t.Fatalf("popMax = %d, %v, want vertex 1", v, ok)
	}

	// Rejected vertices stay available for later pops.
	if v, _ := b.popMax(acceptAll); v != 0 {
		t.Fatalf("popMax = %d, want 0", v)
	}
	if v, _ := b.popMax(acceptAll); v != 2 {
		t.Fatalf("popMax = %d, want 2", v)
	}
}

func TestGainBucketsReset(t *testing.T) {
	b := newGainBuckets(2, 3)
	b.insert(0, 2)
	b.insert(1, -1)
	b.reset()

	if _, ok := b.popMax(acceptAll); ok {
		t.Error("popMax after reset should report empty")
	}
	b.insert(1, 0)
	if v, ok := b.popMax(acceptAll); !ok || v != 1 {
		t.Errorf("popMax = %d, %v, want vertex 1", v, ok)
	}
}
