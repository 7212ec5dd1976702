package partition

// gainBuckets is the refiner's priority structure: one intrusive
// doubly-linked list of vertices per distinct gain value, indexed by
// gain+offset, with lazy tracking of the highest non-empty bucket. All
// operations are O(1) except popMax, which scans downward from the current
// maximum.
type gainBuckets struct {
	offset int
	heads  []int
	next   []int
	prev   []int
	gain   []int64
	in     []bool
	maxIdx int
}

// newGainBuckets sizes the structure for n vertices and gains in
// [-maxGain, maxGain].
func newGainBuckets(n int, maxGain int64) *gainBuckets {
	b := &gainBuckets{
		offset: int(maxGain),
		heads:  make([]int, 2*int(maxGain)+1),
		next:   make([]int, n),
		prev:   make([]int, n),
		gain:   make([]int64, n),
		in:     make([]bool, n),
		maxIdx: -1,
	}
	for i := range b.heads {
		b.heads[i] = -1
	}
	return b
}

// reset empties all buckets.
func (b *gainBuckets) reset() {
	for i := range b.heads {
		b.heads[i] = -1
	}
	for i := range b.in {
		b.in[i] = false
	}
	b.maxIdx = -1
}

// insert adds vertex v with the given gain. v must not be present.
func (b *gainBuckets) insert(v int, gain int64) {
	idx := int(gain) + b.offset
	b.gain[v] = gain
	b.in[v] = true
	b.prev[v] = -1
	b.next[v] = b.heads[idx]
	if b.heads[idx] >= 0 {
		b.prev[b.heads[idx]] = v
	}
	b.heads[idx] = v
	if idx > b.maxIdx {
		b.maxIdx = idx
	}
}

// update moves v to the bucket for the given gain, inserting it if absent.
func (b *gainBuckets) update(v int, gain int64) {
	if b.in[v] {
		b.unlink(v)
	}
	b.insert(v, gain)
}

// drop removes v if present.
func (b *gainBuckets) drop(v int) {
	if b.in[v] {
		b.unlink(v)
		b.in[v] = false
	}
}

func (b *gainBuckets) unlink(v int) {
	idx := int(b.gain[v]) + b.offset
	if b.prev[v] >= 0 {
		b.next[b.prev[v]] = b.next[v]
	} else {
		b.heads[idx] = b.next[v]
	}
	if b.next[v] >= 0 {
		b.prev[b.next[v]] = b.prev[v]
	}
}

// popMax removes and returns the highest-gain vertex accepted by the
// callback. Rejected vertices stay in place. Within a bucket vertices are
// visited in most-recently-inserted order, so the scan is deterministic.
func (b *gainBuckets) popMax(accept func(v int) bool) (int, bool) {
	for b.maxIdx >= 0 && b.heads[b.maxIdx] < 0 {
		b.maxIdx--
	}
	for idx := b.maxIdx; idx >= 0; idx-- {
		for v := b.heads[idx]; v >= 0; v = b.next[v] {
			if accept(v) {
				b.unlink(v)
				b.in[v] = false
				return v, true
			}
		}
	}
	return -1, false
}
