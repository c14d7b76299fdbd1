package extsort

// headEntry is the next unread record of one chunk.
type headEntry[T any] struct {
	value T
	chunk int // ordinal into the merge's reader slice
}

// headHeap is a binary min-heap of chunk heads ordered by cmp.
// Equal values are ordered by chunk ordinal so a re-merge of the same chunk
// set is byte-identical.
type headHeap[T any] struct {
	entries []headEntry[T]
	cmp     Compare[T]
}

func newHeadHeap[T any](capacity int, cmp Compare[T]) *headHeap[T] {
	return &headHeap[T]{
		entries: make([]headEntry[T], 0, capacity),
		cmp:     cmp,
	}
}

func (h *headHeap[T]) len() int {
	return len(h.entries)
}

// push adds an element and maintains heap property. O(log k).
func (h *headHeap[T]) push(e headEntry[T]) {
	h.entries = append(h.entries, e)
	h.up(len(h.entries) - 1)
}

// pop removes and returns the smallest entry. O(log k).
func (h *headHeap[T]) pop() headEntry[T] {
	n := len(h.entries) - 1
	h.swap(0, n)
	h.down(0, n)
	e := h.entries[n]
	var zero headEntry[T]
	h.entries[n] = zero // release string/slice values for GC
	h.entries = h.entries[:n]
	return e
}

// replaceTop overwrites the smallest entry and restores heap order. This is
// the common merge step (pop then push of the same chunk) in one sift.
func (h *headHeap[T]) replaceTop(e headEntry[T]) {
	h.entries[0] = e
	h.down(0, len(h.entries))
}

func (h *headHeap[T]) swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

func (h *headHeap[T]) less(i, j int) bool {
	if c := h.cmp(h.entries[i].value, h.entries[j].value); c != 0 {
		return c < 0
	}
	return h.entries[i].chunk < h.entries[j].chunk
}

func (h *headHeap[T]) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || !h.less(j, i) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *headHeap[T]) down(i, n int) {
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && h.less(j2, j1) {
			j = j2 // right child
		}
		if !h.less(j, i) {
			break
		}
		h.swap(i, j)
		i = j
	}
}
