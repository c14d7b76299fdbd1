package extsort

import (
	"math/rand/v2"
	"testing"
)

// TestHeadHeapPopOrder tests named deterministic cases for min-heap ordering
// with ascending-chunk tie-breaking.
func TestHeadHeapPopOrder(t *testing.T) {
	type entry struct {
		value int
		chunk int
	}
	tests := []struct {
		name   string
		input  []entry
		expect []entry // expected pop order
	}{
		{
			name:   "distinct_values",
			input:  []entry{{3, 0}, {7, 1}, {1, 2}, {5, 3}},
			expect: []entry{{1, 2}, {3, 0}, {5, 3}, {7, 1}},
		},
		{
			name:   "all_equal",
			input:  []entry{{4, 3}, {4, 0}, {4, 4}, {4, 1}, {4, 2}},
			expect: []entry{{4, 0}, {4, 1}, {4, 2}, {4, 3}, {4, 4}},
		},
		{
			name: "ties_mixed",
			input: []entry{
				{10, 5}, {10, 2}, {3, 7}, {3, 0}, {10, 9}, {3, 4},
			},
			expect: []entry{
				{3, 0}, {3, 4}, {3, 7},
				{10, 2}, {10, 5}, {10, 9},
			},
		},
		{
			name:   "single",
			input:  []entry{{42, 0}},
			expect: []entry{{42, 0}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHeadHeap(len(tc.input), Ascending[int]())
			for _, e := range tc.input {
				h.push(headEntry[int]{value: e.value, chunk: e.chunk})
			}
			for i, want := range tc.expect {
				got := h.pop()
				if got.value != want.value || got.chunk != want.chunk {
					t.Fatalf("pop[%d] = (value=%d, chunk=%d), want (value=%d, chunk=%d)",
						i, got.value, got.chunk, want.value, want.chunk)
				}
			}
			if h.len() != 0 {
				t.Fatalf("heap not empty after draining: len=%d", h.len())
			}
		})
	}
}

func TestHeadHeapReplaceTop(t *testing.T) {
	h := newHeadHeap(3, Ascending[int]())
	h.push(headEntry[int]{value: 1, chunk: 0})
	h.push(headEntry[int]{value: 5, chunk: 1})
	h.push(headEntry[int]{value: 3, chunk: 2})

	// Chunk 0 advances past both other heads.
	h.replaceTop(headEntry[int]{value: 9, chunk: 0})
	if top := h.entries[0]; top.value != 3 || top.chunk != 2 {
		t.Fatalf("top after replace = %+v, want {3 2}", top)
	}

	// Chunk 2 advances to a value equal to chunk 1's head; chunk 1 wins.
	h.replaceTop(headEntry[int]{value: 5, chunk: 2})
	want := []int{1, 2, 0}
	for i, w := range want {
		if got := h.pop(); got.chunk != w {
			t.Fatalf("pop[%d].chunk = %d, want %d", i, got.chunk, w)
		}
	}
}

func TestHeadHeapRandomized(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	h := newHeadHeap(0, Descending[int]())
	const n = 500
	for i := range n {
		h.push(headEntry[int]{value: rng.IntN(50), chunk: i})
	}

	prev := h.pop()
	for h.len() > 0 {
		cur := h.pop()
		if cur.value > prev.value || (cur.value == prev.value && cur.chunk < prev.chunk) {
			t.Fatalf("out of order: %+v after %+v", cur, prev)
		}
		prev = cur
	}
}

func TestHeadHeapPopReleasesSlot(t *testing.T) {
	h := newHeadHeap(2, Ascending[string]())
	h.push(headEntry[string]{value: "a", chunk: 0})
	h.push(headEntry[string]{value: "b", chunk: 1})
	h.pop()
	if tail := h.entries[:2][1]; tail.value != "" {
		t.Errorf("vacated slot still holds %q", tail.value)
	}
}
