// Package mergesort implements a stable, iterative bottom-up merge sort.
package mergesort

// Sort sorts data stably by cmp and returns the sorted slice.
//
// Runs of width 1, 2, 4, ... are merged back and forth between data and one
// auxiliary buffer of the same length, so the result may be either slice.
// Equal elements keep their input order: the right run only wins when it is
// strictly smaller.
func Sort[T any](data []T, cmp func(a, b T) int) []T {
	n := len(data)
	if n <= 1 {
		return data
	}

	src := data
	dst := make([]T, n)

	for width := 1; width < n; width *= 2 {
		for lo := 0; lo < n; lo += 2 * width {
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRuns(dst, src, lo, mid, hi, cmp)
		}
		src, dst = dst, src
	}
	return src
}

// mergeRuns merges src[lo:mid] and src[mid:hi] into dst[lo:hi].
func mergeRuns[T any](dst, src []T, lo, mid, hi int, cmp func(a, b T) int) {
	a, b, i := lo, mid, lo
	for a < mid && b < hi {
		if cmp(src[b], src[a]) < 0 {
			dst[i] = src[b]
			b++
		} else {
			dst[i] = src[a]
			a++
		}
		i++
	}
	i += copy(dst[i:], src[a:mid])
	copy(dst[i:], src[b:hi])
}
