// Package sortutil provides the in-place, non-recursive sort used wherever
// this module must order a table without allocating (spec.md §4.1): symbol
// shards, per-unit address-range tables, and the process-wide unit index.
//
// A shell sort is used rather than quicksort/introsort because it needs no
// recursion (so no additional stack depth inside a signal handler) and no
// scratch buffer: everything happens via swaps within the caller's slice.
// The gap sequence g <- (g/8)*3 | 1 matches the one used by libbacktrace,
// which this module's core pipeline is grounded on (see DESIGN.md); it
// keeps the number of passes close to quicksort's for the sizes this module
// ever sorts (symbol tables rarely exceed a few hundred thousand entries).
package sortutil

// Sort performs an in-place shell sort over n elements addressed only
// through less and swap, so it works for any element representation
// (structs of arbitrary size, parallel arrays, etc.) without the caller
// handing over a slice of a concrete type.
//
// less(i, j) must report whether the element at i sorts strictly before
// the element at j. swap(i, j) must exchange them. Sort is not stable.
func Sort(n int, less func(i, j int) bool, swap func(i, j int)) {
	if n < 2 {
		return
	}

	gap := n
	for gap > 1 {
		gap = (gap/8)*3 | 1
		for i := gap; i < n; i++ {
			j := i
			for j >= gap && less(j, j-gap) {
				swap(j, j-gap)
				j -= gap
			}
		}
	}
}

// Slice is a convenience wrapper around Sort for the common case of a
// concrete slice and a caller-supplied comparator. The comparator is a
// boolean less-than function, not a three-way (negative/zero/positive)
// comparison.
func Slice[T any](s []T, less func(a, b T) bool) {
	Sort(len(s),
		func(i, j int) bool { return less(s[i], s[j]) },
		func(i, j int) { s[i], s[j] = s[j], s[i] },
	)
}

// IsSorted reports whether s is ordered according to less. Used by tests to
// verify the sort-correctness invariant from spec.md §8.1.
func IsSorted[T any](s []T, less func(a, b T) bool) bool {
	for i := 1; i < len(s); i++ {
		if less(s[i], s[i-1]) {
			return false
		}
	}
	return true
}
