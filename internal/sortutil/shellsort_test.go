package sortutil_test

import (
	"math/rand"
	"testing"

	"github.com/jetsetilly/symtrace/internal/sortutil"
	"github.com/jetsetilly/symtrace/test"
)

func TestSliceSortsPermutation(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 7, 8, 63, 64, 1000, 10000}
	r := rand.New(rand.NewSource(1))

	for _, n := range sizes {
		orig := make([]int, n)
		for i := range orig {
			orig[i] = r.Intn(1 << 20)
		}

		got := append([]int(nil), orig...)
		sortutil.Slice(got, func(a, b int) bool { return a < b })

		test.ExpectSuccess(t, sortutil.IsSorted(got, func(a, b int) bool { return a < b }))

		// permutation check: same multiset of values
		count := make(map[int]int, n)
		for _, v := range orig {
			count[v]++
		}
		for _, v := range got {
			count[v]--
		}
		for _, c := range count {
			test.Equate(t, c, 0)
		}
	}
}

func TestSliceEmptyAndSingle(t *testing.T) {
	var empty []int
	sortutil.Slice(empty, func(a, b int) bool { return a < b })
	test.Equate(t, len(empty), 0)

	one := []int{42}
	sortutil.Slice(one, func(a, b int) bool { return a < b })
	test.Equate(t, one[0], 42)
}

type record struct {
	addr uint64
	name string
}

func TestSliceOfStructs(t *testing.T) {
	recs := []record{
		{addr: 0x400, name: "c"},
		{addr: 0x100, name: "a"},
		{addr: 0x200, name: "b"},
	}
	sortutil.Slice(recs, func(a, b record) bool { return a.addr < b.addr })
	test.Equate(t, recs[0].name, "a")
	test.Equate(t, recs[1].name, "b")
	test.Equate(t, recs[2].name, "c")
}
