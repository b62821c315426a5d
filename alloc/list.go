package alloc

import (
	"sync/atomic"
	"unsafe"
)

// node is one entry of the process-wide module list (spec.md §4.10's
// registry): a lock-free singly-linked list readers walk without ever
// taking a lock, and writers extend by CAS-ing a new head in, matching
// libbacktrace's fileline_initialize list of loaded modules.
type node struct {
	value interface{}
	next  unsafe.Pointer // *node
}

// List is a lock-free, append-only singly-linked list: concurrent
// Prepend calls race via CAS, and concurrent Range calls never block,
// since existing nodes are never mutated or removed once linked in.
// Built on sync/atomic directly rather than a generic container from the
// example pack because no pack repo implements a lock-free list; this is
// the one structure in this module hand-rolled straight from spec.md
// §4.10's description of the registry's concurrency contract.
type List struct {
	head unsafe.Pointer // *node
}

// Prepend adds value to the front of the list. Safe to call
// concurrently, including from multiple goroutines racing to register
// different modules at once.
func (l *List) Prepend(value interface{}) {
	n := &node{value: value}
	for {
		old := atomic.LoadPointer(&l.head)
		n.next = old
		if atomic.CompareAndSwapPointer(&l.head, old, unsafe.Pointer(n)) {
			return
		}
	}
}

// Range calls f for every value currently linked, starting with the most
// recently prepended, stopping early if f returns false. It never
// allocates and never blocks, so it is safe to call from a signal
// handler once the list has been populated.
func (l *List) Range(f func(value interface{}) bool) {
	p := (*node)(atomic.LoadPointer(&l.head))
	for p != nil {
		if !f(p.value) {
			return
		}
		p = (*node)(atomic.LoadPointer(&p.next))
	}
}
