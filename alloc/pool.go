package alloc

import (
	"sync/atomic"

	"github.com/jetsetilly/symtrace/errs"
)

// General is the unbounded, heap-backed pool used while parsing a
// module's debug information. It exists mainly so call sites read the
// same way regardless of which pool they're drawing from; it never
// fails other than returning an error in place of panicking on an
// absurd size, since this module never runs with GOGC disabled.
type General struct{}

func (General) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errs.Errorf(errs.StateAllocDenied)
	}
	return make([]byte, n), nil
}

// SignalSafe is a fixed-size arena allocated once (outside any signal
// handler) and handed out via lock-free CAS bumps of an offset, so
// concurrent readers - including one running inside a signal handler -
// can allocate scratch space without taking a lock or touching the Go
// runtime's allocator (spec.md §5).
type SignalSafe struct {
	buf    []byte
	offset uint64 // atomically updated bump pointer
}

// NewSignalSafe carves out an arena of size bytes. This must be called
// from ordinary (non-signal) code; the returned pool's Alloc method is
// the only signal-safe operation.
func NewSignalSafe(size int) *SignalSafe {
	return &SignalSafe{buf: make([]byte, size)}
}

// Alloc reserves n bytes from the arena via a single CAS loop. It never
// blocks, never allocates, and is safe to call concurrently, including
// from within a signal handler. It returns an error (StateAllocDenied)
// rather than growing the arena when capacity is exhausted.
func (p *SignalSafe) Alloc(n int) ([]byte, error) {
	if n < 0 {
		return nil, errs.Errorf(errs.StateAllocDenied)
	}
	for {
		old := atomic.LoadUint64(&p.offset)
		next := old + uint64(n)
		if next > uint64(len(p.buf)) {
			return nil, errs.Errorf(errs.StateAllocDenied)
		}
		if atomic.CompareAndSwapUint64(&p.offset, old, next) {
			return p.buf[old:next:next], nil
		}
	}
}

// Reset rewinds the bump pointer to zero. Callers must guarantee no
// concurrent reader still holds a slice from this arena before calling
// Reset; it exists for tests and for reusing an arena across a full
// module reload, not for use mid-query.
func (p *SignalSafe) Reset() {
	atomic.StoreUint64(&p.offset, 0)
}

// Cap reports the arena's total size.
func (p *SignalSafe) Cap() int {
	return len(p.buf)
}

// Used reports how much of the arena has been handed out so far.
func (p *SignalSafe) Used() int {
	return int(atomic.LoadUint64(&p.offset))
}
