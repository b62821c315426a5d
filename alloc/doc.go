// Package alloc implements component C2 from spec.md §4.1/§5: the
// two-pool allocation contract every other package builds state out of.
//
// The "general" pool is an ordinary growable arena backed by the Go
// heap, used while a module is first being loaded and parsed - normal
// allocation rules apply, and failure just means out of memory. The
// "signal-safe" pool is a fixed-size arena carved out ahead of time
// (WithArenaSize, see the root package's options.go) and handed out via
// a single atomic bump pointer, so it can be used from a handler that
// interrupted the runtime at an arbitrary point (spec.md §5's
// requirement that lookups remain usable after a crash signal): no
// mutex, no call into the Go allocator, no heap growth.
//
// Grounded on spec.md §5's description of libbacktrace's backtrace_alloc
// / backtrace_vector, translated into Go's memory model: sync/atomic's
// CAS primitives stand in for the C implementation's GCC builtin atomics,
// and the signal-safe pool is pre-sized Go memory (a []byte obtained
// once, outside the signal path) rather than a syscall-level mmap, since
// this module's signal-safety requirement is about avoiding the runtime
// allocator mid-handler, not about surviving without a runtime at all.
package alloc
