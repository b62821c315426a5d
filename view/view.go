// Package view implements component C1 from spec.md §4.0: the minimal
// read-only, random-access byte source every other component in this
// module is built on top of. A View never copies more than the caller
// asked for and never allocates on the signal-safe query path once it
// has been constructed, so it can be read from inside a signal handler
// (spec.md §5).
//
// Grounded on the teacher's coprocessor/developer/dwarf use of a single
// []byte slice of a loaded ELF image (elf_shim.go) generalised here into
// an interface so the default implementation (view/mmapview, backed by
// github.com/edsrzf/mmap-go) can be swapped for an in-memory slice in
// tests or for platforms where mmap isn't available.
package view

import "io"

// View is a read-only, randomly addressable byte source: a file mapped
// into memory, or a plain byte slice standing in for one.
type View interface {
	io.ReaderAt

	// Len returns the total addressable size in bytes.
	Len() int

	// Slice returns the bytes in [off, off+n) without copying, when the
	// underlying implementation can do so (mmapview always can; a
	// defensive copy is only needed by implementations backed by
	// something that isn't already contiguous in memory).
	Slice(off, n int64) ([]byte, error)

	// Close releases any resources (a memory mapping, an open file
	// descriptor) backing the view.
	Close() error
}

// Bytes adapts a plain in-memory []byte as a View, used by tests and by
// internal/debugfile's MiniDebugInfo path where the bytes already live in
// a freshly inflated buffer rather than a mapped file.
type Bytes []byte

func (b Bytes) Len() int { return len(b) }

func (b Bytes) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b Bytes) Slice(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(b)) {
		return nil, io.ErrUnexpectedEOF
	}
	return b[off : off+n], nil
}

func (b Bytes) Close() error { return nil }
