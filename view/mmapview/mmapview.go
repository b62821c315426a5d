// Package mmapview is view.View's default implementation: a read-only
// memory mapping of a file on disk, via github.com/edsrzf/mmap-go.
//
// Grounded on saferwall-pe's use of mmap-go to read PE files without
// copying the whole image into the Go heap first; this module needs the
// same property for the much larger ELF/Mach-O binaries and their
// separate debug files this package maps (spec.md §4.0's requirement
// that a View not copy more than requested).
package mmapview

import (
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/view"
)

// View maps a file read-only for its whole lifetime.
type View struct {
	f *os.File
	m mmap.MMap
}

var _ view.View = (*View)(nil)

// Open maps path read-only.
func Open(path string) (*View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Errorf(errs.ViewOpen, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errs.Errorf(errs.ViewOpen, path, err)
	}
	if info.Size() == 0 {
		// mmap-go rejects zero-length mappings; treat as an empty view
		// rather than failing the whole lookup.
		f.Close()
		return &View{}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errs.Errorf(errs.ViewOpen, path, err)
	}

	return &View{f: f, m: m}, nil
}

func (v *View) Len() int {
	return len(v.m)
}

func (v *View) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(v.m)) {
		return 0, errs.Errorf(errs.ViewRead, v.name(), "offset out of range")
	}
	n := copy(p, v.m[off:])
	if n < len(p) {
		return n, errs.Errorf(errs.ViewRange, off, off+int64(len(p)), len(v.m))
	}
	return n, nil
}

func (v *View) Slice(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(v.m)) {
		return nil, errs.Errorf(errs.ViewRange, off, off+n, len(v.m))
	}
	return v.m[off : off+n], nil
}

func (v *View) Close() error {
	var err error
	if v.m != nil {
		err = v.m.Unmap()
	}
	if v.f != nil {
		if cerr := v.f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (v *View) name() string {
	if v.f == nil {
		return "<unmapped>"
	}
	return v.f.Name()
}
