// Package symtrace implements C10 from spec.md §4.8: a process-wide
// state registry holding the chain of loaded modules' symbol tables and
// DWARF indices, and the pc_full/pc_symbol/pc_print query surface
// (spec.md §6).
//
// Grounded on the teacher's coprocessor/developer package (its State
// type under a different name holds the live ELF/DWARF state for a
// single emulated ARM core); this package generalises that shape to an
// arbitrary number of concurrently-loaded host modules, using
// alloc.List for the lock-free registry spec.md §4.8 describes.
package symtrace

import (
	"fmt"
	"io"

	"github.com/jetsetilly/symtrace/alloc"
	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/logger"
)

// Frame is one resolved stack frame: spec.md §6's
// frame_callback(pc, file, line, function) rendered as a value type,
// plus the fields this module's inline-chain and symbol-fallback
// support add.
type Frame struct {
	Address  uint64
	Function string
	File     string
	Line     int
	Column   int
	IsInline bool
}

// FrameCallback is the Go rendering of spec.md §6's frame_callback. It
// is invoked once per frame of an inline chain, innermost frame first,
// per spec.md §5's ordering guarantee. Returning true stops further
// delivery for the current query, the Go equivalent of libbacktrace's
// "nonzero return stops the unwind".
type FrameCallback func(f Frame) (stop bool)

// SymbolCallback is the Go rendering of spec.md §6's symbol_callback.
type SymbolCallback func(pc uint64, name string, value, size uint64)

// State is the long-lived, process-wide registry spec.md §4 describes:
// the allocator, the signal-safety flag, the module chain, and the
// error callback. Create one with CreateState; there is no explicit
// teardown (spec.md §5: "destroyed at process exit").
type State struct {
	cfg config

	modules alloc.List // each node's value is *Module

	general    alloc.General
	signalSafe *alloc.SignalSafe
}

// CreateState opens path as the primary module and returns a State
// tracking it, applying opts (spec.md §6's create_state). base is the
// module's runtime load address, 0 for a non-PIE primary executable.
func CreateState(path string, base uint64, opts ...Option) (*State, error) {
	cfg := newConfig()
	for _, o := range opts {
		o(&cfg)
	}

	s := &State{cfg: cfg}
	if cfg.signalSafe {
		s.signalSafe = alloc.NewSignalSafe(cfg.arenaSize)
	}

	if err := s.AddModule(path, base); err != nil {
		return nil, err
	}
	return s, nil
}

// AddModule loads an additional module (typically a shared library)
// into the registry, inserting it at the head of the module chain with
// alloc.List.Prepend's compare-and-swap, whatever WithThreadSafety was
// set to (a CAS retry loop is harmless even under single-threaded use).
func (s *State) AddModule(path string, base uint64) error {
	m, err := loadModule(path, base, s.cfg)
	if err != nil {
		return err
	}
	s.modules.Prepend(m)
	logger.Logf("symtrace", "loaded module %s at base %#x", path, base)
	return nil
}

// PCFull resolves pc to its full inline-aware call chain and delivers
// each frame, innermost first, to cb. It returns true iff at least one
// frame was delivered (spec.md §6's "nonzero iff at least one frame").
func (s *State) PCFull(pc uint64, cb FrameCallback) bool {
	delivered := false

	s.modules.Range(func(v interface{}) bool {
		m := v.(*Module)
		if m.dwarf == nil {
			return true // keep looking at other modules
		}
		frames, err := m.dwarf.Lookup(pc)
		if err != nil {
			s.cfg.onError(errs.FormatError("%s: %v", m.path, err))
			return true
		}
		if len(frames) == 0 {
			return true
		}

		m.stats.DwarfHits++
		delivered = true
		for _, fr := range frames {
			stop := cb(Frame{
				Address:  pc,
				Function: s.demangle(fr.Function),
				File:     fr.File,
				Line:     fr.Line,
				Column:   fr.Column,
				IsInline: fr.IsInline,
			})
			if stop {
				break
			}
		}
		return false // found a hit, stop scanning further modules
	})

	if !delivered {
		// spec.md §4.8: "misses fall through to symbol lookup so that
		// stripped modules still yield function names" — a bare symbol
		// is still a one-frame, file/line-less "full" result.
		s.PCSymbol(pc, func(pc uint64, name string, value, size uint64) {
			cb(Frame{Address: pc, Function: name})
			delivered = true
		})
	}

	return delivered
}

// PCSymbol resolves pc against each module's symbol table (falling back
// to its .map file, when one was found, per SPEC_FULL.md's supplemented
// map-file fallback) and delivers the first hit to cb.
func (s *State) PCSymbol(pc uint64, cb SymbolCallback) {
	s.modules.Range(func(v interface{}) bool {
		m := v.(*Module)

		if m.symbols != nil {
			if sym, ok := m.symbols.Lookup(pc); ok {
				m.stats.SymtabHits++
				cb(pc, s.demangle(sym.Name), sym.Addr, sym.Size)
				return false
			}
		}
		if m.mapNames != nil {
			if name, ok := m.mapNames.Lookup(pc); ok {
				m.stats.MapHits++
				cb(pc, s.demangle(name), 0, 0)
				return false
			}
		}
		m.stats.Misses++
		return true
	})
}

// PCPrint is a convenience composition of PCFull and PCSymbol, writing
// one line per resolved frame to w, or a bare address when nothing
// resolves at all (spec.md §6's pc_print).
func (s *State) PCPrint(pc uint64, w io.Writer) {
	any := s.PCFull(pc, func(f Frame) bool {
		if f.File != "" {
			fmt.Fprintf(w, "%#016x %s\n\tat %s:%d\n", f.Address, f.Function, f.File, f.Line)
		} else {
			fmt.Fprintf(w, "%#016x %s\n", f.Address, f.Function)
		}
		return false
	})
	if !any {
		fmt.Fprintf(w, "%#016x ??\n", pc)
	}
}

func (s *State) demangle(name string) string {
	if s.cfg.demangler == nil || name == "" {
		return name
	}
	return s.cfg.demangler.Demangle(name)
}
