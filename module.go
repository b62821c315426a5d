package symtrace

import (
	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/debugfile"
	"github.com/jetsetilly/symtrace/internal/dwarf"
	"github.com/jetsetilly/symtrace/internal/mapfile"
	"github.com/jetsetilly/symtrace/internal/objfile"
	"github.com/jetsetilly/symtrace/internal/symtab"
	"github.com/jetsetilly/symtrace/logger"
	"github.com/jetsetilly/symtrace/view"
	"github.com/jetsetilly/symtrace/view/mmapview"
)

// Module is a loaded object file: its base address (post-ASLR), the
// views it owns, and the symbol/DWARF indices built from it (spec.md's
// "Module" type). A Module owns no view longer than necessary except
// the debug-section view, retained for the life of the process
// (spec.md §4's module description).
type Module struct {
	path string
	base uint64

	primaryView view.View
	debugView   view.View
	altView     view.View

	symbols  *symtab.Shard
	dwarf    *dwarf.Reader // nil if no usable DWARF was found
	mapNames *mapfile.Map  // nil if no .map sibling file was found

	stats ModuleStats
}

// ModuleStats tracks how a module's queries were actually answered, a
// read-side convenience absent from spec.md's core pipeline (see
// SPEC_FULL.md's "per-module statistics" supplement).
type ModuleStats struct {
	DwarfHits  int
	SymtabHits int
	MapHits    int
	Misses     int
}

// loadModule opens path, identifies its container format, resolves a
// companion debug file if one exists, and builds both the symbol shard
// and (when DWARF sections are present, directly or via the companion)
// the DWARF reader. base is the module's runtime load address; pass 0
// for a non-PIE primary executable.
func loadModule(path string, base uint64, cfg config) (*Module, error) {
	pv, err := mmapview.Open(path)
	if err != nil {
		cfg.onError(errs.IOError(err))
		return nil, err
	}

	primary, err := objfile.Open(pv)
	if err != nil {
		pv.Close()
		cfg.onError(errs.Report{Kind: errs.Format, Msg: err.Error()})
		return nil, err
	}

	m := &Module{path: path, base: base, primaryView: pv}

	symbols, err := symtab.Build(primary, base)
	if err != nil {
		cfg.onError(errs.Report{Kind: errs.Format, Msg: err.Error()})
	} else {
		m.symbols = symbols
	}

	debugFile, debugView, altView, err := resolveDebugSource(primary, path, cfg)
	if err != nil {
		cfg.onError(errs.Report{Kind: errs.Missing, Errnum: errs.ErrnoMissing, Msg: err.Error()})
		logger.Logf("symtrace", "module %s: no DWARF source (%v)", path, err)
	}
	m.debugView = debugView
	m.altView = altView

	if debugFile != nil {
		sec, err := loadDWARFSections(debugFile)
		if err != nil {
			cfg.onError(errs.FormatError("%s: %v", path, err))
		} else {
			if altView != nil {
				if altFile, err := objfile.Open(altView); err == nil {
					if altSec, err := loadDWARFSections(altFile); err == nil {
						sec.Alt = altSec
					}
				}
			}
			reader, err := dwarf.NewReader(sec)
			if err != nil {
				cfg.onError(errs.FormatError("%s: %v", path, err))
			} else {
				m.dwarf = reader
			}
		}
	}

	if mp, err := mapfile.Load(path); err == nil {
		m.mapNames = mp
	}

	return m, nil
}

// resolveDebugSource runs internal/debugfile's search order and returns
// whichever object file actually carries usable DWARF — the primary
// file itself, or a resolved companion — plus the views that must be
// kept open for the life of the module.
func resolveDebugSource(primary objfile.File, path string, cfg config) (objfile.File, view.View, view.View, error) {
	if hasDebugSections(primary) {
		return primary, nil, nil, nil
	}

	res, err := debugfile.Resolve(primary, path, cfg.debugDirs...)
	if err != nil || res == nil || res.File == nil {
		return nil, nil, nil, errs.Errorf(errs.DebugfileNotFound, path)
	}

	var dv, av view.View
	if res.Path != "" && res.Path != path {
		if opened, openErr := mmapview.Open(res.Path); openErr == nil {
			dv = opened
		}
	}
	if res.AltPath != "" {
		if opened, openErr := mmapview.Open(res.AltPath); openErr == nil {
			av = opened
		}
	}

	return res.File, dv, av, nil
}

func hasDebugSections(f objfile.File) bool {
	if _, ok := objfile.DebugSection(f, ".debug_info"); ok {
		return true
	}
	// a companion file built without an explicit .debug_info canonical
	// name (seen on some stripped-then-reassembled binaries) still
	// counts if it carries any other recognised debug section.
	for _, s := range f.Sections() {
		if objfile.IsDebugSectionName(s.Name) {
			return true
		}
	}
	return false
}

func loadDWARFSections(f objfile.File) (*dwarf.Sections, error) {
	get := func(name string) ([]byte, error) {
		s, ok := objfile.DebugSection(f, name)
		if !ok {
			return nil, nil
		}
		return f.SectionData(s)
	}

	sec := &dwarf.Sections{Order: f.ByteOrder()}
	var err error
	if sec.Info, err = get(".debug_info"); err != nil {
		return nil, err
	}
	if sec.Abbrev, err = get(".debug_abbrev"); err != nil {
		return nil, err
	}
	if sec.Str, err = get(".debug_str"); err != nil {
		return nil, err
	}
	if sec.LineStr, err = get(".debug_line_str"); err != nil {
		return nil, err
	}
	if sec.Line, err = get(".debug_line"); err != nil {
		return nil, err
	}
	if sec.StrOffsets, err = get(".debug_str_offsets"); err != nil {
		return nil, err
	}
	if sec.Addr, err = get(".debug_addr"); err != nil {
		return nil, err
	}
	if sec.RngLists, err = get(".debug_rnglists"); err != nil {
		return nil, err
	}
	if sec.Ranges, err = get(".debug_ranges"); err != nil {
		return nil, err
	}
	return sec, nil
}

// Close releases every view this module retained. Not part of spec.md's
// core API (the spec has no explicit teardown, per §5's "destroyed at
// process exit" model) but provided for callers that load and discard
// modules within a single long-running process.
func (m *Module) Close() error {
	var first error
	for _, v := range []view.View{m.primaryView, m.debugView, m.altView} {
		if v == nil {
			continue
		}
		if err := v.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
