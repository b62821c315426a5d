package dwarf

import (
	"sort"

	"github.com/jetsetilly/symtrace/internal/sortutil"
)

// Frame is one entry of an inline-aware call chain resolved for a PC:
// index 0 is the innermost (possibly inlined) function, and each
// subsequent entry is its caller, ending with the out-of-line
// DW_TAG_subprogram that was actually called (spec.md §4.6).
type Frame struct {
	Function string
	File     string
	Line     int
	Column   int
	IsInline bool
}

// funcRange is one subprogram or inlined-subroutine's address range,
// flattened out of every unit's DIE tree so the whole program can be
// searched with a single sorted table (spec.md §4.1's sort primitive,
// spec.md §4.6's lookup requirement).
type funcRange struct {
	low, high uint64
	die       *DIE
}

// Reader holds every compile unit parsed out of a module's DWARF
// sections, plus the flattened, sorted subprogram range table used to
// answer PC lookups in O(log n).
type Reader struct {
	units  []*unit
	ranges []funcRange
}

// NewReader parses every compile unit in sec and builds the PC lookup
// table. It does not parse every unit's full line program eagerly;
// Lookup resolves line numbers lazily per hit, since most programs
// only ever query a small fraction of their compile units' lines.
func NewReader(sec *Sections) (*Reader, error) {
	units, err := parseUnits(sec)
	if err != nil {
		return nil, err
	}

	r := &Reader{units: units}
	for _, u := range units {
		root, err := u.Root()
		if err != nil {
			return nil, err
		}
		Walk(root, func(d *DIE) {
			if d.Tag != TagSubprogram && d.Tag != TagInlinedSubroutine {
				return
			}
			rngs, err := d.PCRanges()
			if err != nil || len(rngs) == 0 {
				return
			}
			for _, rg := range rngs {
				r.ranges = append(r.ranges, funcRange{low: rg.Low, high: rg.High, die: d})
			}
		})
	}

	sortutil.Slice(r.ranges, func(a, b funcRange) bool { return a.low < b.low })
	return r, nil
}

// Lookup resolves pc to its innermost containing function, then walks
// outward through any enclosing DW_TAG_inlined_subroutine entries,
// producing an innermost-first call chain (spec.md §4.6's inline-chain
// requirement). It returns a nil, non-error result when pc matches no
// known range.
func (r *Reader) Lookup(pc uint64) ([]Frame, error) {
	die := r.findContaining(pc)
	if die == nil {
		return nil, nil
	}

	var chain []*DIE
	for d := die; d != nil; d = d.Parent {
		if d.Tag == TagSubprogram || d.Tag == TagInlinedSubroutine {
			chain = append(chain, d)
		}
		if d.Tag == TagSubprogram {
			break
		}
	}

	frames := make([]Frame, 0, len(chain))
	for i, d := range chain {
		name := functionName(d)
		file, line, col := r.lineForFrame(d, chain, i, pc)
		frames = append(frames, Frame{
			Function: name,
			File:     file,
			Line:     line,
			Column:   col,
			IsInline: d.Tag == TagInlinedSubroutine,
		})
	}
	return frames, nil
}

// findContaining returns the innermost DIE (by tightest address range)
// whose range contains pc. The table is sorted by low address only, so
// a binary search locates the last candidate that could possibly start
// at or before pc, and a bounded backward scan from there picks out
// whichever overlapping range is narrowest — inlined ranges nest
// inside their enclosing subprogram's range, so the narrowest match is
// always the innermost one. The scan is capped since DWARF producers
// never emit subprogram ranges so large they'd require scanning past
// this many candidates to find the true match.
const findContainingScanLimit = 4096

func (r *Reader) findContaining(pc uint64) *DIE {
	i := sort.Search(len(r.ranges), func(i int) bool { return r.ranges[i].low > pc })

	var best *funcRange
	scanned := 0
	for j := i - 1; j >= 0 && scanned < findContainingScanLimit; j-- {
		scanned++
		rg := &r.ranges[j]
		if pc < rg.low || pc >= rg.high {
			continue
		}
		if best == nil || (rg.high-rg.low) < (best.high-best.low) {
			best = rg
		}
	}
	if best == nil {
		return nil
	}
	return best.die
}

// FunctionAddresses returns the low address of every range (subprogram
// or inlined-subroutine instance) resolving to the given function name,
// the basis for CallersOf (SPEC_FULL.md's caller-enumeration supplement).
func (r *Reader) FunctionAddresses(name string) []uint64 {
	var out []uint64
	for _, rg := range r.ranges {
		if functionName(rg.die) == name {
			out = append(out, rg.low)
		}
	}
	return out
}

// LinesInRange returns every line-table row across every compile unit
// whose address falls in [lo, hi), sorted by address. It is the basis
// for a batched address-range query (SPEC_FULL.md's
// PCRangeFileLines): the same per-unit line index Lookup uses, queried
// in bulk instead of one address at a time.
func (r *Reader) LinesInRange(lo, hi uint64) []LineEntry {
	var out []LineEntry
	for _, u := range r.units {
		u.ensureLines()
		for _, e := range u.lineEntries {
			if e.EndSeq || e.Address < lo || e.Address >= hi {
				continue
			}
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// functionName resolves a subprogram or inlined-subroutine's display
// name, following DW_AT_abstract_origin/DW_AT_specification when the
// DIE itself carries no DW_AT_name (common for inlined instances,
// DWARF5 §3.3.8.1).
func functionName(d *DIE) string {
	if n := d.Name(); n != "" {
		return n
	}
	if origin := d.Ref(AttrAbstractOrigin); origin != nil {
		return functionName(origin)
	}
	if origin := d.Ref(AttrSpecification); origin != nil {
		return functionName(origin)
	}
	return ""
}

// lineForFrame resolves the source position attributed to chain[i]:
// for the innermost frame this is pc's own row in the line table; for
// an enclosing (caller) frame it is the call site recorded on the
// frame just inside it, via DW_AT_call_file/DW_AT_call_line.
func (r *Reader) lineForFrame(d *DIE, chain []*DIE, i int, pc uint64) (string, int, int) {
	if i == 0 {
		return d.unit.lineAt(pc)
	}
	inner := chain[i-1]
	line, _ := inner.Uint(AttrCallLine)
	col, _ := inner.Uint(AttrCallColumn)
	fileIdx, _ := inner.Uint(AttrCallFile)
	return d.unit.fileName(int(fileIdx)), int(line), int(col)
}
