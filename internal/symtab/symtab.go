package symtab

import (
	"encoding/binary"
	"sort"

	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/objfile"
	"github.com/jetsetilly/symtrace/internal/sortutil"
)

// entry is one (address, size, name) tuple, already relocated by the
// module's load base.
type entry struct {
	addr uint64
	size uint64
	name string
}

// Shard is an immutable, address-sorted symbol table for one module, the
// unit alloc.List chains together under symtrace's state registry
// (spec.md §4's "symbol shard" description). A sentinel entry one past
// the real end lets Lookup probe entry[i+1].addr without a bounds check.
type Shard struct {
	entries []entry
}

// Symbol is the result of a successful Lookup.
type Symbol struct {
	Name   string
	Addr   uint64
	Size   uint64
	Offset uint64 // pc - Addr
}

// Build scans f's symbol table, keeps only function and object symbols,
// relocates each by base (zero for a non-PIE primary executable), and
// returns the sorted shard (spec.md §4.7).
//
// When f's sections include a PowerPC64 ELFv1 .opd, a symbol whose value
// falls inside it is a function descriptor: its real entry point is the
// first address-sized word at that file offset, not the descriptor's own
// address, so Build resolves that indirection before sorting.
func Build(f objfile.File, base uint64) (*Shard, error) {
	syms, err := f.Symbols()
	if err != nil {
		return nil, err
	}

	opd, hasOpd := f.Section(".opd")
	var opdData []byte
	if hasOpd {
		opdData, err = f.SectionData(opd)
		if err != nil {
			hasOpd = false
		}
	}

	entries := make([]entry, 0, len(syms))
	for _, s := range syms {
		if s.Kind != objfile.SymbolFunc && s.Kind != objfile.SymbolObject {
			continue
		}
		if s.Name == "" {
			continue
		}

		addr := s.Value
		if hasOpd && s.Kind == objfile.SymbolFunc && addr >= opd.Addr && addr < opd.Addr+opd.Size {
			off := addr - opd.Addr
			if off+8 <= uint64(len(opdData)) {
				addr = binary.BigEndian.Uint64(opdData[off:])
			}
		}

		relocated := addr + base
		if relocated < addr {
			return nil, errs.Errorf(errs.SymtabBadEntry, len(entries))
		}

		entries = append(entries, entry{addr: relocated, size: s.Size, name: s.Name})
	}

	sortutil.Slice(entries, func(a, b entry) bool { return a.addr < b.addr })

	// sentinel: an entry whose address is the highest real address plus
	// its size (or MaxUint64 if the table is empty, the last symbol has
	// size 0, or the sum overflows), so the binary search in Lookup can
	// always read entries[i+1].addr safely.
	var sentinelAddr uint64 = ^uint64(0)
	if n := len(entries); n > 0 {
		last := entries[n-1]
		if last.addr+last.size > last.addr {
			sentinelAddr = last.addr + last.size
		}
	}
	entries = append(entries, entry{addr: sentinelAddr})

	return &Shard{entries: entries}, nil
}

// Lookup finds the symbol whose [addr, addr+size) extent contains pc,
// via binary search over the sorted shard (spec.md §4.7).
func (s *Shard) Lookup(pc uint64) (Symbol, bool) {
	n := len(s.entries) - 1 // exclude the sentinel from the candidate set
	if n <= 0 {
		return Symbol{}, false
	}

	i := sort.Search(n, func(i int) bool { return s.entries[i].addr > pc })
	if i == 0 {
		return Symbol{}, false
	}
	e := s.entries[i-1]

	extent := e.size
	if extent == 0 {
		// a zero-size symbol (common for assembler labels) still claims
		// every address up to the next symbol's start, matching the
		// teacher's disassembly table's implicit behaviour of letting a
		// label cover the gap until the next one.
		extent = s.entries[i].addr - e.addr
	}
	if pc >= e.addr+extent {
		return Symbol{}, false
	}

	return Symbol{Name: e.name, Addr: e.addr, Size: e.size, Offset: pc - e.addr}, true
}

// Len reports the number of real (non-sentinel) entries, for diagnostics
// and Stats().
func (s *Shard) Len() int {
	if len(s.entries) == 0 {
		return 0
	}
	return len(s.entries) - 1
}
