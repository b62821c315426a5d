package symtrace

// PCRangeFileLines resolves every line-table row between lo and hi
// (inclusive of lo, exclusive of hi) across every loaded module, the
// batched-address-range convenience SPEC_FULL.md grounds on the
// teacher's coprocessor/developer/disasm_range.go: a caller building a
// disassembly or coverage view wants a whole block's source mapping at
// once, not one query per instruction. It reuses the exact per-unit line
// index PCFull already built; no extra parsing happens here.
func (s *State) PCRangeFileLines(lo, hi uint64) []Frame {
	var out []Frame

	s.modules.Range(func(v interface{}) bool {
		m := v.(*Module)
		if m.dwarf == nil {
			return true
		}
		for _, e := range m.dwarf.LinesInRange(lo, hi) {
			fn := ""
			if frames, err := m.dwarf.Lookup(e.Address); err == nil && len(frames) > 0 {
				fn = frames[0].Function
			}
			out = append(out, Frame{
				Address:  e.Address,
				Function: s.demangle(fn),
				File:     e.File,
				Line:     e.Line,
				Column:   e.Column,
			})
		}
		return true
	})

	return out
}
