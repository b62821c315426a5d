package symtrace

// CallersOf returns every address, across every loaded module, whose
// resolved call chain names function at any depth (its own frame, or
// as an inlined callee reached through that frame) — the PC-driven
// caller-enumeration convenience SPEC_FULL.md grounds on the teacher's
// coprocessor/developer/callstack package. Unlike the teacher's live
// call-stack tracker, this walks only the already-parsed subprogram and
// inlined-subroutine address ranges; it has no notion of an actual
// runtime call history, so it is suited to offline analysis of a
// captured address set (e.g. a sampling profiler's flat histogram)
// rather than live unwinding.
func (s *State) CallersOf(function string) []Frame {
	var out []Frame

	s.modules.Range(func(v interface{}) bool {
		m := v.(*Module)
		if m.dwarf == nil {
			return true
		}
		for _, addr := range m.dwarf.FunctionAddresses(function) {
			frames, err := m.dwarf.Lookup(addr)
			if err != nil || len(frames) == 0 {
				continue
			}
			fr := frames[0]
			out = append(out, Frame{
				Address:  addr,
				Function: s.demangle(fr.Function),
				File:     fr.File,
				Line:     fr.Line,
				Column:   fr.Column,
				IsInline: fr.IsInline,
			})
		}
		return true
	})

	return out
}
