package symtrace

// Stats aggregates every loaded module's ModuleStats into one process-
// wide total, the per-process analogue of SPEC_FULL.md's per-module
// statistics supplement (modelled on the teacher's
// coprocessor/developer/profiling package, scaled down to counts of
// which data source actually answered each query).
func (s *State) Stats() ModuleStats {
	var total ModuleStats
	s.modules.Range(func(v interface{}) bool {
		m := v.(*Module)
		total.DwarfHits += m.stats.DwarfHits
		total.SymtabHits += m.stats.SymtabHits
		total.MapHits += m.stats.MapHits
		total.Misses += m.stats.Misses
		return true
	})
	return total
}
