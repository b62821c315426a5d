// Package mapfile implements the last-resort symbol-name fallback named
// in SPEC_FULL.md's "symbol map-file" supplement: a GNU ld -Map sibling
// file (simple `<addr> <name>` lines), consulted only after both the
// symbol table (internal/symtab) and DWARF (internal/dwarf) have missed.
//
// Grounded on the teacher's coprocessor/developer/mapfile package, which
// solves the analogous problem for an ARM linker-script map one level
// up (at the emulated-coprocessor level rather than the host process):
// same "find a sibling file, parse address-ordered entries, walk until
// the next entry's address exceeds the query" shape, adapted to the
// much simpler two-column -Map format this module actually needs.
package mapfile
