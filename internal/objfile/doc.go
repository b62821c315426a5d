// Package objfile implements container C6 from spec.md §4.4: enough of
// ELF32/64, PE/COFF, Mach-O (32/64, either endianness) and XCOFF to find
// section data, the symbol table and a base address, handing the result
// to internal/debugfile and internal/dwarf without either of them needing
// to know which container format the file actually is.
//
// Grounded on the teacher's coprocessor/developer/dwarf/elf_shim.go for
// the shape of "open a container, list sections, read one by name", and
// on the standalone Mach-O/PE reference files in the example pack
// (blacktop-go-macho's types-nlist.go/types-commands.go, saferwall-pe's
// debug.go) for the structures this module's own readers are modelled on
// instead of importing those libraries: the debug-resolution contract in
// spec.md §5 requires allocation-free, signal-safe re-reads of an already
// mapped view, which a general-purpose pe/macho parsing library isn't
// built around.
package objfile
