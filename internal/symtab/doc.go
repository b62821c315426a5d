// Package symtab implements C9 from spec.md §4.7: function/object symbol
// extraction from an already-opened internal/objfile.File, address
// sorting via internal/sortutil, and binary-search lookup, including the
// PowerPC64 ELFv1 .opd function-descriptor indirection.
//
// Grounded on the teacher's disassembly/symbols/table.go idiom (a
// sorted-slice-plus-binary-search symbol table for a single CPU), scaled
// up to a general sorted (address, size, name) shard with a sentinel
// entry past the end, per spec.md §4.7's stated design.
package symtab
