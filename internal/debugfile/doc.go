// Package debugfile implements C7 from spec.md §4.7: given an
// internal/objfile.File for a main binary, find the separate file that
// actually carries its DWARF, trying each convention in the order gdb
// does:
//
//  1. build-id: /usr/lib/debug/.build-id/XX/YYYYYYYY....debug
//  2. .gnu_debuglink: <dir>/<name>, <dir>/.debug/<name>,
//     /usr/lib/debug/<dir>/<name>, each checked against the link's
//     stored CRC-32 before being trusted
//  3. .gnu_debugdata (MiniDebugInfo): an XZ-compressed ELF image with a
//     reduced symbol table, embedded directly in the binary
//  4. dSYM bundles: <binary>.dSYM/Contents/Resources/DWARF/<binary>,
//     matched by LC_UUID
//
// and separately resolves .gnu_debugaltlink, the supplementary-object
// mechanism DWARF5 split-dwarf and Fedora/openSUSE debuginfo packages use
// for strings shared across many translation units.
package debugfile
