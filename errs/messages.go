package errs

// Curated error message patterns used with Errorf() throughout this
// module. Grouped by the component that raises them, following the
// teacher's messages.go idiom of one constant block per subsystem.
const (
	// view / file primitives
	ViewOpen  = "view: cannot open %s: %v"
	ViewRead  = "view: read error on %s: %v"
	ViewRange = "view: requested range [%d,%d) exceeds descriptor of size %d"

	// object-file containers
	ObjfileBadMagic      = "objfile: unrecognised magic in %s"
	ObjfileTruncated     = "objfile: truncated %s while reading %s"
	ObjfileBadClass      = "objfile: unsupported class/width in %s"
	ObjfileNeedsBaseAddr = "objfile: %s is ET_DYN and requires a runtime base address"
	ObjfileSectionRange  = "objfile: section %s offset/size out of range"

	// debug-file resolver
	DebugfileCRCMismatch  = "debugfile: debuglink target %s has CRC %08x, want %08x"
	DebugfileUUIDMismatch = "debugfile: dSYM candidate %s has UUID %x, want %x"
	DebugfileNotFound     = "debugfile: no companion debug file found for %s"

	// decompression
	ZlibBadHeader    = "zlib: invalid header in %s"
	ZlibAdlerMismatch = "zlib: adler-32 mismatch decompressing %s"
	ZlibShortBuffer  = "zlib: work buffer too small (%d bytes required)"
	ZlibBadCodeLength = "zlib: code length %d exceeds the 15-bit DEFLATE maximum"
	ZlibBadBlockType = "zlib: unsupported block type %d"
	ZlibBadStoredLen = "zlib: stored block length/complement mismatch"
	ZlibBadDistance  = "zlib: distance %d exceeds window contents (%d bytes available)"
	ZlibBadSymbol    = "zlib: invalid literal/length symbol %d"
	ZlibBadRepeat    = "zlib: repeat code with no preceding code length"
	XZBadMagic       = "xz: bad stream magic in %s"
	XZBadFooter      = "xz: bad stream footer in %s"
	XZUnsupportedFilter = "xz: unsupported filter id %#x"
	XZNoProgress     = "xz: two consecutive calls made no progress"
	XZBadCheck       = "xz: integrity check mismatch (type %d)"
	XZBadChunk       = "xz: malformed lzma2 chunk control byte %#x"
	XZOutputCapped   = "xz: decoded output exceeded the %d byte cap"
	LZMABadProps     = "lzma: invalid property byte %#x"
	LZMARangeCoder   = "lzma: range decoder desynchronised"

	// DWARF
	DwarfBadAbbrev      = "dwarf: malformed abbreviation table at offset %#x"
	DwarfBadUnitHeader  = "dwarf: malformed compilation unit header at offset %#x"
	DwarfUnsupportedForm = "dwarf: unsupported form %#x for attribute %#x"
	DwarfRangeBase      = "dwarf: rnglists/addr base required but absent for unit at %#x"
	DwarfLineProgram    = "dwarf: malformed line number program at offset %#x: %v"

	// symbol table
	SymtabBadEntry = "symtab: malformed symbol table entry %d"

	// registry / public API
	StateNoModule    = "symtrace: pc %#x not covered by any loaded module"
	StateAllocDenied = "symtrace: general allocator unavailable in signal-safe state"
)
