// Package zlibinflate is a hand-written RFC 1950/1951 (zlib/DEFLATE)
// decoder, grounded on spec.md §4.2.
//
// The standard library's compress/flate already decodes DEFLATE; this
// package is a separate, self-contained decoder. It takes no
// caller-supplied scratch space: each call allocates its output buffer
// and builds its Huffman tables on the Go heap.
//
// Two callers drive this package: the legacy GNU "zdebug" convention
// (magic "ZLIB" + 8-byte big-endian uncompressed length, no zlib header)
// and ELF SHF_COMPRESSED sections with ch_type == ELFCOMPRESS_ZLIB (a real
// zlib stream, size taken from the compression header). Both are handled
// by internal/objfile; this package only implements the codec.
package zlibinflate
