// Package crc implements the two cyclic redundancy checks this module
// needs and that the standard library doesn't provide in the exact form
// required: the classic CRC-32 (poly 0xEDB88320, reflected, input and
// output complemented) used both by .gnu_debuglink verification
// (spec.md §4.7) and as the default XZ stream/block integrity check
// (spec.md §4.3), and CRC-64-ECMA-182 (poly 0xC96C5795D7870F42) which XZ
// allows as an alternative, stronger check.
//
// hash/crc32 in the standard library implements the same CRC-32
// polynomial (IEEE) and would normally be reached for here, but this
// module's query path must work after a signal handler has interrupted
// the general allocator (spec.md §5), and hash.Hash32's table is built
// via a package-level sync.Once the first time it's touched — fine in
// practice, but this module hand-builds the table at init() instead so
// the table's lifecycle is explicit and shared with the CRC-64 table
// built the same way.
package crc
