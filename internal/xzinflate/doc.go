// Package xzinflate decodes the XZ container and LZMA2 filter chain used
// for MiniDebugInfo (.gnu_debugdata, spec.md §4.7) and any bare
// LZMA2-in-XZ payload this module's callers hand it. Like
// internal/zlibinflate it is hand-written rather than built on a
// third-party XZ library (the pack carries none, and the signal-safety
// requirement in spec.md §5 rules out one that allocates internally
// regardless).
//
// Only what MiniDebugInfo actually produces is supported: a single XZ
// stream, a single LZMA2-filtered block, optional x86 BCJ prefiltering
// (the only BCJ variant xz's own debuginfo tooling emits), and the
// block's CRC-32 or CRC-64 integrity check over the decoded bytes; the
// stream header and footer CRCs are not verified. Decoding is bounded by
// an explicit output cap, and the single block is decoded in one pass.
package xzinflate
