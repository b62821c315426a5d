package zlibinflate

import "github.com/jetsetilly/symtrace/errs"

// maxCodeLen is DEFLATE's hard limit on Huffman code length (RFC 1951 §3.2.2).
const maxCodeLen = 15

// primaryBits is the width of the first-level lookup table. A code no
// longer than primaryBits decodes in one table access; anything longer
// spills into a secondary table referenced from the primary entry, giving
// the two-level scheme spec.md §4.2 describes rather than one table sized
// 2^maxCodeLen.
const primaryBits = 9

// huffEntry holds a decoded symbol and its bit length, or - when length
// is 0 - a secondary-table index and size in their place.
type huffEntry struct {
	sym    uint32 // decoded value, or index of secondary table
	length uint8  // code length in bits; 0 means "see secondary table"
	secBits uint8 // bit width of the secondary table, when length == 0
}

// huffTable is a constructed canonical Huffman decoding table.
type huffTable struct {
	primary []huffEntry // 1 << primaryBits entries
	secEntries [][]huffEntry // one slice per secondary table, each 1 << secBits long
}

// buildHuffman constructs a two-level decode table from a list of code
// lengths indexed by symbol, following the canonical-code assignment rule
// of RFC 1951 §3.2.2: codes of the same length are consecutive, ordered by
// symbol, and shorter lengths always sort before longer ones.
func buildHuffman(lengths []uint8) (*huffTable, error) {
	var count [maxCodeLen + 1]int
	maxLen := 0
	for _, l := range lengths {
		if l == 0 {
			continue
		}
		if int(l) > maxCodeLen {
			return nil, errs.Errorf(errs.ZlibBadCodeLength, l)
		}
		count[l]++
		if int(l) > maxLen {
			maxLen = int(l)
		}
	}
	if maxLen == 0 {
		return &huffTable{primary: make([]huffEntry, 1<<primaryBits)}, nil
	}

	// first code of each length, per RFC 1951's canonical assignment
	var firstCode [maxCodeLen + 2]int
	code := 0
	for l := 1; l <= maxCodeLen; l++ {
		code = (code + count[l-1]) << 1
		firstCode[l] = code
	}

	type assigned struct {
		sym  int
		code int
		len  int
	}
	var codes []assigned
	next := firstCode
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		codes = append(codes, assigned{sym: sym, code: next[l], len: int(l)})
		next[l]++
	}

	t := &huffTable{primary: make([]huffEntry, 1<<primaryBits)}

	// secondary table index keyed by the primary-bits prefix that owns it
	secIndex := make(map[int]int)

	for _, a := range codes {
		rev := reverseBits(a.code, a.len)
		if a.len <= primaryBits {
			// replicate across every primary slot whose low a.len bits equal rev
			step := 1 << a.len
			for i := rev; i < (1 << primaryBits); i += step {
				t.primary[i] = huffEntry{sym: uint32(a.sym), length: uint8(a.len)}
			}
			continue
		}

		prefix := rev & ((1 << primaryBits) - 1)
		secBits := a.len - primaryBits
		idx, ok := secIndex[prefix]
		if !ok {
			idx = len(t.secEntries)
			secIndex[prefix] = idx
			t.secEntries = append(t.secEntries, nil)
		}
		if len(t.secEntries[idx]) < (1 << secBits) {
			grown := make([]huffEntry, 1<<secBits)
			copy(grown, t.secEntries[idx])
			t.secEntries[idx] = grown
		}
		sub := rev >> primaryBits
		step := 1 << secBits
		for i := sub; i < (1 << secBits); i += step {
			t.secEntries[idx][i] = huffEntry{sym: uint32(a.sym), length: uint8(secBits)}
		}
		t.primary[prefix] = huffEntry{sym: uint32(idx), length: 0, secBits: uint8(secBits)}
	}

	return t, nil
}

// reverseBits reverses the low n bits of v, since DEFLATE Huffman codes are
// packed into the bitstream most-significant-bit first while this
// decoder's bit reader pulls bits least-significant-bit first (RFC 1951
// §3.1.1).
func reverseBits(v, n int) int {
	r := 0
	for i := 0; i < n; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// fixedLiteralLengths returns the fixed literal/length code lengths used
// by BTYPE=01 blocks (RFC 1951 §3.2.6).
func fixedLiteralLengths() []uint8 {
	l := make([]uint8, 288)
	for i := 0; i < 144; i++ {
		l[i] = 8
	}
	for i := 144; i < 256; i++ {
		l[i] = 9
	}
	for i := 256; i < 280; i++ {
		l[i] = 7
	}
	for i := 280; i < 288; i++ {
		l[i] = 8
	}
	return l
}

// fixedDistanceLengths returns the fixed distance code lengths for
// BTYPE=01 blocks: all 30 defined codes are 5 bits.
func fixedDistanceLengths() []uint8 {
	l := make([]uint8, 30)
	for i := range l {
		l[i] = 5
	}
	return l
}
