package crc

// poly64 is the reflected form of the ECMA-182 polynomial
// 0x42F0E1EBA9EA3693, i.e. 0xC96C5795D7870F42, which XZ uses as its
// stronger optional integrity check (spec.md §4.3).
const poly64 = 0xC96C5795D7870F42

var table64 [256]uint64

func init() {
	for i := range table64 {
		c := uint64(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = poly64 ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		table64[i] = c
	}
}

// CRC64 computes the reflected CRC-64-ECMA of p, complemented on input
// and output, matching the check XZ stores when check type 0x4 (CRC64)
// is selected in the stream header flags.
func CRC64(p []byte) uint64 {
	c := uint64(0xFFFFFFFFFFFFFFFF)
	for _, b := range p {
		c = table64[byte(c)^b] ^ (c >> 8)
	}
	return c ^ 0xFFFFFFFFFFFFFFFF
}
