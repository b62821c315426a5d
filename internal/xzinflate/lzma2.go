package xzinflate

import "github.com/jetsetilly/symtrace/errs"

// decodeLZMA2 decodes an LZMA2 chunk sequence (XZ format spec §5.3.1)
// until the end-of-payload marker (a single 0x00 control byte) or the
// input is exhausted, returning the decompressed bytes and the number of
// input bytes consumed.
//
// LZMA2 wraps the raw LZMA bitstream in chunks so the dictionary, and the
// lc/lp/pb properties, can be reset mid-stream; the control byte's top
// bits say whether this chunk carries a properties/state reset and
// whether it is compressed at all.
func decodeLZMA2(data []byte, outputCap int) ([]byte, int, error) {
	out := make([]byte, 0, minInt(outputCap, 1<<20))
	pos := 0

	var dec *lzmaDecoder
	var dict []byte

	for pos < len(data) {
		control := data[pos]
		if control == 0x00 {
			pos++
			return out, pos, nil
		}

		if control < 0x80 {
			// uncompressed chunk: 0x01 = dictionary reset, 0x02 = no reset
			if pos+3 > len(data) {
				return nil, 0, errs.Errorf(errs.XZBadChunk, control)
			}
			size := (int(data[pos+1])<<8 | int(data[pos+2])) + 1
			pos += 3
			if pos+size > len(data) {
				return nil, 0, errs.Errorf(errs.XZBadChunk, control)
			}
			if control == 0x01 {
				dict = nil
			}
			chunk := data[pos : pos+size]
			dict = append(dict, chunk...)
			out = append(out, chunk...)
			if len(out) > outputCap {
				return nil, 0, errs.Errorf(errs.XZOutputCapped, outputCap)
			}
			pos += size
			continue
		}

		// compressed chunk: control bit layout per XZ format spec §5.3.1
		//   1RRUUUUU  unpackSize bits 20-16 in low 5 bits of control
		//   R (bits 6-5) selects the reset mode:
		//     0 = no reset, 1 = state reset, 2 = state reset + new props,
		//     3 = state reset + new props + dictionary reset
		if pos+5 > len(data) {
			return nil, 0, errs.Errorf(errs.XZBadChunk, control)
		}
		unpackSize := (int(control&0x1f)<<16 | int(data[pos+1])<<8 | int(data[pos+2])) + 1
		packSize := (int(data[pos+3])<<8 | int(data[pos+4])) + 1
		resetMode := (control >> 5) & 0x3
		pos += 5

		if resetMode >= 3 {
			dict = nil
		}

		var props byte
		headerExtra := 0
		if resetMode >= 2 {
			if pos >= len(data) {
				return nil, 0, errs.Errorf(errs.XZBadChunk, control)
			}
			props = data[pos]
			headerExtra = 1
			pos++
		}

		if pos+packSize > len(data) {
			return nil, 0, errs.Errorf(errs.XZBadChunk, control)
		}
		body := data[pos : pos+packSize]
		pos += packSize
		_ = headerExtra

		if dec == nil || resetMode >= 2 {
			lc, lp, pb, err := decodeLZMAProps(props)
			if err != nil {
				return nil, 0, err
			}
			dec = newLZMADecoder(lc, lp, pb)
		} else if resetMode >= 1 {
			dec.resetState()
		}

		decoded, err := dec.decode(body, unpackSize, dict)
		if err != nil {
			return nil, 0, err
		}

		dict = append(dict, decoded...)
		out = append(out, decoded...)
		if len(out) > outputCap {
			return nil, 0, errs.Errorf(errs.XZOutputCapped, outputCap)
		}
	}

	return out, pos, nil
}

// decodeLZMAProps unpacks the single LZMA properties byte into lc
// (literal context bits), lp (literal position bits) and pb (position
// bits), following the LZMA SDK's `d = pb*5*9 + lp*9 + lc` packing, here
// inverted: lc = d%9, d/=9, lp = d%5, pb = d/5.
func decodeLZMAProps(b byte) (lc, lp, pb int, err error) {
	d := int(b)
	if d >= 9*5*5 {
		return 0, 0, 0, errs.Errorf(errs.LZMABadProps, b)
	}
	lc = d % 9
	d /= 9
	lp = d % 5
	pb = d / 5
	return lc, lp, pb, nil
}
