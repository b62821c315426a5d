package zlibinflate

import "github.com/jetsetilly/symtrace/errs"

// lengthBase and lengthExtra give the base value and number of extra bits
// for length codes 257..285 (RFC 1951 §3.2.5).
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}
var lengthExtra = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtra give the base value and number of extra bits for
// the 30 defined distance codes.
var distBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}
var distExtra = [30]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// clOrder is the order in which code-length code lengths are stored in a
// dynamic-Huffman block header (RFC 1951 §3.2.7).
var clOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// Inflate decodes a raw DEFLATE stream (RFC 1951, no zlib/gzip wrapper) and
// returns the decompressed bytes. sizeHint, when nonzero, preallocates the
// output buffer to avoid repeated growth; it need not be exact.
func Inflate(data []byte, sizeHint int) ([]byte, error) {
	r := newBitReader(data)
	out := make([]byte, 0, sizeHint)

	for {
		final, err := r.bits(1)
		if err != nil {
			return nil, err
		}
		btype, err := r.bits(2)
		if err != nil {
			return nil, err
		}

		switch btype {
		case 0: // stored
			out, err = inflateStored(r, out)
		case 1: // fixed Huffman
			out, err = inflateHuffmanBlock(r, out, mustBuild(fixedLiteralLengths()), mustBuild(fixedDistanceLengths()))
		case 2: // dynamic Huffman
			var lit, dist *huffTable
			lit, dist, err = readDynamicTables(r)
			if err == nil {
				out, err = inflateHuffmanBlock(r, out, lit, dist)
			}
		default:
			err = errs.Errorf(errs.ZlibBadBlockType, int(btype))
		}
		if err != nil {
			return nil, err
		}

		if final == 1 {
			break
		}
	}

	return out, nil
}

// mustBuild is used for the fixed tables, whose code lengths are a
// compile-time constant known to be well formed.
func mustBuild(lengths []uint8) *huffTable {
	t, err := buildHuffman(lengths)
	if err != nil {
		panic(err)
	}
	return t
}

func inflateStored(r *bitReader, out []byte) ([]byte, error) {
	r.align()
	lenLo, err := r.readByte()
	if err != nil {
		return nil, err
	}
	lenHi, err := r.readByte()
	if err != nil {
		return nil, err
	}
	nlenLo, err := r.readByte()
	if err != nil {
		return nil, err
	}
	nlenHi, err := r.readByte()
	if err != nil {
		return nil, err
	}

	length := int(lenLo) | int(lenHi)<<8
	nlength := int(nlenLo) | int(nlenHi)<<8
	if length != nlength^0xffff {
		return nil, errs.Errorf(errs.ZlibBadStoredLen)
	}

	for i := 0; i < length; i++ {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func readDynamicTables(r *bitReader) (*huffTable, *huffTable, error) {
	hlit, err := r.bits(5)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := r.bits(5)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := r.bits(4)
	if err != nil {
		return nil, nil, err
	}

	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	nclen := int(hclen) + 4

	var clLengths [19]uint8
	for i := 0; i < nclen; i++ {
		v, err := r.bits(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[clOrder[i]] = uint8(v)
	}

	clTable, err := buildHuffman(clLengths[:])
	if err != nil {
		return nil, nil, err
	}

	lengths := make([]uint8, 0, nlit+ndist)
	for len(lengths) < nlit+ndist {
		sym, err := clTable.decode(r)
		if err != nil {
			return nil, nil, err
		}
		switch {
		case sym < 16:
			lengths = append(lengths, uint8(sym))
		case sym == 16:
			if len(lengths) == 0 {
				return nil, nil, errs.Errorf(errs.ZlibBadRepeat)
			}
			rep, err := r.bits(2)
			if err != nil {
				return nil, nil, err
			}
			prev := lengths[len(lengths)-1]
			for i := 0; i < int(rep)+3; i++ {
				lengths = append(lengths, prev)
			}
		case sym == 17:
			rep, err := r.bits(3)
			if err != nil {
				return nil, nil, err
			}
			for i := 0; i < int(rep)+3; i++ {
				lengths = append(lengths, 0)
			}
		case sym == 18:
			rep, err := r.bits(7)
			if err != nil {
				return nil, nil, err
			}
			for i := 0; i < int(rep)+11; i++ {
				lengths = append(lengths, 0)
			}
		}
	}

	lit, err := buildHuffman(lengths[:nlit])
	if err != nil {
		return nil, nil, err
	}
	dist, err := buildHuffman(lengths[nlit:])
	if err != nil {
		return nil, nil, err
	}
	return lit, dist, nil
}

func inflateHuffmanBlock(r *bitReader, out []byte, lit, dist *huffTable) ([]byte, error) {
	for {
		sym, err := lit.decode(r)
		if err != nil {
			return nil, err
		}
		switch {
		case sym < 256:
			out = append(out, byte(sym))
		case sym == 256:
			return out, nil
		default:
			li := int(sym) - 257
			if li >= len(lengthBase) {
				return nil, errs.Errorf(errs.ZlibBadSymbol, int(sym))
			}
			length := lengthBase[li]
			if lengthExtra[li] > 0 {
				extra, err := r.bits(lengthExtra[li])
				if err != nil {
					return nil, err
				}
				length += int(extra)
			}

			dsym, err := dist.decode(r)
			if err != nil {
				return nil, err
			}
			if int(dsym) >= len(distBase) {
				return nil, errs.Errorf(errs.ZlibBadSymbol, int(dsym))
			}
			distance := distBase[dsym]
			if distExtra[dsym] > 0 {
				extra, err := r.bits(distExtra[dsym])
				if err != nil {
					return nil, err
				}
				distance += int(extra)
			}

			if distance > len(out) {
				return nil, errs.Errorf(errs.ZlibBadDistance, distance, len(out))
			}
			start := len(out) - distance
			for i := 0; i < length; i++ {
				out = append(out, out[start+i])
			}
		}
	}
}
