package xzinflate

import (
	"encoding/binary"

	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/crc"
)

var streamMagic = [6]byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
var footerMagic = [2]byte{'Y', 'Z'}

// checkType identifies the integrity check selected in the stream header
// flags byte (XZ format spec §2.1.1.2).
type checkType byte

const (
	checkNone   checkType = 0x0
	checkCRC32  checkType = 0x1
	checkCRC64  checkType = 0x4
	checkSHA256 checkType = 0xA
)

func checkSize(c checkType) int {
	switch c {
	case checkNone:
		return 0
	case checkCRC32:
		return 4
	case checkCRC64:
		return 8
	case checkSHA256:
		return 32
	default:
		return -1
	}
}

// Decompress decodes a single-stream, single-block XZ file - the shape
// MiniDebugInfo and xz's own command-line tool both produce - and returns
// the decompressed payload. outputCap bounds the size of the result;
// decoding stops with an error if it would be exceeded, per
// SPEC_FULL.md's resolution of the output-size REDESIGN FLAG.
func Decompress(data []byte, outputCap int) ([]byte, error) {
	if len(data) < 12 || [6]byte(data[:6]) != streamMagic {
		return nil, errs.Errorf(errs.XZBadMagic)
	}

	flags := data[7]
	check := checkType(flags & 0x0f)
	if checkSize(check) < 0 {
		return nil, errs.Errorf(errs.XZUnsupportedFilter, int(check))
	}

	pos := 12 // past the 12-byte stream header (magic + flags + CRC32 of flags)

	out := make([]byte, 0, minInt(outputCap, 1<<20))
	zeroProgress := 0

	for {
		if pos >= len(data) {
			return nil, errs.Errorf(errs.XZBadFooter)
		}
		indicator := data[pos]
		if indicator == 0x00 {
			// index record reached; block stream is finished
			break
		}

		blockOut, consumed, err := decodeBlock(data[pos:], check, outputCap-len(out))
		if err != nil {
			return nil, err
		}
		if consumed == 0 {
			zeroProgress++
			if zeroProgress >= 2 {
				return nil, errs.Errorf(errs.XZNoProgress)
			}
		} else {
			zeroProgress = 0
		}

		if len(out)+len(blockOut) > outputCap {
			return nil, errs.Errorf(errs.XZOutputCapped, outputCap)
		}
		out = append(out, blockOut...)
		pos += consumed
		pos = alignUp4(pos)

		// this module only ever decodes the single-block streams
		// MiniDebugInfo produces; stop once one block has been read.
		break
	}

	return out, nil
}

func alignUp4(n int) int {
	if n%4 == 0 {
		return n
	}
	return n + (4 - n%4)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// decodeBlock reads one XZ block: its header (filter chain, uncompressed
// and compressed size hints), the LZMA2-compressed body, and the trailing
// integrity check, returning the decompressed bytes and the number of
// input bytes consumed (header + body + block padding + check).
func decodeBlock(data []byte, check checkType, remainingCap int) ([]byte, int, error) {
	if len(data) < 8 {
		return nil, 0, errs.Errorf(errs.XZBadFooter)
	}

	headerSize := (int(data[0]) + 1) * 4
	if headerSize > len(data) {
		return nil, 0, errs.Errorf(errs.XZBadFooter)
	}
	blockFlags := data[1]
	numFilters := int(blockFlags&0x03) + 1

	off := 2
	// the optional compressed-size (0x40) and uncompressed-size (0x80)
	// fields precede the filter flags; they are skipped, not trusted
	if blockFlags&0x40 != 0 {
		_, n := uvarint(data[off:])
		off += n
	}
	if blockFlags&0x80 != 0 {
		_, n := uvarint(data[off:])
		off += n
	}
	var filterID uint64
	var filterPropsSize uint64
	var dictSize uint32 = 1 << 26
	var bcj bcjFilter

	for i := 0; i < numFilters; i++ {
		id, n := uvarint(data[off:])
		off += n
		size, n2 := uvarint(data[off:])
		off += n2

		if i == numFilters-1 {
			if id != filterIDLZMA2 {
				return nil, 0, errs.Errorf(errs.XZUnsupportedFilter, id)
			}
			filterID = id
			filterPropsSize = size
			if size >= 1 {
				props := data[off]
				dictSize = lzma2DictSize(props)
			}
		} else {
			bcj = bcjFromFilterID(id)
			if bcj == bcjNone {
				return nil, 0, errs.Errorf(errs.XZUnsupportedFilter, id)
			}
		}
		off += int(size)
	}
	_ = filterID
	_ = filterPropsSize
	_ = dictSize

	body := data[headerSize:]
	// compressed size is not trusted; LZMA2's own chunk framing marks the
	// end, so the block is decoded until an end-of-payload marker chunk.
	decoded, bodyConsumed, err := decodeLZMA2(body, remainingCap)
	if err != nil {
		return nil, 0, err
	}

	if bcj != bcjNone {
		applyBCJDecode(decoded, bcj)
	}

	pos := headerSize + bodyConsumed
	pos = alignUp4(pos)

	cs := checkSize(check)
	if cs > 0 {
		if pos+cs > len(data) {
			return nil, 0, errs.Errorf(errs.XZBadFooter)
		}
		switch check {
		case checkCRC32:
			want := binary.LittleEndian.Uint32(data[pos : pos+4])
			if crc.CRC32(decoded) != want {
				return nil, 0, errs.Errorf(errs.XZBadCheck, int(check))
			}
		case checkCRC64:
			want := binary.LittleEndian.Uint64(data[pos : pos+8])
			if crc.CRC64(decoded) != want {
				return nil, 0, errs.Errorf(errs.XZBadCheck, int(check))
			}
		}
		pos += cs
	}

	return decoded, pos, nil
}

func uvarint(p []byte) (uint64, int) {
	var v uint64
	var shift uint
	for i, b := range p {
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, len(p)
}

// lzma2DictSize decodes the single-byte LZMA2 filter property into a
// dictionary size (XZ format spec §5.3.2).
func lzma2DictSize(props byte) uint32 {
	if props > 40 {
		return 1 << 26
	}
	if props == 40 {
		return 0xFFFFFFFF
	}
	return (2 | uint32(props&1)) << (props/2 + 11)
}
