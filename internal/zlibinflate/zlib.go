package zlibinflate

import (
	"encoding/binary"

	"github.com/jetsetilly/symtrace/errs"
)

// zdebugMagic is the 4-byte prefix GNU ld/gold/as write instead of a real
// zlib header when compressing .debug_* sections into .zdebug_* sections
// (a convention that predates ELF SHF_COMPRESSED).
var zdebugMagic = [4]byte{'Z', 'L', 'I', 'B'}

// Decompress inflates a zlib-wrapped stream, validating the 2-byte RFC
// 1950 header and the trailing Adler-32, and returns the decompressed
// payload. sizeHint preallocates the output buffer.
func Decompress(data []byte, sizeHint int) ([]byte, error) {
	if len(data) < 6 {
		return nil, errs.Errorf(errs.ZlibBadHeader, "<stream>")
	}

	cmf := data[0]
	flg := data[1]
	if cmf&0x0f != 8 {
		return nil, errs.Errorf(errs.ZlibBadHeader, "<stream>")
	}
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return nil, errs.Errorf(errs.ZlibBadHeader, "<stream>")
	}

	payload := data[2:]
	if flg&0x20 != 0 {
		// FDICT set: a preset dictionary id follows the header. This
		// module never supplies one: the id is skipped and the body is
		// inflated without it, so a back-reference into the dictionary
		// fails with ZlibBadDistance.
		if len(payload) < 4 {
			return nil, errs.Errorf(errs.ZlibBadHeader, "<stream>")
		}
		payload = payload[4:]
	}
	if len(payload) < 4 {
		return nil, errs.Errorf(errs.ZlibBadHeader, "<stream>")
	}

	body := payload[:len(payload)-4]
	wantAdler := binary.BigEndian.Uint32(payload[len(payload)-4:])

	out, err := Inflate(body, sizeHint)
	if err != nil {
		return nil, err
	}

	if adler32(out) != wantAdler {
		return nil, errs.Errorf(errs.ZlibAdlerMismatch, "<stream>")
	}

	return out, nil
}

// DecompressZdebug inflates the GNU "ZLIB" + 8-byte big-endian
// uncompressed-length convention used by .zdebug_* sections, which wraps a
// raw RFC 1951 DEFLATE stream with no zlib header or trailer at all.
func DecompressZdebug(data []byte) ([]byte, error) {
	if len(data) < 12 || [4]byte{data[0], data[1], data[2], data[3]} != zdebugMagic {
		return nil, errs.Errorf(errs.ZlibBadHeader, "<zdebug>")
	}

	size := binary.BigEndian.Uint64(data[4:12])
	return Inflate(data[12:], int(size))
}

// IsZdebugMagic reports whether data begins with the legacy "ZLIB" magic,
// letting internal/objfile decide which of Decompress/DecompressZdebug to
// call without duplicating the magic check.
func IsZdebugMagic(data []byte) bool {
	return len(data) >= 4 && [4]byte{data[0], data[1], data[2], data[3]} == zdebugMagic
}
