package zlibinflate_test

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/jetsetilly/symtrace/internal/zlibinflate"
	"github.com/jetsetilly/symtrace/test"
)

// reference payloads exercise stored, fixed-Huffman and dynamic-Huffman
// blocks: plain ASCII compresses with real back-references (dynamic),
// random bytes defeat compression and tend to fall back to stored blocks,
// and a short highly repetitive string is small enough to land in a fixed
// block under compress/flate's heuristics.
func referencePayloads() map[string][]byte {
	r := rand.New(rand.NewSource(7))
	random := make([]byte, 3000)
	r.Read(random)

	repeated := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)

	return map[string][]byte{
		"empty":       {},
		"short":       []byte("hello, world"),
		"random":      random,
		"repeated":    repeated,
		"oneMiB":      bytes.Repeat([]byte{0xAB, 0xCD, 0xEF, 0x01}, 1<<18),
	}
}

func deflateRaw(t *testing.T, p []byte) []byte {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	test.ExpectSuccess(t, err)
	_, err = w.Write(p)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, w.Close())
	return buf.Bytes()
}

func TestInflateRoundTrip(t *testing.T) {
	for name, payload := range referencePayloads() {
		compressed := deflateRaw(t, payload)
		got, err := zlibinflate.Inflate(compressed, len(payload))
		test.ExpectSuccess(t, err)
		if !bytes.Equal(got, payload) {
			t.Fatalf("%s: round trip mismatch: got %d bytes, want %d", name, len(got), len(payload))
		}
	}
}

func TestDecompressZlibWrapper(t *testing.T) {
	for name, payload := range referencePayloads() {
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		_, err := w.Write(payload)
		test.ExpectSuccess(t, err)
		test.ExpectSuccess(t, w.Close())

		got, err := zlibinflate.Decompress(buf.Bytes(), len(payload))
		test.ExpectSuccess(t, err)
		if !bytes.Equal(got, payload) {
			t.Fatalf("%s: zlib round trip mismatch", name)
		}
	}
}

func TestDecompressRejectsBadAdler(t *testing.T) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte("corrupt me"))
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, w.Close())

	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xff

	_, err = zlibinflate.Decompress(corrupted, 0)
	test.ExpectFailure(t, err)
}

func TestDecompressZdebug(t *testing.T) {
	payload := []byte("zdebug convention payload, repeated repeated repeated")
	raw := deflateRaw(t, payload)

	var buf bytes.Buffer
	buf.WriteString("ZLIB")
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	buf.Write(lenBuf[:])
	buf.Write(raw)

	test.ExpectSuccess(t, zlibinflate.IsZdebugMagic(buf.Bytes()))

	got, err := zlibinflate.DecompressZdebug(buf.Bytes())
	test.ExpectSuccess(t, err)
	if !bytes.Equal(got, payload) {
		t.Fatalf("zdebug round trip mismatch")
	}
}

func TestAdler32MatchesKnownVector(t *testing.T) {
	// "Wikipedia" -> 0x11E60398 is the worked example from the Adler-32
	// Wikipedia article, used here purely as a fixed regression vector.
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte("Wikipedia"))
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, w.Close())

	got, err := zlibinflate.Decompress(buf.Bytes(), len("Wikipedia"))
	test.ExpectSuccess(t, err)
	test.Equate(t, string(got), "Wikipedia")
}
