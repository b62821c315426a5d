package mmapview_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/symtrace/test"
	"github.com/jetsetilly/symtrace/view/mmapview"
)

func TestOpenAndSlice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	want := []byte("0123456789abcdef")
	test.ExpectSuccess(t, os.WriteFile(path, want, 0o644))

	v, err := mmapview.Open(path)
	test.ExpectSuccess(t, err)
	defer v.Close()

	test.Equate(t, v.Len(), len(want))

	got, err := v.Slice(4, 6)
	test.ExpectSuccess(t, err)
	test.Equate(t, string(got), "456789")

	buf := make([]byte, 3)
	n, err := v.ReadAt(buf, 0)
	test.ExpectSuccess(t, err)
	test.Equate(t, n, 3)
	test.Equate(t, string(buf), "012")
}

func TestOpenEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	test.ExpectSuccess(t, os.WriteFile(path, nil, 0o644))

	v, err := mmapview.Open(path)
	test.ExpectSuccess(t, err)
	defer v.Close()
	test.Equate(t, v.Len(), 0)
}

func TestSliceOutOfRange(t *testing.T) {
	v := func() *mmapview.View {
		dir := t.TempDir()
		path := filepath.Join(dir, "small.bin")
		test.ExpectSuccess(t, os.WriteFile(path, []byte("abc"), 0o644))
		v, err := mmapview.Open(path)
		test.ExpectSuccess(t, err)
		return v
	}()
	defer v.Close()

	_, err := v.Slice(0, 100)
	test.ExpectFailure(t, err)
}
