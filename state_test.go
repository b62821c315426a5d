package symtrace_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/symtrace"
	"github.com/jetsetilly/symtrace/test"
)

// writeMinimalELF64 hand-assembles a tiny little-endian ELF64 executable
// with a ".text" section and a real ".symtab"/".strtab" pair describing
// one STT_FUNC symbol, then writes it to dir so it can be opened via a
// real mmap (CreateState always loads from a path on disk, never from
// an in-memory view), following the same byte-level approach as
// internal/objfile/elf_test.go's buildMinimalELF64.
func writeMinimalELF64(t *testing.T, dir string, funcAddr, funcSize uint64, funcName string) string {
	t.Helper()

	const (
		ehsize    = 64
		shentsize = 64
		symsize   = 24 // Elf64_Sym
	)

	strtab := []byte{0}
	nameOff := len(strtab)
	strtab = append(strtab, []byte(funcName+"\x00")...)

	sym := make([]byte, symsize)
	binary.LittleEndian.PutUint32(sym[0:4], uint32(nameOff))
	sym[4] = 2 // STT_FUNC
	binary.LittleEndian.PutUint64(sym[8:16], funcAddr)
	binary.LittleEndian.PutUint64(sym[16:24], funcSize)

	shstrtab := []byte{0}
	textNameOff := len(shstrtab)
	shstrtab = append(shstrtab, []byte(".text\x00")...)
	symtabNameOff := len(shstrtab)
	shstrtab = append(shstrtab, []byte(".symtab\x00")...)
	strtabNameOff := len(shstrtab)
	shstrtab = append(shstrtab, []byte(".strtab\x00")...)
	shstrtabNameOff := len(shstrtab)
	shstrtab = append(shstrtab, []byte(".shstrtab\x00")...)

	textData := make([]byte, funcSize)

	textOff := ehsize
	symtabOff := textOff + len(textData)
	strtabOff := symtabOff + len(sym)
	shstrtabOff := strtabOff + len(strtab)
	shoff := shstrtabOff + len(shstrtab)

	buf := make([]byte, ehsize)
	buf[0], buf[1], buf[2], buf[3] = 0x7f, 'E', 'L', 'F'
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // ELFDATA2LSB
	binary.LittleEndian.PutUint16(buf[16:18], 2)    // ET_EXEC
	binary.LittleEndian.PutUint16(buf[18:20], 0x3e) // EM_X86_64
	binary.LittleEndian.PutUint64(buf[40:48], uint64(shoff))
	binary.LittleEndian.PutUint16(buf[58:60], shentsize)
	binary.LittleEndian.PutUint16(buf[60:62], 5) // null + .text + .symtab + .strtab + .shstrtab
	binary.LittleEndian.PutUint16(buf[62:64], 4) // shstrndx

	buf = append(buf, textData...)
	buf = append(buf, sym...)
	buf = append(buf, strtab...)
	buf = append(buf, shstrtab...)

	sh := func(nameOff uint32, shType uint32, link uint32, entsize uint64, addr, off, size uint64) []byte {
		e := make([]byte, shentsize)
		binary.LittleEndian.PutUint32(e[0:4], nameOff)
		binary.LittleEndian.PutUint32(e[4:8], shType)
		binary.LittleEndian.PutUint64(e[16:24], addr)
		binary.LittleEndian.PutUint64(e[24:32], off)
		binary.LittleEndian.PutUint64(e[32:40], size)
		binary.LittleEndian.PutUint32(e[40:44], link)
		binary.LittleEndian.PutUint64(e[56:64], entsize)
		return e
	}

	buf = append(buf, sh(0, 0, 0, 0, 0, 0, 0)...) // null section
	buf = append(buf, sh(uint32(textNameOff), 1, 0, 0, funcAddr, uint64(textOff), uint64(len(textData)))...)
	buf = append(buf, sh(uint32(symtabNameOff), 2, 3, symsize, 0, uint64(symtabOff), uint64(len(sym)))...) // .symtab, shLink -> .strtab
	buf = append(buf, sh(uint32(strtabNameOff), 3, 0, 0, 0, uint64(strtabOff), uint64(len(strtab)))...)
	buf = append(buf, sh(uint32(shstrtabNameOff), 3, 0, 0, 0, uint64(shstrtabOff), uint64(len(shstrtab)))...)

	path := filepath.Join(dir, "fixture.elf")
	test.ExpectSuccess(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestCreateStateResolvesSymbolOnly(t *testing.T) {
	path := writeMinimalELF64(t, t.TempDir(), 0x1000, 0x40, "do_work")

	s, err := symtrace.CreateState(path, 0)
	test.ExpectSuccess(t, err)

	var gotName string
	var gotValue uint64
	s.PCSymbol(0x1010, func(pc uint64, name string, value, size uint64) {
		gotName = name
		gotValue = value
	})
	test.Equate(t, gotName, "do_work")
	test.Equate(t, gotValue, uint64(0x1000))
}

func TestPCFullFallsBackToSymbolWhenNoDWARF(t *testing.T) {
	path := writeMinimalELF64(t, t.TempDir(), 0x2000, 0x20, "no_debug_info")

	s, err := symtrace.CreateState(path, 0)
	test.ExpectSuccess(t, err)

	var frames []symtrace.Frame
	ok := s.PCFull(0x2004, func(f symtrace.Frame) bool {
		frames = append(frames, f)
		return false
	})
	test.ExpectSuccess(t, ok)
	test.Equate(t, len(frames), 1)
	test.Equate(t, frames[0].Function, "no_debug_info")
	test.Equate(t, frames[0].File, "")
}

func TestPCPrintWritesBareAddressWhenNothingResolves(t *testing.T) {
	path := writeMinimalELF64(t, t.TempDir(), 0x3000, 0x10, "irrelevant")

	s, err := symtrace.CreateState(path, 0)
	test.ExpectSuccess(t, err)

	var w test.Writer
	s.PCPrint(0xdeadbeef, &w)
	test.ExpectSuccess(t, len(w.String()) > 0)
}

func TestStatsCountsSymtabHits(t *testing.T) {
	path := writeMinimalELF64(t, t.TempDir(), 0x4000, 0x8, "counted")

	s, err := symtrace.CreateState(path, 0)
	test.ExpectSuccess(t, err)

	s.PCSymbol(0x4000, func(pc uint64, name string, value, size uint64) {})
	st := s.Stats()
	test.Equate(t, st.SymtabHits, 1)
}

func TestCreateStateWithDemangler(t *testing.T) {
	path := writeMinimalELF64(t, t.TempDir(), 0x5000, 0x8, "_Z3fooi")

	s, err := symtrace.CreateState(path, 0, symtrace.WithDemangler(demangleToFixed{}))
	test.ExpectSuccess(t, err)

	var got string
	s.PCSymbol(0x5000, func(pc uint64, name string, value, size uint64) {
		got = name
	})
	test.Equate(t, got, "foo(int)")
}

// demangleToFixed is a stand-in Demangler that maps only the fixture's
// "_Z3fooi" to "foo(int)" and returns any other name unchanged, so the
// test doesn't need to depend on whichever real Itanium-mangled symbol
// the demangle library accepts this release.
type demangleToFixed struct{}

func (demangleToFixed) Demangle(name string) string {
	if name == "_Z3fooi" {
		return "foo(int)"
	}
	return name
}
