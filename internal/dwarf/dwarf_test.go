package dwarf_test

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/symtrace/internal/dwarf"
	"github.com/jetsetilly/symtrace/test"
)

// buildFixture hand-assembles a single DWARF4 compile unit (one
// DW_TAG_subprogram child covering [0x1000, 0x1020)) plus its line number
// program, byte for byte, the same approach internal/objfile's tests use
// for container formats — there is no toolchain available to produce a
// real .debug_info/.debug_line pair to test against.
func buildFixture(t *testing.T) *dwarf.Sections {
	t.Helper()

	// .debug_abbrev: code 1 = compile_unit (has children: name, stmt_list),
	// code 2 = subprogram (no children: name, low_pc, high_pc-as-offset).
	abbrev := []byte{
		0x01, 0x11, 0x01, 0x03, 0x08, 0x10, 0x17, 0x00, 0x00,
		0x02, 0x2e, 0x00, 0x03, 0x08, 0x11, 0x01, 0x12, 0x06, 0x00, 0x00,
		0x00,
	}

	// root DIE (compile_unit): name="test.c", stmt_list=0
	var die []byte
	die = append(die, 0x01)
	die = append(die, []byte("test.c\x00")...)
	die = append(die, 0x00, 0x00, 0x00, 0x00) // stmt_list (4-byte section offset)

	// child DIE (subprogram): name="myfunc", low_pc=0x1000, high_pc=0x20 (offset form)
	die = append(die, 0x02)
	die = append(die, []byte("myfunc\x00")...)
	lowPC := make([]byte, 8)
	binary.LittleEndian.PutUint64(lowPC, 0x1000)
	die = append(die, lowPC...)
	highPC := make([]byte, 4)
	binary.LittleEndian.PutUint32(highPC, 0x20)
	die = append(die, highPC...)

	die = append(die, 0x00) // terminates compile_unit's children

	var info []byte
	header := make([]byte, 11)
	binary.LittleEndian.PutUint16(header[4:6], 4) // version
	// abbrev_offset already zero
	header[10] = 8 // address_size
	body := append(header[4:], die...)
	lengthField := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthField, uint32(len(body)))
	info = append(info, lengthField...)
	info = append(info, body...)

	line := buildLineProgram(t)

	return &dwarf.Sections{Info: info, Abbrev: abbrev, Line: line}
}

// buildLineProgram hand-assembles a minimal DWARF4 .debug_line unit with
// one file ("test.c") and two rows: (0x1000, line 1) and (0x1010, line 2),
// ended at 0x1010.
func buildLineProgram(t *testing.T) []byte {
	t.Helper()

	const (
		minInstLen    = 1
		maxOpsPerInst = 1
		defaultIsStmt = 1
		lineBase      = -5
		lineRange     = 14
		opcodeBase    = 13
	)

	var prologue []byte
	prologue = append(prologue, minInstLen, maxOpsPerInst, defaultIsStmt, byte(lineBase&0xff), lineRange, opcodeBase)
	prologue = append(prologue, make([]byte, opcodeBase-1)...) // standard_opcode_lengths, unused by this fixture

	prologue = append(prologue, 0x00) // include_directories: none

	prologue = append(prologue, []byte("test.c\x00")...)
	prologue = append(prologue, 0x00, 0x00, 0x00) // dir_index, mtime, length
	prologue = append(prologue, 0x00)             // file_names terminator

	var program []byte
	addrBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(addrBytes, 0x1000)
	program = append(program, 0x00, 0x09, 0x02) // DW_LNE_set_address
	program = append(program, addrBytes...)
	program = append(program, 0x01)       // DW_LNS_copy: row (0x1000, line 1)
	program = append(program, 0x02, 0x10) // DW_LNS_advance_pc 16
	program = append(program, 0x03, 0x01) // DW_LNS_advance_line +1
	program = append(program, 0x01)       // DW_LNS_copy: row (0x1010, line 2)
	program = append(program, 0x00, 0x01, 0x01) // DW_LNE_end_sequence

	headerLength := make([]byte, 4)
	binary.LittleEndian.PutUint32(headerLength, uint32(len(prologue)))

	var body []byte
	version := make([]byte, 2)
	binary.LittleEndian.PutUint16(version, 4)
	body = append(body, version...)
	body = append(body, headerLength...)
	body = append(body, prologue...)
	body = append(body, program...)

	unitLength := make([]byte, 4)
	binary.LittleEndian.PutUint32(unitLength, uint32(len(body)))

	var out []byte
	out = append(out, unitLength...)
	out = append(out, body...)
	return out
}

func TestLookupResolvesFunctionAndLine(t *testing.T) {
	sec := buildFixture(t)
	r, err := dwarf.NewReader(sec)
	test.ExpectSuccess(t, err)

	frames, err := r.Lookup(0x1008)
	test.ExpectSuccess(t, err)
	test.Equate(t, len(frames), 1)
	test.Equate(t, frames[0].Function, "myfunc")
	test.Equate(t, frames[0].File, "test.c")
	test.Equate(t, frames[0].Line, 1)
	test.Equate(t, frames[0].IsInline, false)
}

func TestLookupAdvancesToSecondRow(t *testing.T) {
	sec := buildFixture(t)
	r, err := dwarf.NewReader(sec)
	test.ExpectSuccess(t, err)

	frames, err := r.Lookup(0x1015)
	test.ExpectSuccess(t, err)
	test.Equate(t, len(frames), 1)
	test.Equate(t, frames[0].Line, 2)
}

func TestLookupOutsideAnyRangeReturnsNil(t *testing.T) {
	sec := buildFixture(t)
	r, err := dwarf.NewReader(sec)
	test.ExpectSuccess(t, err)

	frames, err := r.Lookup(0xdeadbeef)
	test.ExpectSuccess(t, err)
	test.Equate(t, len(frames), 0)
}

func TestFunctionAddressesFindsSubprogram(t *testing.T) {
	sec := buildFixture(t)
	r, err := dwarf.NewReader(sec)
	test.ExpectSuccess(t, err)

	addrs := r.FunctionAddresses("myfunc")
	test.Equate(t, len(addrs), 1)
	test.Equate(t, addrs[0], uint64(0x1000))
}

func TestLinesInRangeCoversBothRows(t *testing.T) {
	sec := buildFixture(t)
	r, err := dwarf.NewReader(sec)
	test.ExpectSuccess(t, err)

	entries := r.LinesInRange(0x1000, 0x1020)
	test.Equate(t, len(entries), 2)
	test.Equate(t, entries[0].Line, 1)
	test.Equate(t, entries[1].Line, 2)
}

// buildFixtureBigEndian is buildFixture's byte layout re-encoded with
// big-endian multi-byte fields and Sections.Order set accordingly,
// exercising the same PPC64/s390x-style container the endianness flag
// exists for.
func buildFixtureBigEndian(t *testing.T) *dwarf.Sections {
	t.Helper()

	abbrev := []byte{
		0x01, 0x11, 0x01, 0x03, 0x08, 0x10, 0x17, 0x00, 0x00,
		0x02, 0x2e, 0x00, 0x03, 0x08, 0x11, 0x01, 0x12, 0x06, 0x00, 0x00,
		0x00,
	}

	var die []byte
	die = append(die, 0x01)
	die = append(die, []byte("test.c\x00")...)
	die = append(die, 0x00, 0x00, 0x00, 0x00) // stmt_list

	die = append(die, 0x02)
	die = append(die, []byte("myfunc\x00")...)
	lowPC := make([]byte, 8)
	binary.BigEndian.PutUint64(lowPC, 0x1000)
	die = append(die, lowPC...)
	highPC := make([]byte, 4)
	binary.BigEndian.PutUint32(highPC, 0x20)
	die = append(die, highPC...)

	die = append(die, 0x00)

	var info []byte
	header := make([]byte, 11)
	binary.BigEndian.PutUint16(header[4:6], 4)
	header[10] = 8
	body := append(header[4:], die...)
	lengthField := make([]byte, 4)
	binary.BigEndian.PutUint32(lengthField, uint32(len(body)))
	info = append(info, lengthField...)
	info = append(info, body...)

	return &dwarf.Sections{Info: info, Abbrev: abbrev, Order: binary.BigEndian}
}

func TestLookupBigEndianContainer(t *testing.T) {
	sec := buildFixtureBigEndian(t)
	r, err := dwarf.NewReader(sec)
	test.ExpectSuccess(t, err)

	frames, err := r.Lookup(0x1008)
	test.ExpectSuccess(t, err)
	test.Equate(t, len(frames), 1)
	test.Equate(t, frames[0].Function, "myfunc")
}

// buildAltFixture hand-assembles a single-unit supplementary object
// (the .gnu_debugaltlink target) with one subprogram DIE, and returns
// both its Sections and the absolute .debug_info offset of that DIE, so
// a primary object's DW_FORM_GNU_ref_alt attribute can target it.
func buildAltFixture(t *testing.T) (*dwarf.Sections, int) {
	t.Helper()

	abbrev := []byte{
		0x01, 0x11, 0x01, 0x03, 0x08, 0x00, 0x00,
		0x02, 0x2e, 0x00, 0x03, 0x08, 0x00, 0x00,
		0x00,
	}

	var die []byte
	die = append(die, 0x01)
	die = append(die, []byte("alt.c\x00")...)
	subprogOffsetInDIE := len(die)
	die = append(die, 0x02)
	die = append(die, []byte("realname\x00")...)
	die = append(die, 0x00)

	header := make([]byte, 7)
	binary.LittleEndian.PutUint16(header[0:2], 4)
	header[6] = 8
	body := append(header, die...)
	lengthField := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthField, uint32(len(body)))
	info := append(append([]byte(nil), lengthField...), body...)

	subprogOffset := 4 + len(header) + subprogOffsetInDIE
	return &dwarf.Sections{Info: info, Abbrev: abbrev}, subprogOffset
}

// TestLookupResolvesThroughAltLink covers spec.md §4.6's supplementary
// object file support: a subprogram whose own name lives in the
// .gnu_debugaltlink target, reached via DW_FORM_GNU_ref_alt.
func TestLookupResolvesThroughAltLink(t *testing.T) {
	altSec, altOffset := buildAltFixture(t)

	abbrev := []byte{
		0x01, 0x11, 0x01, 0x03, 0x08, 0x00, 0x00,
		0x02, 0x2e, 0x00, 0x11, 0x01, 0x12, 0x06, 0x31, 0xa0, 0x3e, 0x00, 0x00,
		0x00,
	}

	var die []byte
	die = append(die, 0x01)
	die = append(die, []byte("main.c\x00")...)
	die = append(die, 0x02)
	lowPC := make([]byte, 8)
	binary.LittleEndian.PutUint64(lowPC, 0x2000)
	die = append(die, lowPC...)
	highPC := make([]byte, 4)
	binary.LittleEndian.PutUint32(highPC, 0x10)
	die = append(die, highPC...)
	originOff := make([]byte, 4)
	binary.LittleEndian.PutUint32(originOff, uint32(altOffset))
	die = append(die, originOff...)
	die = append(die, 0x00)

	header := make([]byte, 7)
	binary.LittleEndian.PutUint16(header[0:2], 4)
	header[6] = 8
	body := append(header, die...)
	lengthField := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthField, uint32(len(body)))
	info := append(append([]byte(nil), lengthField...), body...)

	sec := &dwarf.Sections{Info: info, Abbrev: abbrev, Alt: altSec}

	r, err := dwarf.NewReader(sec)
	test.ExpectSuccess(t, err)

	frames, err := r.Lookup(0x2008)
	test.ExpectSuccess(t, err)
	test.Equate(t, len(frames), 1)
	test.Equate(t, frames[0].Function, "realname")
}
