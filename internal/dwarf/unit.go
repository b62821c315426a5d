package dwarf

import (
	"encoding/binary"

	"github.com/jetsetilly/symtrace/errs"
)

// Sections bundles the raw bytes of every DWARF section this reader
// consults, already decompressed by internal/objfile if they were
// zdebug/SHF_COMPRESSED. Alt holds the same bundle for a
// .gnu_debugaltlink supplementary object, when one was resolved
// (internal/debugfile), so DW_FORM_GNU_*_alt references can be followed.
// Order is the container's detected byte order (internal/objfile.File.
// ByteOrder); every multi-byte field in these sections is encoded that
// way, including on big-endian targets such as PPC64 and s390x
// (spec.md §6).
type Sections struct {
	Info       []byte
	Abbrev     []byte
	Str        []byte
	LineStr    []byte
	Line       []byte
	StrOffsets []byte
	Addr       []byte
	RngLists   []byte
	Ranges     []byte
	Order      binary.ByteOrder
	Alt        *Sections

	altDieIndex map[int]*DIE
}

func (sec *Sections) order() binary.ByteOrder {
	if sec.Order != nil {
		return sec.Order
	}
	return binary.LittleEndian
}

// altDIEAt resolves a DW_FORM_GNU_ref_alt offset into the supplementary
// object's .debug_info, parsing and indexing every one of its compile
// units the first time one is needed (spec.md §4.6's supplementary
// object file support).
func (sec *Sections) altDIEAt(offset int) *DIE {
	alt := sec.Alt
	if alt == nil {
		return nil
	}
	if alt.altDieIndex == nil {
		alt.altDieIndex = make(map[int]*DIE)
		if units, err := parseUnits(alt); err == nil {
			for _, u := range units {
				if _, err := u.Root(); err != nil {
					continue
				}
				for off, d := range u.dieIndex {
					alt.altDieIndex[off] = d
				}
			}
		}
	}
	return alt.altDieIndex[offset]
}

// unit is one parsed compile unit: its header fields, the abbreviation
// table it uses, and the indirection bases (DWARF5's .debug_str_offsets/
// .debug_addr/.debug_rnglists schemes) needed to resolve its strx/addrx/
// rnglistx-form attributes.
type unit struct {
	sec *Sections

	offset     int // byte offset of this unit's header in .debug_info
	length     int // length field value (unit body size, excluding the length field)
	end        int // offset+4+length (or +12 for 64-bit DWARF, unsupported here)
	version    uint16
	addrSize   int
	abbrevOff  uint64
	abbrev     abbrevTable

	strOffsetsBase uint64
	addrBase       uint64
	rnglistsBase   uint64

	rootDIEOffset int

	compDir string
	name    string

	dieIndex map[int]*DIE

	stmtListOff uint64
	hasStmtList bool
	lineParsed  bool
	lineEntries []LineEntry
	lineFiles   []string
}

// parseUnits walks every compile unit header in sec.Info, building its
// abbreviation table from sec.Abbrev, and returns them in file order.
func parseUnits(sec *Sections) ([]*unit, error) {
	var units []*unit
	pos := 0
	for pos < len(sec.Info) {
		u, err := parseUnitHeader(sec, pos)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
		pos = u.end
	}
	return units, nil
}

func parseUnitHeader(sec *Sections, pos int) (*unit, error) {
	start := pos
	if pos+4 > len(sec.Info) {
		return nil, errs.Errorf(errs.DwarfBadUnitHeader, pos)
	}
	order := sec.order()
	length := order.Uint32(sec.Info[pos:])
	pos += 4
	end := pos + int(length)
	if end > len(sec.Info) {
		return nil, errs.Errorf(errs.DwarfBadUnitHeader, pos)
	}

	if pos+2 > len(sec.Info) {
		return nil, errs.Errorf(errs.DwarfBadUnitHeader, pos)
	}
	version := order.Uint16(sec.Info[pos:])
	pos += 2

	u := &unit{sec: sec, offset: start, length: int(length), end: end, version: version, dieIndex: make(map[int]*DIE)}

	if version >= 5 {
		// DWARF5 §7.5.1.1: unit_type(1) address_size(1) abbrev_offset(4)
		if pos+6 > len(sec.Info) {
			return nil, errs.Errorf(errs.DwarfBadUnitHeader, pos)
		}
		pos++ // unit_type
		u.addrSize = int(sec.Info[pos])
		pos++
		u.abbrevOff = uint64(order.Uint32(sec.Info[pos:]))
		pos += 4
	} else {
		// DWARF2-4: abbrev_offset(4) address_size(1)
		if pos+5 > len(sec.Info) {
			return nil, errs.Errorf(errs.DwarfBadUnitHeader, pos)
		}
		u.abbrevOff = uint64(order.Uint32(sec.Info[pos:]))
		pos += 4
		u.addrSize = int(sec.Info[pos])
		pos++
	}

	table, err := parseAbbrevTable(sec.Abbrev, int(u.abbrevOff))
	if err != nil {
		return nil, err
	}
	u.abbrev = table
	u.rootDIEOffset = pos

	return u, nil
}

func (u *unit) order() binary.ByteOrder {
	return u.sec.order()
}

func (u *unit) readAddrField(b []byte) uint64 {
	switch u.addrSize {
	case 4:
		return uint64(u.order().Uint32(b))
	default:
		return u.order().Uint64(b)
	}
}

// stringFromSection resolves a DW_FORM_strp/line_strp 4-byte section
// offset into the actual string, reading from .debug_str or
// .debug_line_str depending on which form requested it.
func (u *unit) stringFromSection(form Form, off uint64) string {
	var sec []byte
	if form == FormLineStrp {
		sec = u.sec.LineStr
	} else {
		sec = u.sec.Str
	}
	if off >= uint64(len(sec)) {
		return ""
	}
	s, _ := cstr(sec[off:])
	return s
}

// altString resolves a DW_FORM_GNU_strp_alt offset into the supplementary
// object's .debug_str (spec.md §4.6); it returns "" when no alt object
// was resolved for this module.
func (u *unit) altString(off uint64) string {
	alt := u.sec.Alt
	if alt == nil || off >= uint64(len(alt.Str)) {
		return ""
	}
	s, _ := cstr(alt.Str[off:])
	return s
}

// strx resolves a DW_FORM_strx-family index through .debug_str_offsets
// into .debug_str, using the unit's DW_AT_str_offsets_base (DWARF5 §7.26).
func (u *unit) strx(index uint64) string {
	base := u.strOffsetsBase
	pos := base + index*4
	if pos+4 > uint64(len(u.sec.StrOffsets)) {
		return ""
	}
	off := u.order().Uint32(u.sec.StrOffsets[pos:])
	s, _ := cstr(u.sec.Str[off:])
	return s
}

// addrx resolves a DW_FORM_addrx-family index through .debug_addr, using
// the unit's DW_AT_addr_base (DWARF5 §7.27).
func (u *unit) addrx(index uint64) uint64 {
	base := u.addrBase
	pos := base + index*uint64(u.addrSize)
	if pos+uint64(u.addrSize) > uint64(len(u.sec.Addr)) {
		return 0
	}
	return u.readAddrField(u.sec.Addr[pos:])
}
