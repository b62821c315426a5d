package dwarf

import (
	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/leb128"
)

// abbrevAttr is one (attribute, form) pair from a DIE's abbreviation
// declaration; implicitConst carries DW_FORM_implicit_const's value,
// which lives in the abbreviation table rather than the DIE itself
// (DWARF5 §7.5.3).
type abbrevAttr struct {
	attr          Attr
	form          Form
	implicitConst int64
}

// abbrevDecl is one entry of .debug_abbrev: what tag a DIE with this
// abbreviation code has, whether it has children, and its attribute list.
type abbrevDecl struct {
	tag      Tag
	children bool
	attrs    []abbrevAttr
}

// abbrevTable maps abbreviation code -> declaration, for one compile
// unit's slice of .debug_abbrev (a fresh table begins at the
// debug_abbrev_offset recorded in each CU header).
type abbrevTable map[uint64]abbrevDecl

// parseAbbrevTable reads one null-terminated sequence of abbreviation
// declarations starting at offset in data (DWARF5 §7.5.3).
func parseAbbrevTable(data []byte, offset int) (abbrevTable, error) {
	table := make(abbrevTable)
	pos := offset

	for pos < len(data) {
		code, n := leb128.DecodeULEB128(data[pos:])
		pos += n
		if code == 0 {
			break
		}

		if pos >= len(data) {
			return nil, errs.Errorf(errs.DwarfBadAbbrev, offset)
		}
		tag, n := leb128.DecodeULEB128(data[pos:])
		pos += n

		if pos >= len(data) {
			return nil, errs.Errorf(errs.DwarfBadAbbrev, offset)
		}
		children := data[pos] != 0
		pos++

		var attrs []abbrevAttr
		for {
			if pos >= len(data) {
				return nil, errs.Errorf(errs.DwarfBadAbbrev, offset)
			}
			a, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			if pos >= len(data) {
				return nil, errs.Errorf(errs.DwarfBadAbbrev, offset)
			}
			f, n := leb128.DecodeULEB128(data[pos:])
			pos += n

			var implicitConst int64
			if Form(f) == FormImplicitConst {
				implicitConst, n = leb128.DecodeSLEB128(data[pos:])
				pos += n
			}

			if a == 0 && f == 0 {
				break
			}
			attrs = append(attrs, abbrevAttr{attr: Attr(a), form: Form(f), implicitConst: implicitConst})
		}

		table[code] = abbrevDecl{tag: Tag(tag), children: children, attrs: attrs}
	}

	return table, nil
}
