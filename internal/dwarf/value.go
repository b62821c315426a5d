package dwarf

import (
	"encoding/binary"

	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/leb128"
)

// valueKind tags which field of attrValue holds a decoded attribute's
// payload, since DWARF's attribute forms resolve to a handful of
// fundamentally different Go shapes.
type valueKind int

const (
	valNone valueKind = iota
	valUint
	valInt
	valBytes
	valString
	valFlag
	valRef    // offset into this unit's own .debug_info, already made global
	valRefAlt // offset into a .gnu_debugaltlink supplementary object's .debug_info
)

type attrValue struct {
	kind  valueKind
	form  Form
	u     uint64
	i     int64
	bytes []byte
	str   string
	flag  bool
}

// readAttr decodes one attribute's value at pos, according to its form,
// returning the decoded value and the number of bytes consumed. u is the
// owning unit, needed for address size, version-dependent form meaning,
// byte order, and the string/addr/rnglists indirection tables (DWARF5
// §7.5.6). The returned value always carries the form it was decoded
// from, so callers that need to distinguish a form's class (PCRanges'
// high_pc disambiguation, chiefly) don't have to guess from the value
// alone.
func readAttr(u *unit, data []byte, pos int, form Form) (attrValue, int, error) {
	v, n, err := readAttrValue(u, data, pos, form)
	if err == nil {
		v.form = form
	}
	return v, n, err
}

func readAttrValue(u *unit, data []byte, pos int, form Form) (attrValue, int, error) {
	order := u.order()
	switch form {
	case FormAddr:
		return attrValue{kind: valUint, u: u.readAddrField(data[pos:])}, u.addrSize, nil
	case FormData1, FormRef1, FormStrx1, FormAddrx1:
		return attrValue{kind: valUint, u: uint64(data[pos])}, 1, nil
	case FormData2, FormRef2, FormStrx2, FormAddrx2:
		return attrValue{kind: valUint, u: uint64(order.Uint16(data[pos:]))}, 2, nil
	case FormStrx3, FormAddrx3:
		return attrValue{kind: valUint, u: readUint24(order, data[pos:])}, 3, nil
	case FormData4, FormRef4, FormStrx4, FormAddrx4, FormRefSup4:
		return attrValue{kind: valUint, u: uint64(order.Uint32(data[pos:]))}, 4, nil
	case FormData8, FormRef8, FormRefSig8, FormRefSup8:
		return attrValue{kind: valUint, u: order.Uint64(data[pos:])}, 8, nil
	case FormData16:
		return attrValue{kind: valBytes, bytes: append([]byte(nil), data[pos:pos+16]...)}, 16, nil
	case FormSdata:
		v, n := leb128.DecodeSLEB128(data[pos:])
		return attrValue{kind: valInt, i: v}, n, nil
	case FormUdata, FormRefUdata, FormStrx, FormAddrx, FormLoclistx, FormRnglistx,
		FormGNUAddrIndex, FormGNUStrIndex:
		v, n := leb128.DecodeULEB128(data[pos:])
		return attrValue{kind: valUint, u: v}, n, nil
	case FormString:
		s, n := cstr(data[pos:])
		return attrValue{kind: valString, str: s}, n, nil
	case FormStrp, FormLineStrp:
		off := order.Uint32(data[pos:])
		s := u.stringFromSection(form, uint64(off))
		return attrValue{kind: valString, str: s}, 4, nil
	case FormGNUStrpAlt:
		// a string offset into the .gnu_debugaltlink supplementary
		// object's .debug_str, not this unit's own (spec.md §4.6).
		off := order.Uint32(data[pos:])
		return attrValue{kind: valString, str: u.altString(uint64(off))}, 4, nil
	case FormRefAddr:
		return attrValue{kind: valUint, u: uint64(order.Uint32(data[pos:]))}, 4, nil
	case FormGNURefAlt:
		// a DIE offset into the supplementary object's .debug_info,
		// resolved lazily through Sections.altDIEAt (spec.md §4.6).
		off := order.Uint32(data[pos:])
		return attrValue{kind: valRefAlt, u: uint64(off)}, 4, nil
	case FormSecOffset:
		return attrValue{kind: valUint, u: uint64(order.Uint32(data[pos:]))}, 4, nil
	case FormFlag:
		return attrValue{kind: valFlag, flag: data[pos] != 0}, 1, nil
	case FormFlagPresent:
		return attrValue{kind: valFlag, flag: true}, 0, nil
	case FormBlock1:
		n := int(data[pos])
		return attrValue{kind: valBytes, bytes: data[pos+1 : pos+1+n]}, 1 + n, nil
	case FormBlock2:
		n := int(order.Uint16(data[pos:]))
		return attrValue{kind: valBytes, bytes: data[pos+2 : pos+2+n]}, 2 + n, nil
	case FormBlock4:
		n := int(order.Uint32(data[pos:]))
		return attrValue{kind: valBytes, bytes: data[pos+4 : pos+4+n]}, 4 + n, nil
	case FormBlock, FormExprloc:
		n64, nn := leb128.DecodeULEB128(data[pos:])
		n := int(n64)
		return attrValue{kind: valBytes, bytes: data[pos+nn : pos+nn+n]}, nn + n, nil
	case FormImplicitConst:
		return attrValue{kind: valInt}, 0, nil
	case FormIndirect:
		f, n := leb128.DecodeULEB128(data[pos:])
		v, n2, err := readAttr(u, data, pos+n, Form(f))
		return v, n + n2, err
	default:
		return attrValue{}, 0, errs.Errorf(errs.DwarfUnsupportedForm, int(form), 0)
	}
}

// readUint24 reads a 3-byte unsigned value (DW_FORM_strx3/addrx3) in
// order's byte order; binary.ByteOrder has no native 3-byte accessor.
func readUint24(order binary.ByteOrder, b []byte) uint64 {
	if order == binary.BigEndian {
		return uint64(b[0])<<16 | uint64(b[1])<<8 | uint64(b[2])
	}
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16
}

func cstr(b []byte) (string, int) {
	end := 0
	for end < len(b) && b[end] != 0 {
		end++
	}
	if end < len(b) {
		return string(b[:end]), end + 1
	}
	return string(b[:end]), end
}

func (v attrValue) asUint() uint64 {
	switch v.kind {
	case valUint:
		return v.u
	case valInt:
		return uint64(v.i)
	}
	return 0
}

func (v attrValue) asString() string { return v.str }
func (v attrValue) asBool() bool     { return v.flag }

// isConstantClassForm reports whether form belongs to DWARF's "constant"
// attribute class rather than its "address" class. DW_AT_high_pc uses
// this distinction (DWARF5 §2.17.2): a constant-class value is an
// offset from low_pc, an address-class value is absolute.
func isConstantClassForm(form Form) bool {
	switch form {
	case FormData1, FormData2, FormData4, FormData8, FormData16, FormSdata, FormUdata, FormImplicitConst:
		return true
	default:
		return false
	}
}
