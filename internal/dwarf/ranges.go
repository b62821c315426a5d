package dwarf

import (
	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/leb128"
)

// PCRange is one contiguous address range a DIE covers.
type PCRange struct {
	Low, High uint64
}

// PCRanges returns every PC range a DIE covers: either the single
// DW_AT_low_pc/DW_AT_high_pc pair, or the full expansion of its
// DW_AT_ranges list, whichever the DIE actually has (spec.md §4.6's
// range-evaluation requirement covering both DWARF<=4's .debug_ranges
// and DWARF5's .debug_rnglists).
func (d *DIE) PCRanges() ([]PCRange, error) {
	low, hasLow := d.Uint(AttrLowpc)
	highAttr, hasHigh := d.attrs[AttrHighpc]
	if hasLow && hasHigh {
		// DW_AT_high_pc is an offset from low_pc when its form belongs
		// to DWARF's constant class, and an absolute address when it
		// belongs to the address class (DWARF5 §2.17.2) — keyed off the
		// form that produced the value, not its magnitude.
		high := highAttr.asUint()
		if isConstantClassForm(highAttr.form) {
			high += low
		}
		return []PCRange{{Low: low, High: high}}, nil
	}

	if rangesAttr, ok := d.attrs[AttrRanges]; ok {
		// DWARF5 §2.17.3: the initial base address defaults to the
		// containing compile unit's DW_AT_low_pc when present.
		root := d
		for root.Parent != nil {
			root = root.Parent
		}
		base, _ := root.Uint(AttrLowpc)
		if d.unit.version >= 5 {
			return parseRngLists(d.unit, rangesAttr.asUint(), base)
		}
		return parseRangesLegacy(d.unit, rangesAttr.asUint(), base)
	}

	return nil, nil
}

// parseRangesLegacy decodes a .debug_ranges list (DWARF2-4 §2.17.3):
// pairs of addresses, terminated by a (0,0) pair, with a
// (0xFFFFFFFFFFFFFFFF, base) pair changing the base address for
// subsequent entries.
func parseRangesLegacy(u *unit, offset, base uint64) ([]PCRange, error) {
	data := u.sec.Ranges
	if offset >= uint64(len(data)) {
		return nil, errs.Errorf(errs.DwarfRangeBase, offset)
	}

	var out []PCRange
	pos := int(offset)
	for pos+16 <= len(data) {
		lo := u.readAddrField(data[pos:])
		hi := u.readAddrField(data[pos+u.addrSize:])
		pos += 2 * u.addrSize

		if lo == 0 && hi == 0 {
			break
		}
		maxAddr := uint64(1)<<(8*u.addrSize) - 1
		if lo == maxAddr {
			base = hi
			continue
		}
		out = append(out, PCRange{Low: base + lo, High: base + hi})
	}
	return out, nil
}

const (
	rleEndOfList    = 0x00
	rleBaseAddressx = 0x01
	rleStartxEndx   = 0x02
	rleStartxLength = 0x03
	rleOffsetPair   = 0x04
	rleBaseAddress  = 0x05
	rleStartEnd     = 0x06
	rleStartLength  = 0x07
)

// parseRngLists decodes a .debug_rnglists list (DWARF5 §2.17.3), whose
// entries are a kind byte followed by kind-specific ULEB128/address
// operands, much richer than the legacy format's fixed pair encoding.
func parseRngLists(u *unit, index, base uint64) ([]PCRange, error) {
	data := u.sec.RngLists
	offsetTableBase := u.rnglistsBase
	if offsetTableBase == 0 || offsetTableBase+index*4+4 > uint64(len(data)) {
		return nil, errs.Errorf(errs.DwarfRangeBase, index)
	}
	off := u.order().Uint32(data[offsetTableBase+index*4:])
	pos := int(offsetTableBase) + int(off)

	var out []PCRange

	for pos < len(data) {
		kind := data[pos]
		pos++
		switch kind {
		case rleEndOfList:
			return out, nil
		case rleBaseAddressx:
			idx, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			base = u.addrx(idx)
		case rleStartxEndx:
			sIdx, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			eIdx, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			out = append(out, PCRange{Low: u.addrx(sIdx), High: u.addrx(eIdx)})
		case rleStartxLength:
			sIdx, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			length, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			s := u.addrx(sIdx)
			out = append(out, PCRange{Low: s, High: s + length})
		case rleOffsetPair:
			lo, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			hi, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			out = append(out, PCRange{Low: base + lo, High: base + hi})
		case rleBaseAddress:
			base = u.readAddrField(data[pos:])
			pos += u.addrSize
		case rleStartEnd:
			lo := u.readAddrField(data[pos:])
			pos += u.addrSize
			hi := u.readAddrField(data[pos:])
			pos += u.addrSize
			out = append(out, PCRange{Low: lo, High: hi})
		case rleStartLength:
			lo := u.readAddrField(data[pos:])
			pos += u.addrSize
			length, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			out = append(out, PCRange{Low: lo, High: lo + length})
		default:
			return out, nil
		}
	}
	return out, nil
}
