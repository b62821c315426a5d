package dwarf

import "github.com/jetsetilly/symtrace/internal/leb128"

// DIE is one decoded debugging information entry: its tag, its decoded
// attributes, and its children in document order (DWARF5 §2.3).
type DIE struct {
	Tag      Tag
	Offset   int
	attrs    map[Attr]attrValue
	Children []*DIE
	Parent   *DIE
	unit     *unit
}

func (d *DIE) Name() string {
	if v, ok := d.attrs[AttrName]; ok {
		return v.asString()
	}
	return ""
}

func (d *DIE) Uint(a Attr) (uint64, bool) {
	v, ok := d.attrs[a]
	if !ok {
		return 0, false
	}
	return v.asUint(), true
}

func (d *DIE) Bytes(a Attr) ([]byte, bool) {
	v, ok := d.attrs[a]
	if !ok || v.kind != valBytes {
		return nil, false
	}
	return v.bytes, true
}

func (d *DIE) Bool(a Attr) bool {
	v, ok := d.attrs[a]
	return ok && v.asBool()
}

// Ref resolves attribute a to whichever DIE it references: a
// DW_FORM_refN-family offset into this unit's own .debug_info, or a
// DW_FORM_GNU_ref_alt offset into the supplementary object's
// .debug_info when the module has one (spec.md §4.6). It returns nil
// when a isn't present or its target can't be found.
func (d *DIE) Ref(a Attr) *DIE {
	v, ok := d.attrs[a]
	if !ok {
		return nil
	}
	if v.kind == valRefAlt {
		return d.unit.sec.altDIEAt(int(v.u))
	}
	return d.unit.dieAt(int(v.asUint()))
}

// parseDIETree recursively decodes the DIE rooted at pos, honouring
// abbrev.children to know when to recurse, and DW_AT_sibling as a
// shortcut when present (not currently used to skip, since this reader
// always wants every descendant, but accepted harmlessly as an
// attribute like any other).
func parseDIETree(u *unit, data []byte, pos int) (*DIE, int, error) {
	start := pos
	code, n := leb128.DecodeULEB128(data[pos:])
	pos += n

	if code == 0 {
		// null entry: end of this sibling chain, no DIE produced
		return nil, pos, nil
	}

	decl, ok := u.abbrev[code]
	if !ok {
		return nil, pos, nil
	}

	d := &DIE{Tag: decl.tag, Offset: start, attrs: make(map[Attr]attrValue, len(decl.attrs)), unit: u}
	u.dieIndex[start] = d

	for _, a := range decl.attrs {
		if a.form == FormImplicitConst {
			d.attrs[a.attr] = attrValue{kind: valInt, i: a.implicitConst, form: FormImplicitConst}
			continue
		}
		v, n, err := readAttr(u, data, pos, a.form)
		if err != nil {
			return nil, pos, err
		}
		pos += n

		switch {
		case a.form == FormStrx || a.form == FormStrx1 || a.form == FormStrx2 ||
			a.form == FormStrx3 || a.form == FormStrx4 || a.form == FormGNUStrIndex:
			v = attrValue{kind: valString, str: u.strx(v.asUint()), form: a.form}
		case a.form == FormAddrx || a.form == FormAddrx1 || a.form == FormAddrx2 ||
			a.form == FormAddrx3 || a.form == FormAddrx4 || a.form == FormGNUAddrIndex:
			v = attrValue{kind: valUint, u: u.addrx(v.asUint()), form: a.form}
		case a.form == FormRef1 || a.form == FormRef2 || a.form == FormRef4 || a.form == FormRef8 || a.form == FormRefUdata:
			v = attrValue{kind: valRef, u: uint64(u.offset) + v.asUint(), form: a.form}
		}

		d.attrs[a.attr] = v

		switch a.attr {
		case AttrStrOffsetsBase:
			u.strOffsetsBase = v.asUint()
		case AttrAddrBase:
			u.addrBase = v.asUint()
		case AttrRnglistsBase:
			u.rnglistsBase = v.asUint()
		}
	}

	if decl.children {
		for {
			var child *DIE
			var err error
			child, pos, err = parseDIETree(u, data, pos)
			if err != nil {
				return nil, pos, err
			}
			if child == nil {
				break
			}
			child.Parent = d
			d.Children = append(d.Children, child)
		}
	}

	return d, pos, nil
}

// Root parses and returns u's single top-level DIE (always
// DW_TAG_compile_unit or DW_TAG_partial_unit).
func (u *unit) Root() (*DIE, error) {
	d, _, err := parseDIETree(u, u.sec.Info, u.rootDIEOffset)
	if err != nil {
		return nil, err
	}
	u.name = d.Name()
	if v, ok := d.attrs[AttrCompDir]; ok {
		u.compDir = v.asString()
	}
	if v, ok := d.attrs[AttrStmtList]; ok {
		u.stmtListOff = v.asUint()
		u.hasStmtList = true
	}
	return d, nil
}

// dieAt returns the DIE at the given .debug_info offset within this
// unit's own body, the common case for DW_AT_abstract_origin and
// DW_AT_specification references (cross-unit DW_FORM_ref_addr targets
// are not resolved, a documented simplification: producers almost
// always keep an inlined instance's origin in the same unit).
func (u *unit) dieAt(offset int) *DIE {
	return u.dieIndex[offset]
}

// Walk calls f for d and every descendant, depth-first, pre-order.
func Walk(d *DIE, f func(*DIE)) {
	f(d)
	for _, c := range d.Children {
		Walk(c, f)
	}
}
