package dwarf

import (
	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/leb128"
)

// LineEntry is one row of a decoded line number matrix: the PC it
// applies from, up to (but not including) the next entry's PC, and the
// source file/line it maps to (DWARF5 §6.2).
type LineEntry struct {
	Address  uint64
	File     string
	Line     int
	Column   int
	IsStmt   bool
	EndSeq   bool
}

const (
	lnsCopy            = 1
	lnsAdvancePC       = 2
	lnsAdvanceLine     = 3
	lnsSetFile         = 4
	lnsSetColumn       = 5
	lnsNegateStmt      = 6
	lnsSetBasicBlock   = 7
	lnsConstAddPC      = 8
	lnsFixedAdvancePC  = 9
	lnsSetPrologueEnd  = 10
	lnsSetEpilogueBegin = 11
	lnsSetISA          = 12

	lneEndSequence = 1
	lneSetAddress  = 2
	lneDefineFile  = 3 // DWARF <= 4 only
)

// parseLineProgram decodes the line number program at .debug_line offset
// stmtListOff, for the given compile unit (needed for its DWARF version,
// since the file/directory table format changed completely in DWARF5,
// and for .debug_line_str when forms reference it).
func parseLineProgram(u *unit, stmtListOff uint64) ([]LineEntry, []string, error) {
	data := u.sec.Line
	if stmtListOff >= uint64(len(data)) {
		return nil, nil, errs.Errorf(errs.DwarfLineProgram, stmtListOff, "offset out of range")
	}
	pos := int(stmtListOff)
	order := u.order()

	unitLength := order.Uint32(data[pos:])
	pos += 4
	progEnd := pos + int(unitLength)
	if progEnd > len(data) {
		return nil, nil, errs.Errorf(errs.DwarfLineProgram, stmtListOff, "truncated unit length")
	}

	version := order.Uint16(data[pos:])
	pos += 2

	if version >= 5 {
		pos += 2 // address_size(1) + segment_selector_size(1)
	}

	headerLength := order.Uint32(data[pos:])
	pos += 4
	programStart := pos + int(headerLength)

	minInstLen := int(data[pos])
	pos++
	maxOpsPerInst := 1
	if version >= 4 {
		maxOpsPerInst = int(data[pos])
		pos++
	}
	defaultIsStmt := data[pos] != 0
	pos++
	lineBase := int(int8(data[pos]))
	pos++
	lineRange := int(data[pos])
	pos++
	opcodeBase := int(data[pos])
	pos++

	stdOpcodeLengths := make([]int, opcodeBase)
	for i := 1; i < opcodeBase; i++ {
		stdOpcodeLengths[i] = int(data[pos])
		pos++
	}

	var files []string
	if version >= 5 {
		files = parseLineTableV5(u, data, &pos)
	} else {
		files = parseLineTableLegacy(u, data, &pos)
	}

	pos = programStart

	var entries []LineEntry
	addr := uint64(0)
	opIndex := 0
	file := 1
	line := 1
	column := 0
	isStmt := defaultIsStmt

	emit := func(endSeq bool) {
		name := ""
		if file >= 0 && file < len(files) {
			name = files[file]
		} else if version < 5 && file-1 >= 0 && file-1 < len(files) {
			name = files[file-1]
		}
		entries = append(entries, LineEntry{Address: addr, File: name, Line: line, Column: column, IsStmt: isStmt, EndSeq: endSeq})
	}

	advance := func(opAdvance int) {
		if maxOpsPerInst <= 1 {
			addr += uint64(minInstLen * opAdvance)
			return
		}
		addr += uint64(minInstLen * ((opIndex + opAdvance) / maxOpsPerInst))
		opIndex = (opIndex + opAdvance) % maxOpsPerInst
	}

	for pos < progEnd {
		op := data[pos]
		pos++

		switch {
		case op == 0:
			// extended opcode
			length64, n := leb128.DecodeULEB128(data[pos:])
			pos += n
			length := int(length64)
			sub := data[pos]
			switch sub {
			case lneEndSequence:
				emit(true)
				addr, opIndex, file, line, column, isStmt = 0, 0, 1, 1, 0, defaultIsStmt
			case lneSetAddress:
				addr = u.readAddrField(data[pos+1:])
			case lneDefineFile:
				// legacy inline file definition; name ignored beyond
				// advancing past it, since DWARF5 replaces this entirely.
			}
			pos += length
		case int(op) < opcodeBase:
			switch int(op) {
			case lnsCopy:
				emit(false)
			case lnsAdvancePC:
				adv, n := leb128.DecodeULEB128(data[pos:])
				pos += n
				advance(int(adv))
			case lnsAdvanceLine:
				d, n := leb128.DecodeSLEB128(data[pos:])
				pos += n
				line += int(d)
			case lnsSetFile:
				f, n := leb128.DecodeULEB128(data[pos:])
				pos += n
				file = int(f)
			case lnsSetColumn:
				c, n := leb128.DecodeULEB128(data[pos:])
				pos += n
				column = int(c)
			case lnsNegateStmt:
				isStmt = !isStmt
			case lnsConstAddPC:
				adjusted := 255 - opcodeBase
				advance(adjusted / lineRange)
			case lnsFixedAdvancePC:
				addr += uint64(u.order().Uint16(data[pos:]))
				pos += 2
				opIndex = 0
			default:
				// standard opcode this module doesn't special-case: skip
				// its declared number of ULEB128 operands.
				for i := 0; i < stdOpcodeLengths[op]; i++ {
					_, n := leb128.DecodeULEB128(data[pos:])
					pos += n
				}
			}
		default:
			adjusted := int(op) - opcodeBase
			advance(adjusted / lineRange)
			line += lineBase + adjusted%lineRange
			emit(false)
		}
	}

	return entries, files, nil
}

// ensureLines lazily parses this unit's line number program the first
// time its lines are needed, caching the result (most lookups only
// ever touch a handful of a module's many compile units).
func (u *unit) ensureLines() {
	if u.lineParsed {
		return
	}
	u.lineParsed = true
	if !u.hasStmtList {
		return
	}
	entries, files, err := parseLineProgram(u, u.stmtListOff)
	if err != nil {
		return
	}
	u.lineEntries = entries
	u.lineFiles = files
}

// lineAt returns the source file/line/column attributed to pc by this
// unit's line number program: the row with the greatest address not
// exceeding pc, within the same address sequence (spec.md §4.6).
func (u *unit) lineAt(pc uint64) (string, int, int) {
	u.ensureLines()

	var best *LineEntry
	for i := range u.lineEntries {
		e := &u.lineEntries[i]
		if e.Address > pc {
			continue
		}
		if best == nil || e.Address > best.Address {
			best = e
		}
	}
	if best == nil || best.EndSeq {
		return "", 0, 0
	}
	return best.File, best.Line, best.Column
}

// fileName returns this unit's idx'th entry of its line program's file
// table, resolved lazily like lineAt.
func (u *unit) fileName(idx int) string {
	u.ensureLines()
	if idx < 0 || idx >= len(u.lineFiles) {
		return ""
	}
	return u.lineFiles[idx]
}

func parseLineTableLegacy(u *unit, data []byte, pos *int) []string {
	// DWARF2-4: include_directories (NUL-terminated strings, empty
	// string terminates), then file_names (name + dir index + mtime +
	// length, as ULEB128 after the name; empty name terminates).
	var dirs []string
	for {
		s, n := cstr(data[*pos:])
		*pos += n
		if s == "" {
			break
		}
		dirs = append(dirs, s)
	}

	files := []string{""} // index 0 unused in DWARF<=4's 1-based file numbering
	for {
		s, n := cstr(data[*pos:])
		*pos += n
		if s == "" {
			break
		}
		dirIdx, n := leb128.DecodeULEB128(data[*pos:])
		*pos += n
		_, n = leb128.DecodeULEB128(data[*pos:]) // mtime
		*pos += n
		_, n = leb128.DecodeULEB128(data[*pos:]) // length
		*pos += n

		if dirIdx > 0 && int(dirIdx) <= len(dirs) {
			files = append(files, dirs[dirIdx-1]+"/"+s)
		} else {
			files = append(files, s)
		}
	}
	return files
}

const (
	lnctPath           = 1
	lnctDirectoryIndex = 2
)

// parseLineTableV5 decodes DWARF5's generalised directory/file entry
// format (§6.2.4.1): a format description (content type, form pairs)
// followed by that many entries, for both directories and files.
func parseLineTableV5(u *unit, data []byte, pos *int) []string {
	readEntryFormat := func() []abbrevAttr {
		count := int(data[*pos])
		*pos++
		fmts := make([]abbrevAttr, count)
		for i := 0; i < count; i++ {
			ct, n := leb128.DecodeULEB128(data[*pos:])
			*pos += n
			f, n := leb128.DecodeULEB128(data[*pos:])
			*pos += n
			fmts[i] = abbrevAttr{attr: Attr(ct), form: Form(f)}
		}
		return fmts
	}

	readEntries := func(fmts []abbrevAttr) []map[Attr]attrValue {
		count64, n := leb128.DecodeULEB128(data[*pos:])
		*pos += n
		entries := make([]map[Attr]attrValue, count64)
		for i := range entries {
			m := make(map[Attr]attrValue, len(fmts))
			for _, fd := range fmts {
				v, n, err := readAttr(u, data, *pos, fd.form)
				if err != nil {
					break
				}
				*pos += n
				m[fd.attr] = v
			}
			entries[i] = m
		}
		return entries
	}

	dirFormats := readEntryFormat()
	dirEntries := readEntries(dirFormats)
	_ = dirEntries

	fileFormats := readEntryFormat()
	fileEntries := readEntries(fileFormats)

	files := make([]string, len(fileEntries))
	for i, e := range fileEntries {
		if v, ok := e[Attr(lnctPath)]; ok {
			files[i] = v.asString()
		}
	}
	return files
}
