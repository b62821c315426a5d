package objfile

import (
	"encoding/binary"
	"strconv"

	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/view"
)

// peFile reads enough of PE/COFF to serve MinGW-style binaries that carry
// DWARF in ordinary named sections (.debug_info etc.) rather than a PDB.
// Grounded on saferwall-pe's debug.go for the COFF header/section-table
// layout, adapted into this module's own signal-safe View abstraction
// rather than that library's byte-slice-owning Parser type.
//
// SPEC_FULL.md's REDESIGN FLAGS resolution: section classification is a
// single pass over an ordered match table (IsDebugSectionName in
// objfile.go, shared across every container format) rather than the
// multiple special-cased scans a naive port would do.
type peFile struct {
	v view.View

	order      binary.ByteOrder
	sections   []Section
	imageBase  uint64
	machine    uint16
	is64       bool

	symtabOff  uint32
	numSymbols uint32
	strtabOff  uint32
}

func isPE(magic []byte) bool {
	return len(magic) >= 2 && magic[0] == 'M' && magic[1] == 'Z'
}

func openPE(v view.View) (*peFile, error) {
	var lfanew [4]byte
	if err := readFull(v, 0x3c, lfanew[:]); err != nil {
		return nil, errs.Errorf(errs.ObjfileTruncated, "PE", "e_lfanew")
	}
	peOff := int64(binary.LittleEndian.Uint32(lfanew[:]))

	sig := make([]byte, 4)
	if err := readFull(v, peOff, sig); err != nil || sig[0] != 'P' || sig[1] != 'E' || sig[2] != 0 || sig[3] != 0 {
		return nil, errs.Errorf(errs.ObjfileBadMagic, "PE")
	}

	coff := make([]byte, 20)
	if err := readFull(v, peOff+4, coff); err != nil {
		return nil, errs.Errorf(errs.ObjfileTruncated, "PE", "COFF file header")
	}

	f := &peFile{v: v, order: binary.LittleEndian}
	f.machine = f.order.Uint16(coff[0:2])
	numSections := f.order.Uint16(coff[2:4])
	f.symtabOff = f.order.Uint32(coff[8:12])
	f.numSymbols = f.order.Uint32(coff[12:16])
	optHeaderSize := f.order.Uint16(coff[16:18])

	f.strtabOff = f.symtabOff + f.numSymbols*18

	if optHeaderSize > 0 {
		opt := make([]byte, optHeaderSize)
		if err := readFull(f.v, peOff+24, opt); err == nil && len(opt) >= 2 {
			magic := f.order.Uint16(opt[0:2])
			f.is64 = magic == 0x20b
			if f.is64 && len(opt) >= 32 {
				f.imageBase = f.order.Uint64(opt[24:32])
			} else if !f.is64 && len(opt) >= 32 {
				f.imageBase = uint64(f.order.Uint32(opt[28:32]))
			}
		}
	}

	sectionTableOff := peOff + 24 + int64(optHeaderSize)
	raw := make([]byte, int(numSections)*40)
	if err := readFull(f.v, sectionTableOff, raw); err != nil {
		return nil, errs.Errorf(errs.ObjfileTruncated, "PE", "section table")
	}

	// names longer than 8 bytes are stored as "/<decimal offset>" into the
	// COFF string table that follows the symbol table
	var strtab []byte
	var strtabLen [4]byte
	if f.symtabOff != 0 && readFull(f.v, int64(f.strtabOff), strtabLen[:]) == nil {
		strtab, _ = f.v.Slice(int64(f.strtabOff), int64(f.order.Uint32(strtabLen[:])))
	}

	for i := 0; i < int(numSections); i++ {
		e := raw[i*40:]
		name := cstrFixed(e[0:8])
		if len(name) > 1 && name[0] == '/' {
			if off, err := strconv.Atoi(name[1:]); err == nil {
				name = cstrAtFixed(strtab, off)
			}
		}
		s := Section{
			Name:       name,
			Addr:       uint64(f.order.Uint32(e[12:16])) + f.imageBase,
			Size:       uint64(f.order.Uint32(e[16:20])),
			FileOffset: uint64(f.order.Uint32(e[20:24])),
		}
		s.FileSize = s.Size
		f.sections = append(f.sections, s)
	}

	return f, nil
}

func cstrFixed(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

func (f *peFile) Sections() []Section { return f.sections }

func (f *peFile) Section(name string) (Section, bool) {
	for _, s := range f.sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

func (f *peFile) SectionData(s Section) ([]byte, error) {
	raw, err := f.v.Slice(int64(s.FileOffset), int64(s.FileSize))
	if err != nil {
		return nil, errs.Errorf(errs.ObjfileSectionRange, s.Name)
	}
	return raw, nil
}

func (f *peFile) Symbols() ([]Symbol, error) {
	if f.numSymbols == 0 {
		return nil, nil
	}
	raw := make([]byte, int(f.numSymbols)*18)
	if err := readFull(f.v, int64(f.symtabOff), raw); err != nil {
		return nil, nil
	}

	var strtabLen [4]byte
	_ = readFull(f.v, int64(f.strtabOff), strtabLen[:])
	totalStrtab := f.order.Uint32(strtabLen[:])
	strtab, _ := f.v.Slice(int64(f.strtabOff), int64(totalStrtab))

	var out []Symbol
	for i := 0; i < int(f.numSymbols); i++ {
		e := raw[i*18:]
		var name string
		if f.order.Uint32(e[0:4]) == 0 {
			off := f.order.Uint32(e[4:8])
			name = cstrAtFixed(strtab, int(off))
		} else {
			name = cstrFixed(e[0:8])
		}
		value := f.order.Uint32(e[8:12])
		storageClass := e[16]
		typ := f.order.Uint16(e[14:16])

		kind := SymbolUnknown
		if typ&0xf0 == 0x20 {
			kind = SymbolFunc
		} else if storageClass == 2 { // IMAGE_SYM_CLASS_EXTERNAL
			kind = SymbolObject
		}
		if kind != SymbolUnknown && name != "" {
			out = append(out, Symbol{Name: name, Value: uint64(value) + f.imageBase, Kind: kind})
		}
	}
	return out, nil
}

func cstrAtFixed(tab []byte, off int) string {
	if off < 0 || off >= len(tab) {
		return ""
	}
	end := off
	for end < len(tab) && tab[end] != 0 {
		end++
	}
	return string(tab[off:end])
}

func (f *peFile) BuildID() ([]byte, bool)               { return nil, false }
func (f *peFile) DebugLink() (string, uint32, bool)     { return "", 0, false }
func (f *peFile) DebugAltLink() (string, []byte, bool)  { return "", nil, false }
func (f *peFile) GNUDebugData() ([]byte, bool)          { return nil, false }
func (f *peFile) RequiresBaseAddress() bool             { return false }
func (f *peFile) UUID() ([16]byte, bool)                { return [16]byte{}, false }
func (f *peFile) Machine() string                       { return peMachineName(f.machine) }
func (f *peFile) ByteOrder() binary.ByteOrder           { return f.order }

func peMachineName(m uint16) string {
	switch m {
	case 0x8664:
		return "x86-64"
	case 0x14c:
		return "386"
	case 0xaa64:
		return "aarch64"
	default:
		return "unknown"
	}
}
