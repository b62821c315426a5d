package objfile

import (
	"encoding/binary"

	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/view"
)

const (
	machoMagic32LE = 0xFEEDFACE
	machoMagic64LE = 0xFEEDFACF
	machoMagic32BE = 0xCEFAEDFE
	machoMagic64BE = 0xCFFAEDFE

	lcSegment    = 0x1
	lcSegment64  = 0x19
	lcSymtab     = 0x2
	lcUUID       = 0x1b
	lcDYSYMTAB   = 0xb

	nTypeMask = 0x0e
	nSect     = 0x0e

	mhDylib  = 0x6
	mhBundle = 0x8
)

// machoFile reads 32/64-bit Mach-O in either byte order, following
// blacktop-go-macho's types-nlist.go/types-commands.go layout (read for
// grounding; this is a from-scratch reader, not that library, for the
// same allocation/signal-safety reasons given in internal/objfile's
// package doc).
type machoFile struct {
	v view.View

	order     binary.ByteOrder
	is64      bool
	filetype  uint32
	cputype   uint32

	sections []machoSection
	symbols  []Symbol
	uuid     [16]byte
	hasUUID  bool
}

type machoSection struct {
	Section
}

func isMachO(magic []byte) bool {
	if len(magic) < 4 {
		return false
	}
	v := binary.BigEndian.Uint32(magic)
	switch v {
	case machoMagic32LE, machoMagic64LE, machoMagic32BE, machoMagic64BE:
		return true
	}
	v = binary.LittleEndian.Uint32(magic)
	switch v {
	case machoMagic32LE, machoMagic64LE, machoMagic32BE, machoMagic64BE:
		return true
	}
	return false
}

func openMachO(v view.View) (*machoFile, error) {
	magicBytes := make([]byte, 4)
	if err := readFull(v, 0, magicBytes); err != nil {
		return nil, errs.Errorf(errs.ObjfileTruncated, "Mach-O", "magic")
	}

	leMagic := binary.LittleEndian.Uint32(magicBytes)
	f := &machoFile{v: v}
	switch leMagic {
	case machoMagic32LE:
		f.order, f.is64 = binary.LittleEndian, false
	case machoMagic64LE:
		f.order, f.is64 = binary.LittleEndian, true
	default:
		beMagic := binary.BigEndian.Uint32(magicBytes)
		switch beMagic {
		case machoMagic32LE:
			f.order, f.is64 = binary.BigEndian, false
		case machoMagic64LE:
			f.order, f.is64 = binary.BigEndian, true
		default:
			return nil, errs.Errorf(errs.ObjfileBadMagic, "Mach-O")
		}
	}

	hdrSize := 28
	if f.is64 {
		hdrSize = 32
	}
	hdr := make([]byte, hdrSize)
	if err := readFull(v, 0, hdr); err != nil {
		return nil, errs.Errorf(errs.ObjfileTruncated, "Mach-O", "header")
	}

	f.cputype = f.order.Uint32(hdr[4:8])
	f.filetype = f.order.Uint32(hdr[12:16])
	ncmds := f.order.Uint32(hdr[16:20])

	off := int64(hdrSize)
	for i := uint32(0); i < ncmds; i++ {
		cmdHdr := make([]byte, 8)
		if err := readFull(v, off, cmdHdr); err != nil {
			break
		}
		cmd := f.order.Uint32(cmdHdr[0:4])
		cmdsize := f.order.Uint32(cmdHdr[4:8])

		switch cmd {
		case lcSegment, lcSegment64:
			f.readSegment(off, cmd == lcSegment64)
		case lcSymtab:
			f.readSymtab(off)
		case lcUUID:
			body := make([]byte, 16)
			if readFull(v, off+8, body) == nil {
				copy(f.uuid[:], body)
				f.hasUUID = true
			}
		}

		off += int64(cmdsize)
	}

	return f, nil
}

func (f *machoFile) readSegment(off int64, is64 bool) {
	var nsectsOff int64
	var sectionEntrySize int
	if is64 {
		nsectsOff, sectionEntrySize = 64, 80
	} else {
		nsectsOff, sectionEntrySize = 48, 68
	}

	nsectsBuf := make([]byte, 4)
	if readFull(f.v, off+nsectsOff, nsectsBuf) != nil {
		return
	}
	nsects := f.order.Uint32(nsectsBuf)

	segHdrSize := int64(56)
	if is64 {
		segHdrSize = 72
	}

	for i := uint32(0); i < nsects; i++ {
		secOff := off + segHdrSize + int64(i)*int64(sectionEntrySize)
		var name string
		var addr, size, fileoff uint64
		if is64 {
			buf := make([]byte, 80)
			if readFull(f.v, secOff, buf) != nil {
				continue
			}
			name = cstrFixed(buf[0:16])
			addr = f.order.Uint64(buf[32:40])
			size = f.order.Uint64(buf[40:48])
			fileoff = uint64(f.order.Uint32(buf[48:52]))
		} else {
			buf := make([]byte, 68)
			if readFull(f.v, secOff, buf) != nil {
				continue
			}
			name = cstrFixed(buf[0:16])
			addr = uint64(f.order.Uint32(buf[32:36]))
			size = uint64(f.order.Uint32(buf[36:40]))
			fileoff = uint64(f.order.Uint32(buf[40:44]))
		}

		f.sections = append(f.sections, machoSection{Section{
			Name:       name,
			Addr:       addr,
			Size:       size,
			FileOffset: fileoff,
			FileSize:   size,
		}})
	}
}

func (f *machoFile) readSymtab(off int64) {
	body := make([]byte, 16)
	if readFull(f.v, off+8, body) != nil {
		return
	}
	symoff := f.order.Uint32(body[0:4])
	nsyms := f.order.Uint32(body[4:8])
	stroff := f.order.Uint32(body[8:12])
	strsize := f.order.Uint32(body[12:16])

	strtab, err := f.v.Slice(int64(stroff), int64(strsize))
	if err != nil {
		return
	}

	entsize := 12
	if f.is64 {
		entsize = 16
	}
	raw := make([]byte, int(nsyms)*entsize)
	if readFull(f.v, int64(symoff), raw) != nil {
		return
	}

	for i := uint32(0); i < nsyms; i++ {
		e := raw[int(i)*entsize:]
		strx := f.order.Uint32(e[0:4])
		typ := e[4]
		var value uint64
		if f.is64 {
			value = f.order.Uint64(e[8:16])
		} else {
			value = uint64(f.order.Uint32(e[8:12]))
		}
		if typ&nTypeMask != nSect {
			continue
		}
		name := cstrAtFixed(strtab, int(strx))
		if name == "" {
			continue
		}
		f.symbols = append(f.symbols, Symbol{Name: name, Value: value, Kind: SymbolFunc})
	}
}

func (f *machoFile) Sections() []Section {
	out := make([]Section, len(f.sections))
	for i, s := range f.sections {
		out[i] = s.Section
	}
	return out
}

func (f *machoFile) Section(name string) (Section, bool) {
	for _, s := range f.sections {
		if s.Name == name {
			return s.Section, true
		}
	}
	return Section{}, false
}

func (f *machoFile) SectionData(s Section) ([]byte, error) {
	raw, err := f.v.Slice(int64(s.FileOffset), int64(s.FileSize))
	if err != nil {
		return nil, errs.Errorf(errs.ObjfileSectionRange, s.Name)
	}
	return raw, nil
}

func (f *machoFile) Symbols() ([]Symbol, error) { return f.symbols, nil }

func (f *machoFile) BuildID() ([]byte, bool)              { return nil, false }
func (f *machoFile) DebugLink() (string, uint32, bool)    { return "", 0, false }
func (f *machoFile) DebugAltLink() (string, []byte, bool) { return "", nil, false }
func (f *machoFile) GNUDebugData() ([]byte, bool)         { return nil, false }

func (f *machoFile) RequiresBaseAddress() bool {
	return f.filetype == mhDylib || f.filetype == mhBundle
}

func (f *machoFile) UUID() ([16]byte, bool) { return f.uuid, f.hasUUID }

func (f *machoFile) Machine() string {
	switch f.cputype {
	case 0x01000007:
		return "x86-64"
	case 0x0100000c:
		return "aarch64"
	default:
		return "unknown"
	}
}

func (f *machoFile) ByteOrder() binary.ByteOrder {
	return f.order
}
