package symtab_test

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/symtrace/internal/objfile"
	"github.com/jetsetilly/symtrace/internal/symtab"
	"github.com/jetsetilly/symtrace/test"
)

type fakeFile struct {
	syms     []objfile.Symbol
	sections map[string]objfile.Section
	data     map[string][]byte
}

func (f *fakeFile) Sections() []objfile.Section { return nil }
func (f *fakeFile) Section(name string) (objfile.Section, bool) {
	s, ok := f.sections[name]
	return s, ok
}
func (f *fakeFile) SectionData(s objfile.Section) ([]byte, error) { return f.data[s.Name], nil }
func (f *fakeFile) Symbols() ([]objfile.Symbol, error)            { return f.syms, nil }
func (f *fakeFile) BuildID() ([]byte, bool)                       { return nil, false }
func (f *fakeFile) DebugLink() (string, uint32, bool)             { return "", 0, false }
func (f *fakeFile) DebugAltLink() (string, []byte, bool)          { return "", nil, false }
func (f *fakeFile) GNUDebugData() ([]byte, bool)                  { return nil, false }
func (f *fakeFile) RequiresBaseAddress() bool                     { return false }
func (f *fakeFile) UUID() ([16]byte, bool)                        { return [16]byte{}, false }
func (f *fakeFile) Machine() string                                { return "fake" }
func (f *fakeFile) ByteOrder() binary.ByteOrder                    { return binary.LittleEndian }

var _ objfile.File = (*fakeFile)(nil)

func TestBuildAndLookup(t *testing.T) {
	f := &fakeFile{
		syms: []objfile.Symbol{
			{Name: "foo", Value: 0x1000, Size: 0x10, Kind: objfile.SymbolFunc},
			{Name: "bar", Value: 0x2000, Size: 0x20, Kind: objfile.SymbolFunc},
			{Name: "data1", Value: 0x3000, Size: 0x8, Kind: objfile.SymbolObject},
			{Name: "", Value: 0x4000, Size: 0x4, Kind: objfile.SymbolFunc}, // unnamed, skipped
			{Name: "sect", Value: 0x5000, Size: 0, Kind: objfile.SymbolKind(99)}, // unknown kind, skipped
		},
	}

	shard, err := symtab.Build(f, 0)
	test.ExpectSuccess(t, err == nil)
	test.Equate(t, shard.Len(), 3)

	sym, ok := shard.Lookup(0x1004)
	test.ExpectSuccess(t, ok)
	test.Equate(t, sym.Name, "foo")
	test.Equate(t, sym.Offset, uint64(4))

	_, ok = shard.Lookup(0x1020)
	test.ExpectSuccess(t, !ok)

	sym, ok = shard.Lookup(0x2000)
	test.ExpectSuccess(t, ok)
	test.Equate(t, sym.Name, "bar")

	_, ok = shard.Lookup(0x9000)
	test.ExpectSuccess(t, !ok)
}

func TestBuildWithBaseRelocation(t *testing.T) {
	f := &fakeFile{
		syms: []objfile.Symbol{
			{Name: "foo", Value: 0x100, Size: 0x10, Kind: objfile.SymbolFunc},
		},
	}
	shard, err := symtab.Build(f, 0x10000)
	test.ExpectSuccess(t, err == nil)

	sym, ok := shard.Lookup(0x10105)
	test.ExpectSuccess(t, ok)
	test.Equate(t, sym.Name, "foo")
	test.Equate(t, sym.Addr, uint64(0x10100))
}

func TestBuildResolvesPPC64OpdIndirection(t *testing.T) {
	opdData := make([]byte, 16)
	binary.BigEndian.PutUint64(opdData[0:], 0x7000) // descriptor at .opd+0 -> real entry 0x7000
	binary.BigEndian.PutUint64(opdData[8:], 0x7100)

	f := &fakeFile{
		syms: []objfile.Symbol{
			{Name: "func_a", Value: 0x6000, Size: 8, Kind: objfile.SymbolFunc}, // descriptor address
			{Name: "func_b", Value: 0x6008, Size: 8, Kind: objfile.SymbolFunc},
		},
		sections: map[string]objfile.Section{
			".opd": {Name: ".opd", Addr: 0x6000, Size: 16},
		},
		data: map[string][]byte{".opd": opdData},
	}

	shard, err := symtab.Build(f, 0)
	test.ExpectSuccess(t, err == nil)

	sym, ok := shard.Lookup(0x7000)
	test.ExpectSuccess(t, ok)
	test.Equate(t, sym.Name, "func_a")

	sym, ok = shard.Lookup(0x7100)
	test.ExpectSuccess(t, ok)
	test.Equate(t, sym.Name, "func_b")
}

func TestEmptyShardLookupMisses(t *testing.T) {
	f := &fakeFile{}
	shard, err := symtab.Build(f, 0)
	test.ExpectSuccess(t, err == nil)
	_, ok := shard.Lookup(0x1000)
	test.ExpectSuccess(t, !ok)
}
