// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package dwarf

// Tag identifies a DIE's kind (DWARF5 §7.5.3, table 7.3). Only the
// subset this module's lookups touch is named; everything else is kept
// as its raw numeric Tag value.
type Tag uint64

const (
	TagCompileUnit        Tag = 0x11
	TagSubprogram         Tag = 0x2e
	TagInlinedSubroutine  Tag = 0x1d
	TagLexicalBlock       Tag = 0x0b
	TagSubroutineType     Tag = 0x15
)

// Attr identifies a DIE attribute (DWARF5 §7.5.4, table 7.5).
type Attr uint64

const (
	AttrSibling        Attr = 0x01
	AttrLocation       Attr = 0x02
	AttrName           Attr = 0x03
	AttrStmtList       Attr = 0x10
	AttrLowpc          Attr = 0x11
	AttrHighpc         Attr = 0x12
	AttrLanguage       Attr = 0x13
	AttrCompDir        Attr = 0x1b
	AttrConstValue     Attr = 0x1c
	AttrInline         Attr = 0x20
	AttrProducer       Attr = 0x25
	AttrPrototyped     Attr = 0x27
	AttrAbstractOrigin Attr = 0x31
	AttrCallFile       Attr = 0x58
	AttrCallLine       Attr = 0x59
	AttrCallColumn     Attr = 0x57
	AttrRanges         Attr = 0x55
	AttrStrOffsetsBase Attr = 0x72
	AttrAddrBase       Attr = 0x73
	AttrRnglistsBase   Attr = 0x74
	AttrLoclistsBase   Attr = 0x8c
	AttrSpecification  Attr = 0x47
	AttrDeclFile       Attr = 0x3a
	AttrDeclLine       Attr = 0x3b
	AttrGNUAllCallSites Attr = 0x2117
)

// Form identifies how an attribute's value is encoded (DWARF5 §7.5.6,
// table 7.6), including the GNU extension forms used by
// .gnu_debugaltlink supplementary objects (DW_FORM_GNU_*_alt, which
// never made it into a numbered DWARF revision but are in universal use
// by distro debuginfo packages).
type Form uint64

const (
	FormAddr         Form = 0x01
	FormBlock2       Form = 0x03
	FormBlock4       Form = 0x04
	FormData2        Form = 0x05
	FormData4        Form = 0x06
	FormData8        Form = 0x07
	FormString       Form = 0x08
	FormBlock        Form = 0x09
	FormBlock1       Form = 0x0a
	FormData1        Form = 0x0b
	FormFlag         Form = 0x0c
	FormSdata        Form = 0x0d
	FormStrp         Form = 0x0e
	FormUdata        Form = 0x0f
	FormRefAddr      Form = 0x10
	FormRef1         Form = 0x11
	FormRef2         Form = 0x12
	FormRef4         Form = 0x13
	FormRef8         Form = 0x14
	FormRefUdata     Form = 0x15
	FormIndirect     Form = 0x16
	FormSecOffset    Form = 0x17
	FormExprloc      Form = 0x18
	FormFlagPresent  Form = 0x19
	FormStrx         Form = 0x1a
	FormAddrx        Form = 0x1b
	FormRefSup4      Form = 0x1c
	FormStrpSup      Form = 0x1d
	FormData16       Form = 0x1e
	FormLineStrp     Form = 0x1f
	FormRefSig8      Form = 0x20
	FormImplicitConst Form = 0x21
	FormLoclistx     Form = 0x22
	FormRnglistx     Form = 0x23
	FormRefSup8      Form = 0x24
	FormStrx1        Form = 0x25
	FormStrx2        Form = 0x26
	FormStrx3        Form = 0x27
	FormStrx4        Form = 0x28
	FormAddrx1       Form = 0x29
	FormAddrx2       Form = 0x2a
	FormAddrx3       Form = 0x2b
	FormAddrx4       Form = 0x2c

	FormGNUAddrIndex    Form = 0x1f01
	FormGNUStrIndex     Form = 0x1f02
	FormGNURefAlt       Form = 0x1f20
	FormGNUStrpAlt      Form = 0x1f21
)
