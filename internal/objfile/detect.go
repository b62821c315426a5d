package objfile

import (
	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/view"
)

func openContainer(v view.View) (File, error) {
	magic := make([]byte, 4)
	if err := readFull(v, 0, magic); err != nil {
		return nil, errs.Errorf(errs.ObjfileTruncated, "container", "magic")
	}

	switch {
	case isELF(magic):
		return openELF(v)
	case isPE(magic):
		return openPE(v)
	case isMachO(magic):
		return openMachO(v)
	case isXCOFF(magic):
		return openXCOFF(v)
	default:
		return nil, errs.Errorf(errs.ObjfileBadMagic, "<input>")
	}
}
