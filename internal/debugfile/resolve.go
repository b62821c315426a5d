package debugfile

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/jetsetilly/symtrace/errs"
	"github.com/jetsetilly/symtrace/internal/crc"
	"github.com/jetsetilly/symtrace/internal/objfile"
	"github.com/jetsetilly/symtrace/internal/xzinflate"
	"github.com/jetsetilly/symtrace/view"
	"github.com/jetsetilly/symtrace/view/mmapview"
)

// Resolution carries whatever separate debug data Resolve managed to
// find for a module: a companion file mapped as its own View, or a raw
// in-memory image decoded from .gnu_debugdata.
type Resolution struct {
	File File
	Path string // empty when the data came from .gnu_debugdata

	// AltPath/AltFile are set when the resolved debug data in turn
	// points at a .gnu_debugaltlink supplementary object.
	AltFile File
	AltPath string
}

// File is the subset of objfile.File this package both consumes and
// returns, kept separate from the concrete type so tests can supply a
// fake.
type File = objfile.File

// DebugDirs lists the search roots checked for debuglink/build-id
// companions, in priority order, mirroring gdb's debug-directory list
// (spec.md §4.7's "search path" option).
var DebugDirs = []string{"/usr/lib/debug"}

// Resolve finds the best available source of DWARF data for f, whose own
// path on disk is binaryPath (used to resolve debuglink's directory-
// relative search and to locate a sibling dSYM bundle). extraDirs are
// searched after DebugDirs (a caller's WithDebugDirs option, spec.md
// §4.7's "search path" option).
func Resolve(f File, binaryPath string, extraDirs ...string) (*Resolution, error) {
	dirs := DebugDirs
	if len(extraDirs) > 0 {
		dirs = append(append([]string{}, DebugDirs...), extraDirs...)
	}
	if r, ok := resolveBuildID(f, dirs); ok {
		return finishResolution(r)
	}
	if r, ok := resolveDebugLink(f, binaryPath, dirs); ok {
		return finishResolution(r)
	}
	if r, ok := resolveMiniDebugInfo(f); ok {
		return finishResolution(r)
	}
	if r, ok := resolveDsym(f, binaryPath); ok {
		return finishResolution(r)
	}
	return nil, errs.Errorf(errs.DebugfileNotFound, binaryPath)
}

func finishResolution(r *Resolution) (*Resolution, error) {
	if r.File == nil {
		return r, nil
	}
	if path, altBuildID, ok := r.File.DebugAltLink(); ok {
		if altFile, altPath, aok := resolveAltByBuildID(path, altBuildID); aok {
			r.AltFile = altFile
			r.AltPath = altPath
		}
	}
	return r, nil
}

func resolveBuildID(f File, dirs []string) (*Resolution, bool) {
	id, ok := f.BuildID()
	if !ok || len(id) < 2 {
		return nil, false
	}
	hexID := hex.EncodeToString(id)
	for _, dir := range dirs {
		path := filepath.Join(dir, ".build-id", hexID[:2], hexID[2:]+".debug")
		if v, err := mmapview.Open(path); err == nil {
			if companion, err := objfile.Open(v); err == nil {
				return &Resolution{File: companion, Path: path}, true
			}
			v.Close()
		}
	}
	return nil, false
}

func resolveDebugLink(f File, binaryPath string, dirs []string) (*Resolution, bool) {
	name, wantCRC, ok := f.DebugLink()
	if !ok {
		return nil, false
	}
	dir := filepath.Dir(binaryPath)

	candidates := []string{
		filepath.Join(dir, name),
		filepath.Join(dir, ".debug", name),
	}
	for _, debugDir := range dirs {
		candidates = append(candidates, filepath.Join(debugDir, dir, name))
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if crc.CRC32(data) != wantCRC {
			continue
		}
		if v, err := mmapview.Open(path); err == nil {
			if companion, err := objfile.Open(v); err == nil {
				return &Resolution{File: companion, Path: path}, true
			}
			v.Close()
		}
	}
	return nil, false
}

func resolveDsym(f File, binaryPath string) (*Resolution, bool) {
	wantUUID, ok := f.UUID()
	if !ok {
		return nil, false
	}

	base := filepath.Base(binaryPath)
	dsymPath := binaryPath + ".dSYM/Contents/Resources/DWARF/" + base
	v, err := mmapview.Open(dsymPath)
	if err != nil {
		return nil, false
	}
	companion, err := objfile.Open(v)
	if err != nil {
		v.Close()
		return nil, false
	}
	gotUUID, ok := companion.UUID()
	if !ok || gotUUID != wantUUID {
		v.Close()
		return nil, false
	}
	return &Resolution{File: companion, Path: dsymPath}, true
}

// miniDebugInfoCap bounds the decompressed size of .gnu_debugdata; it is
// a reduced symbol-only image, never expected to exceed a few megabytes,
// so this is generous headroom against a corrupt or hostile section
// (SPEC_FULL.md's REDESIGN FLAGS resolution).
const miniDebugInfoCap = 64 << 20

func resolveMiniDebugInfo(f File) (*Resolution, bool) {
	data, ok := f.GNUDebugData()
	if !ok {
		return nil, false
	}
	decoded, err := xzinflate.Decompress(data, miniDebugInfoCap)
	if err != nil {
		return nil, false
	}
	companion, err := objfile.Open(view.Bytes(decoded))
	if err != nil {
		return nil, false
	}
	return &Resolution{File: companion}, true
}

func resolveAltByBuildID(path string, wantBuildID []byte) (File, string, bool) {
	v, err := mmapview.Open(path)
	if err != nil {
		return nil, "", false
	}
	companion, err := objfile.Open(v)
	if err != nil {
		v.Close()
		return nil, "", false
	}
	if gotID, ok := companion.BuildID(); ok && len(wantBuildID) > 0 {
		if hex.EncodeToString(gotID) != hex.EncodeToString(wantBuildID) {
			v.Close()
			return nil, "", false
		}
	}
	return companion, path, true
}
