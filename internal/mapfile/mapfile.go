package mapfile

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jetsetilly/symtrace/internal/sortutil"
)

type entry struct {
	addr uint64
	name string
}

// Map is a parsed GNU ld -Map sibling file: an address-sorted list of
// `<addr> <name>` entries.
type Map struct {
	entries []entry
}

// candidateNames mirrors the teacher's findMapFile search, narrowed to
// two names in the binary's own directory: the binary's name with its
// extension replaced by ".map", then the full binary name with ".map"
// appended.
func candidateNames(binaryPath string) []string {
	dir := filepath.Dir(binaryPath)
	base := filepath.Base(binaryPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return []string{
		filepath.Join(dir, stem+".map"),
		binaryPath + ".map",
	}
}

// Load finds and parses binaryPath's companion .map file, if one exists.
func Load(binaryPath string) (*Map, error) {
	var f *os.File
	var err error
	for _, candidate := range candidateNames(binaryPath) {
		f, err = os.Open(candidate)
		if err == nil {
			break
		}
	}
	if f == nil {
		return nil, err
	}
	defer f.Close()

	m := &Map{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 64)
		if err != nil {
			continue
		}
		m.entries = append(m.entries, entry{addr: addr, name: fields[1]})
	}

	sortutil.Slice(m.entries, func(a, b entry) bool { return a.addr < b.addr })
	return m, nil
}

// Lookup returns the name of the entry whose address is the greatest
// one not exceeding pc, the same "walk until the next entry exceeds"
// semantics as the teacher's findEntry, expressed as a binary search
// since this table is kept address-sorted.
func (m *Map) Lookup(pc uint64) (string, bool) {
	if m == nil || len(m.entries) == 0 {
		return "", false
	}
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].addr > pc })
	if i == 0 {
		return "", false
	}
	return m.entries[i-1].name, true
}
