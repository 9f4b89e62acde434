// Package format reads and writes the on-disk trie layout described in
// spec.md section 6.1: three concatenated big-endian regions — AlphaMap,
// Tail, DoubleArray — each prefixed by its own magic; only the AlphaMap
// region also carries a format version.
package format

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"datrie/internal/alphamap"
	"datrie/internal/doublearray"
	"datrie/internal/tail"
	"datrie/internal/trie"
	"datrie/internal/trieerrors"

	"golang.org/x/exp/mmap"
)

var (
	alphaMagic = [4]byte{'A', 'L', 'P', 'M'}
	tailMagic  = [4]byte{'T', 'A', 'I', 'L'}
	darrMagic  = [4]byte{'D', 'A', 'R', 'R'}
)

const formatVersion = uint32(1)

// codeWidth is the byte width used to encode each trie code inside a tail
// suffix. Codes are plain int32s like every other integer in the format,
// so there is no separate narrow encoding to pick between.
const codeWidth = 4

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeI32(w io.Writer, v int32) error { return writeU32(w, uint32(v)) }

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

// Save writes t to w in the layout of spec.md section 6.1.
func Save(w io.Writer, t *trie.Trie) error {
	bw := bufio.NewWriter(w)
	if err := writeAlphaMap(bw, t.Alphabet()); err != nil {
		return trieerrors.Wrap(trieerrors.IoError, err, "save: alphamap region")
	}
	if err := writeTail(bw, t.TailPool()); err != nil {
		return trieerrors.Wrap(trieerrors.IoError, err, "save: tail region")
	}
	if err := writeDoubleArray(bw, t.DoubleArray()); err != nil {
		return trieerrors.Wrap(trieerrors.IoError, err, "save: double-array region")
	}
	if err := bw.Flush(); err != nil {
		return trieerrors.Wrap(trieerrors.IoError, err, "save: flush")
	}
	return nil
}

// SaveFile saves t to a new file at path, truncating any existing file.
func SaveFile(path string, t *trie.Trie) error {
	f, err := os.Create(path)
	if err != nil {
		return trieerrors.Wrap(trieerrors.IoError, err, "save: create %s", path)
	}
	defer f.Close()
	if err := Save(f, t); err != nil {
		return err
	}
	return f.Sync()
}

// Load reads a trie previously written by Save.
func Load(r io.Reader) (*trie.Trie, error) {
	alpha, err := readAlphaMap(r)
	if err != nil {
		return nil, err
	}
	tl, err := readTail(r)
	if err != nil {
		return nil, err
	}
	da, err := readDoubleArray(r, alpha.Size())
	if err != nil {
		return nil, err
	}
	size := countEntries(tl)
	return trie.FromParts(alpha, da, tl, size), nil
}

// countEntries reports how many live (non-free) blocks tl holds, used to
// reconstruct Trie.Len after a load without re-walking the double array.
func countEntries(tl *tail.Tail) int {
	n := 0
	for _, rec := range tl.Records() {
		if !rec.Free {
			n++
		}
	}
	return n
}

// LoadFile loads a trie from path using a memory-mapped reader, avoiding a
// full read into the process heap for large saved tries.
func LoadFile(path string) (*trie.Trie, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, trieerrors.Wrap(trieerrors.IoError, err, "load: open %s", path)
	}
	defer ra.Close()
	sr := io.NewSectionReader(ra, 0, int64(ra.Len()))
	return Load(sr)
}

// --- AlphaMap region ---------------------------------------------------------

func writeAlphaMap(w io.Writer, m *alphamap.AlphaMap) error {
	if _, err := w.Write(alphaMagic[:]); err != nil {
		return err
	}
	if err := writeU32(w, formatVersion); err != nil {
		return err
	}
	ranges := m.Ranges()
	if err := writeU32(w, uint32(len(ranges))); err != nil {
		return err
	}
	for _, r := range ranges {
		if err := writeU32(w, uint32(r[0])); err != nil {
			return err
		}
		if err := writeU32(w, uint32(r[1])); err != nil {
			return err
		}
	}
	return nil
}

func readAlphaMap(r io.Reader) (*alphamap.AlphaMap, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, trieerrors.Wrap(trieerrors.IoError, err, "load: alphamap header")
	}
	if magic != alphaMagic {
		return nil, trieerrors.New(trieerrors.FormatError, "alphamap: bad magic")
	}
	if _, err := readU32(r); err != nil { // version, currently unchecked beyond presence
		return nil, trieerrors.Wrap(trieerrors.FormatError, err, "alphamap: version")
	}
	count, err := readU32(r)
	if err != nil {
		return nil, trieerrors.Wrap(trieerrors.FormatError, err, "alphamap: range count")
	}
	pairs := make([][2]rune, 0, count)
	for i := uint32(0); i < count; i++ {
		lo, err := readU32(r)
		if err != nil {
			return nil, trieerrors.Wrap(trieerrors.FormatError, err, "alphamap: range lo")
		}
		hi, err := readU32(r)
		if err != nil {
			return nil, trieerrors.Wrap(trieerrors.FormatError, err, "alphamap: range hi")
		}
		if hi < lo {
			return nil, trieerrors.New(trieerrors.FormatError, "alphamap: inverted range")
		}
		pairs = append(pairs, [2]rune{rune(lo), rune(hi)})
	}
	return alphamap.FromRanges(pairs), nil
}

// --- Tail region -------------------------------------------------------------

func writeTail(w io.Writer, tl *tail.Tail) error {
	if _, err := w.Write(tailMagic[:]); err != nil {
		return err
	}
	records := tl.Records()
	if err := writeU32(w, uint32(len(records))); err != nil {
		return err
	}
	if err := writeI32(w, tl.FirstFree()); err != nil {
		return err
	}
	for _, rec := range records {
		nextFree := int32(-1)
		if rec.Free {
			nextFree = rec.NextFree
		}
		if err := writeI32(w, nextFree); err != nil {
			return err
		}
		if err := writeI32(w, rec.Value); err != nil {
			return err
		}
		if len(rec.Suffix) > 0xFFFF {
			return trieerrors.New(trieerrors.FormatError, "tail: suffix too long to encode")
		}
		if err := binary.Write(w, binary.BigEndian, uint16(len(rec.Suffix))); err != nil {
			return err
		}
		for _, code := range rec.Suffix {
			if err := writeI32(w, code); err != nil {
				return err
			}
		}
	}
	return nil
}

func readTail(r io.Reader) (*tail.Tail, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, trieerrors.Wrap(trieerrors.IoError, err, "load: tail header")
	}
	if magic != tailMagic {
		return nil, trieerrors.New(trieerrors.FormatError, "tail: bad magic")
	}
	numTails, err := readU32(r)
	if err != nil {
		return nil, trieerrors.Wrap(trieerrors.FormatError, err, "tail: count")
	}
	firstFree, err := readI32(r)
	if err != nil {
		return nil, trieerrors.Wrap(trieerrors.FormatError, err, "tail: first_free")
	}
	records := make([]tail.Record, 0, numTails)
	for i := uint32(0); i < numTails; i++ {
		nextFree, err := readI32(r)
		if err != nil {
			return nil, trieerrors.Wrap(trieerrors.FormatError, err, "tail: next_free")
		}
		value, err := readI32(r)
		if err != nil {
			return nil, trieerrors.Wrap(trieerrors.FormatError, err, "tail: value")
		}
		var length uint16
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, trieerrors.Wrap(trieerrors.FormatError, err, "tail: suffix length")
		}
		suffix := make([]int32, length)
		for j := range suffix {
			c, err := readI32(r)
			if err != nil {
				return nil, trieerrors.Wrap(trieerrors.FormatError, err, "tail: suffix code")
			}
			suffix[j] = c
		}
		records = append(records, tail.Record{
			NextFree: nextFree,
			Value:    value,
			Suffix:   suffix,
			Free:     nextFree >= 0,
		})
	}
	return tail.FromRecords(records, firstFree), nil
}

// --- DoubleArray region -------------------------------------------------------

func writeDoubleArray(w io.Writer, da *doublearray.DoubleArray) error {
	if _, err := w.Write(darrMagic[:]); err != nil {
		return err
	}
	base, check := da.Base(), da.Check()
	if err := writeU32(w, uint32(len(base))); err != nil {
		return err
	}
	for i := range base {
		if err := writeI32(w, base[i]); err != nil {
			return err
		}
		if err := writeI32(w, check[i]); err != nil {
			return err
		}
	}
	return nil
}

func readDoubleArray(r io.Reader, maxCode int32) (*doublearray.DoubleArray, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, trieerrors.Wrap(trieerrors.IoError, err, "load: double-array header")
	}
	if magic != darrMagic {
		return nil, trieerrors.New(trieerrors.FormatError, "doublearray: bad magic")
	}
	numCells, err := readU32(r)
	if err != nil {
		return nil, trieerrors.Wrap(trieerrors.FormatError, err, "doublearray: cell count")
	}
	base := make([]int32, numCells)
	check := make([]int32, numCells)
	for i := range base {
		b, err := readI32(r)
		if err != nil {
			return nil, trieerrors.Wrap(trieerrors.FormatError, err, "doublearray: base")
		}
		c, err := readI32(r)
		if err != nil {
			return nil, trieerrors.Wrap(trieerrors.FormatError, err, "doublearray: check")
		}
		base[i], check[i] = b, c
	}
	return doublearray.FromArrays(base, check, maxCode)
}
