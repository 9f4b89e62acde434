// Package alphamap implements the bijection between Unicode code points and
// the dense interval of small non-negative integers ("trie codes") that the
// double-array and tail layers operate on.
package alphamap

import (
	"sort"

	"datrie/internal/trieerrors"
)

// Terminator is the trie code appended to every key before insertion; it is
// never assigned to a user code point.
const Terminator = 0

// codeRange is a closed, inclusive range of Unicode code points.
type codeRange struct {
	lo, hi rune
}

// AlphaMap maps Unicode code points to trie codes 1..N, reserving 0 as the
// string terminator and N+1 as the "max" sentinel used by range scans.
type AlphaMap struct {
	ranges []codeRange
	frozen bool

	toCode map[rune]int32
	toChar []rune // toChar[c] = code point for trie code c (1-indexed; toChar[0] unused)
}

// New returns an empty, unfrozen alphabet map.
func New() *AlphaMap {
	return &AlphaMap{}
}

// AddRange unions [lo, hi] into the ordered set of ranges, merging adjacent
// or overlapping intervals. It fails with AlphabetFrozen once the map has
// been frozen.
func (m *AlphaMap) AddRange(lo, hi rune) error {
	if m.frozen {
		return trieerrors.New(trieerrors.AlphabetFrozen, "")
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	m.ranges = append(m.ranges, codeRange{lo, hi})
	sort.Slice(m.ranges, func(i, j int) bool { return m.ranges[i].lo < m.ranges[j].lo })

	merged := m.ranges[:0:0]
	for _, r := range m.ranges {
		if n := len(merged); n > 0 && r.lo <= merged[n-1].hi+1 {
			if r.hi > merged[n-1].hi {
				merged[n-1].hi = r.hi
			}
			continue
		}
		merged = append(merged, r)
	}
	m.ranges = merged
	return nil
}

// Freeze precomputes the dense lookup tables. After Freeze, AddRange fails.
// Freeze is idempotent.
func (m *AlphaMap) Freeze() {
	if m.frozen {
		return
	}
	m.frozen = true
	m.toCode = make(map[rune]int32)
	var n int32
	for _, r := range m.ranges {
		for cp := r.lo; cp <= r.hi; cp++ {
			n++
			m.toCode[cp] = n
		}
	}
	m.toChar = make([]rune, n+1)
	for cp, c := range m.toCode {
		m.toChar[c] = cp
	}
}

// Frozen reports whether the map has been frozen.
func (m *AlphaMap) Frozen() bool { return m.frozen }

// Size returns the number of user code points mapped (N); trie codes in use
// span 1..Size, plus the reserved terminator 0 and max sentinel Size+1.
func (m *AlphaMap) Size() int32 {
	if !m.frozen {
		m.Freeze()
	}
	return int32(len(m.toChar)) - 1
}

// MaxSentinel returns N+1, the reserved sentinel used for range enumeration.
func (m *AlphaMap) MaxSentinel() int32 { return m.Size() + 1 }

// Encode returns the trie code for cp, or (0, false) if cp is unmapped.
func (m *AlphaMap) Encode(cp rune) (int32, bool) {
	if !m.frozen {
		m.Freeze()
	}
	c, ok := m.toCode[cp]
	return c, ok
}

// Decode returns the code point for trie code c. c must be in 1..Size(); the
// terminator and max sentinel have no code point and return 0, false.
func (m *AlphaMap) Decode(c int32) (rune, bool) {
	if !m.frozen {
		m.Freeze()
	}
	if c <= 0 || int(c) >= len(m.toChar) {
		return 0, false
	}
	return m.toChar[c], true
}

// EncodeString encodes every rune of s into trie codes, in order, then
// appends the terminator. It fails with UnmappedCharacter on the first code
// point not in the alphabet.
func (m *AlphaMap) EncodeString(s string) ([]int32, error) {
	codes, err := m.EncodeRunes(s)
	if err != nil {
		return nil, err
	}
	return append(codes, Terminator), nil
}

// EncodeRunes encodes every rune of s into trie codes, with no trailing
// terminator. Used for prefix-family queries, which never append one.
func (m *AlphaMap) EncodeRunes(s string) ([]int32, error) {
	if !m.frozen {
		m.Freeze()
	}
	codes := make([]int32, 0, len(s))
	for _, cp := range s {
		c, ok := m.Encode(cp)
		if !ok {
			return nil, trieerrors.NewUnmapped(cp)
		}
		codes = append(codes, c)
	}
	return codes, nil
}

// Ranges returns the frozen set of disjoint, sorted ranges as (lo, hi) pairs,
// for serialization.
func (m *AlphaMap) Ranges() [][2]rune {
	out := make([][2]rune, len(m.ranges))
	for i, r := range m.ranges {
		out[i] = [2]rune{r.lo, r.hi}
	}
	return out
}

// FromRanges reconstructs a frozen AlphaMap from (lo, hi) pairs read back
// from a saved image, in the order they were stored.
func FromRanges(pairs [][2]rune) *AlphaMap {
	m := New()
	for _, p := range pairs {
		m.ranges = append(m.ranges, codeRange{p[0], p[1]})
	}
	m.Freeze()
	return m
}

// Preset alphabets mirror the fixtures used throughout the original
// datrie test suite (string.printable, the ASCII lowercase alphabet used by
// the S1-S3 scenarios, Cyrillic lowercase used by S6).

// PresetASCIILower returns a frozen alphabet covering 'a'-'z'.
func PresetASCIILower() *AlphaMap {
	m := New()
	_ = m.AddRange('a', 'z')
	m.Freeze()
	return m
}

// PresetPrintableASCII returns a frozen alphabet covering the printable
// ASCII range 0x20-0x7E, matching Python's string.printable fixture.
func PresetPrintableASCII() *AlphaMap {
	m := New()
	_ = m.AddRange(0x20, 0x7E)
	m.Freeze()
	return m
}

// PresetByteRange returns a frozen alphabet covering [0x00, 0x7F], used by
// scenario S4.
func PresetByteRange() *AlphaMap {
	m := New()
	_ = m.AddRange(0x00, 0x7F)
	m.Freeze()
	return m
}

// PresetCyrillicLower returns a frozen alphabet covering the Russian
// lowercase letters 'а'-'я', used by scenario S6.
func PresetCyrillicLower() *AlphaMap {
	m := New()
	_ = m.AddRange('а', 'я')
	m.Freeze()
	return m
}
