// Package doublearray implements the branching automaton at the heart of
// the trie: two parallel integer arrays (base, check) with a free list
// threaded through their negative values, and the relocation algorithm that
// repacks a child set when its preferred cells collide with another
// owner's.
package doublearray

import (
	"datrie/internal/trieerrors"
)

// Root is the fixed state index of the trie's root. Cell 0 is reserved as a
// bookkeeping header (it anchors the free list) and is never itself a
// branching or separate state.
const (
	Header = 0
	Root   = 1
)

// DoubleArray is the branching state machine: base[s] >= 0 and check[s] ==
// parent for a branching state; base[s] < 0 for a separate state, encoding
// -(tailHandle+1); check[s] < 0 identifies a free cell and threads the free
// list through base (prev) and check (next), each offset by one so that
// "no link" (index 0, the header) is distinguishable from a real index.
type DoubleArray struct {
	base    []int32
	check   []int32
	maxCode int32 // N, the alphabet size; valid trie codes span 0..maxCode
}

// New returns a DoubleArray sized for an alphabet of maxCode user symbols
// (trie codes 1..maxCode, plus the terminator 0), with just the header and
// root cells allocated. Cells are grown lazily as keys are inserted.
func New(maxCode int32) *DoubleArray {
	d := &DoubleArray{maxCode: maxCode}
	d.base = []int32{0, 1}
	d.check = []int32{0, 0}
	return d
}

// Len returns the current array length (number of cells, including the
// reserved header and root).
func (d *DoubleArray) Len() int32 { return int32(len(d.base)) }

// MaxCode returns the alphabet size N used to bound child scans.
func (d *DoubleArray) MaxCode() int32 { return d.maxCode }

// --- free list -------------------------------------------------------------

func (d *DoubleArray) isFree(t int32) bool {
	if t == Header || t == Root {
		return false
	}
	return d.check[t] < 0
}

func (d *DoubleArray) freeNext(t int32) int32 { return -d.check[t] - 1 }
func (d *DoubleArray) freePrev(t int32) int32 { return -d.base[t] - 1 }

func (d *DoubleArray) setFreeLink(t, prev, next int32) {
	d.base[t] = -(prev + 1)
	d.check[t] = -(next + 1)
}

// claim unlinks a free cell from the free list. The caller must then set
// base[t]/check[t] to their used values.
func (d *DoubleArray) claim(t int32) {
	prev := d.freePrev(t)
	next := d.freeNext(t)
	if prev == Header {
		d.base[Header] = next
	} else {
		d.check[prev] = -(next + 1)
	}
	if next == Header {
		d.check[Header] = prev
	} else {
		d.base[next] = -(prev + 1)
	}
}

// release returns a used cell to the tail of the free list.
func (d *DoubleArray) release(t int32) {
	last := d.check[Header]
	d.setFreeLink(t, last, Header)
	if last == Header {
		d.base[Header] = t
	} else {
		d.check[last] = -(t + 1)
	}
	d.check[Header] = t
}

// grow extends the arrays (doubling) until they hold at least minLen cells,
// weaving every newly added cell onto the free list in ascending order.
func (d *DoubleArray) grow(minLen int32) {
	newLen := int32(len(d.base))
	if newLen == 0 {
		newLen = 2
	}
	for newLen < minLen {
		newLen *= 2
	}
	oldLen := int32(len(d.base))
	nb := make([]int32, newLen)
	nc := make([]int32, newLen)
	copy(nb, d.base)
	copy(nc, d.check)
	d.base, d.check = nb, nc
	for i := oldLen; i < newLen; i++ {
		d.release(i)
	}
}

// --- transitions ------------------------------------------------------------

// Walk computes the transition from s on trie code c, accepting iff the
// target cell is in range and owned by s.
func (d *DoubleArray) Walk(s, c int32) (int32, bool) {
	t := d.base[s] + c
	if t < 0 || t >= int32(len(d.base)) {
		return 0, false
	}
	if d.check[t] != s {
		return 0, false
	}
	return t, true
}

// IsSeparate reports whether s is a separate state (its subtree has been
// collapsed into a tail block).
func (d *DoubleArray) IsSeparate(s int32) bool { return d.base[s] < 0 }

// TailHandle returns the tail handle encoded in a separate state's base.
// It is only meaningful when IsSeparate(s) is true.
func (d *DoubleArray) TailHandle(s int32) int32 { return -d.base[s] - 1 }

// Parent returns check[s], the owning parent of s.
func (d *DoubleArray) Parent(s int32) int32 { return d.check[s] }

// childCodes returns every trie code (0..maxCode, terminator included) for
// which s has a valid outgoing transition, ascending.
func (d *DoubleArray) childCodes(s int32) []int32 {
	var codes []int32
	for c := int32(0); c <= d.maxCode; c++ {
		if _, ok := d.Walk(s, c); ok {
			codes = append(codes, c)
		}
	}
	return codes
}

// HasChildren reports whether s (a branching state) has any outgoing
// transition, including on the terminator code.
func (d *DoubleArray) HasChildren(s int32) bool {
	if d.IsSeparate(s) {
		return false
	}
	for c := int32(0); c <= d.maxCode; c++ {
		if _, ok := d.Walk(s, c); ok {
			return true
		}
	}
	return false
}

// Children yields (code, target) for every child of s on a non-terminator
// code, ascending by code — the order the in-order walker visits them in.
func (d *DoubleArray) Children(s int32) []struct {
	Code, Target int32
} {
	var out []struct {
		Code, Target int32
	}
	for c := int32(1); c <= d.maxCode; c++ {
		if t, ok := d.Walk(s, c); ok {
			out = append(out, struct{ Code, Target int32 }{c, t})
		}
	}
	return out
}

// TerminalChild returns s's child on the terminator code 0, if any.
func (d *DoubleArray) TerminalChild(s int32) (int32, bool) { return d.Walk(s, 0) }

// --- mutation ---------------------------------------------------------------

// markBranch converts a freshly claimed cell into an empty branching state.
func (d *DoubleArray) markBranch(t, parent int32) {
	d.check[t] = parent
	d.base[t] = 0
}

// MarkSeparate converts a freshly claimed (or emptied) branching cell with
// no children into a separate state pointing at tailHandle.
func (d *DoubleArray) MarkSeparate(t int32, tailHandle int32) {
	d.base[t] = -(tailHandle + 1)
}

// ConvertToBranch turns a separate state back into an empty branching
// state, used when a tail split requires the state to grow real children.
func (d *DoubleArray) ConvertToBranch(t int32) {
	d.base[t] = 0
}

// EnsureChild returns the existing or newly created child of s on code c,
// relocating s's or the colliding owner's child set as needed. s must be a
// branching (non-separate) state.
func (d *DoubleArray) EnsureChild(s, c int32) (int32, error) {
	for {
		if t, ok := d.Walk(s, c); ok {
			return t, nil
		}
		t := d.base[s] + c
		if t >= 0 && t < int32(len(d.base)) && d.isFree(t) {
			d.claim(t)
			d.markBranch(t, s)
			return t, nil
		}
		if err := d.resolveCollision(s, c); err != nil {
			return 0, err
		}
	}
}

// resolveCollision relocates whichever child set is cheaper to move so
// that s can claim a cell for code c. Cells 0 and 1 are permanently
// reserved and can never be relocation targets, so a collision against
// either always relocates s itself. s's own set is also the one moved when s
// is a child of the colliding owner, so that s keeps its cell index.
func (d *DoubleArray) resolveCollision(s, c int32) error {
	t := d.base[s] + c
	if t >= int32(len(d.base)) {
		d.grow(t + 1)
		return nil
	}
	if t <= Root || d.check[t] < 0 {
		return d.relocateForNewChild(s, c)
	}
	other := d.check[t]
	sChildren := d.childCodes(s)
	otherChildren := d.childCodes(other)
	if len(sChildren) <= len(otherChildren) || d.check[s] == other {
		return d.relocateForNewChild(s, c)
	}
	return d.relocate(other, otherChildren)
}

func (d *DoubleArray) relocateForNewChild(s, c int32) error {
	codes := append(append([]int32(nil), d.childCodes(s)...), c)
	return d.relocate(s, codes)
}

// relocate moves parent's child set (codes, which for a self-relocation
// also contains the not-yet-existing code about to be added) to a freshly
// found base, re-parenting grandchildren as it goes.
func (d *DoubleArray) relocate(parent int32, codes []int32) error {
	oldBase := d.base[parent]
	newBase, err := d.findBase(codes)
	if err != nil {
		return err
	}
	for _, ci := range codes {
		oldCell := oldBase + ci
		if oldCell < 0 || oldCell >= int32(len(d.check)) || d.check[oldCell] != parent {
			continue // ci is the not-yet-existing new code; nothing to move
		}
		newCell := newBase + ci
		d.claim(newCell)
		d.check[newCell] = parent
		d.base[newCell] = d.base[oldCell]
		d.reparentGrandchildren(oldCell, newCell)
		d.release(oldCell)
	}
	d.base[parent] = newBase
	return nil
}

// reparentGrandchildren updates every grandchild's check pointer after the
// state formerly at oldCell has moved to newCell. base[newCell] already
// holds the (unchanged) base the grandchildren are addressed relative to.
func (d *DoubleArray) reparentGrandchildren(oldCell, newCell int32) {
	if d.base[newCell] < 0 {
		return // separate state: no children to re-parent
	}
	b := d.base[newCell]
	for g := int32(0); g <= d.maxCode; g++ {
		gc := b + g
		if gc < 0 || gc >= int32(len(d.check)) {
			continue
		}
		if d.check[gc] == oldCell {
			d.check[gc] = newCell
		}
	}
}

// findBase scans cells in ascending address order for a base such that
// base+codes[i] is a free cell inside the current arrays for every code,
// doubling the arrays and scanning again when no such base exists.
func (d *DoubleArray) findBase(codes []int32) (int32, error) {
	if len(codes) == 0 {
		return 0, trieerrors.New(trieerrors.FormatError, "relocate with no codes")
	}
	lead := codes[0]
	for {
		found := int32(-1)
		for idx := int32(2); idx < int32(len(d.check)); idx++ {
			if !d.isFree(idx) {
				continue
			}
			base := idx - lead
			if base < 0 {
				continue
			}
			ok := true
			for _, ci := range codes {
				cell := base + ci
				if cell < 0 || cell >= int32(len(d.check)) || !d.isFree(cell) {
					ok = false
					break
				}
			}
			if ok {
				found = base
				break
			}
		}
		if found >= 0 {
			return found, nil
		}
		d.grow(int32(len(d.base)) * 2)
	}
}

// --- deletion ----------------------------------------------------------------

// Release frees a single cell (separate or childless branching state) and
// returns it to the free list. Callers are responsible for walking the
// tree upward and releasing ancestors that become childless.
func (d *DoubleArray) Release(t int32) error {
	if t == Header || t == Root {
		return trieerrors.New(trieerrors.FormatError, "cannot release reserved cell")
	}
	d.release(t)
	return nil
}

// --- serialization -------------------------------------------------------

// Base and Check expose the raw arrays for internal/format to serialize
// verbatim; the free-list and separate-state encodings are already
// bit-identical to the on-disk layout described in spec.md section 6.1.
func (d *DoubleArray) Base() []int32  { return d.base }
func (d *DoubleArray) Check() []int32 { return d.check }

// FromArrays reconstructs a DoubleArray from a previously serialized
// (base, check) pair, validating the invariants from spec.md section 3.
func FromArrays(base, check []int32, maxCode int32) (*DoubleArray, error) {
	if len(base) != len(check) || len(base) < 2 {
		return nil, trieerrors.New(trieerrors.FormatError, "malformed double-array cell count")
	}
	d := &DoubleArray{base: base, check: check, maxCode: maxCode}
	n := int32(len(base))
	for t := int32(2); t < n; t++ {
		if check[t] < 0 {
			continue // free cell; validated by the free-list walk below
		}
		if check[t] >= n {
			return nil, trieerrors.New(trieerrors.FormatError, "check out of range")
		}
	}
	seen := make([]bool, n)
	steps := int32(0)
	for f := d.base[Header]; f != Header; f = d.freeNext(f) {
		if f < 0 || f >= n || seen[f] {
			return nil, trieerrors.New(trieerrors.FormatError, "cyclic free list")
		}
		seen[f] = true
		steps++
		if steps > n {
			return nil, trieerrors.New(trieerrors.FormatError, "cyclic free list")
		}
	}
	return d, nil
}
