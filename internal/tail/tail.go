// Package tail implements the suffix pool that collapses non-branching
// chains of double-array states into a single stored block, keyed by a
// small integer handle.
package tail

import "datrie/internal/trieerrors"

// block holds one suffix string (a sequence of trie codes, logically
// terminated by code 0) and its satellite value. Free blocks chain through
// nextFree instead of holding a suffix.
type block struct {
	suffix   []int32
	value    int32
	nextFree int32 // -1 when allocated, otherwise index of next free block (or -1 at list end)
	free     bool
}

// Tail is an append-mostly pool of blocks with a free list so handles can be
// reused after delete, exactly as the double-array reuses cells.
type Tail struct {
	blocks    []block
	firstFree int32 // -1 when the free list is empty
}

// New returns an empty Tail.
func New() *Tail {
	return &Tail{firstFree: -1}
}

// Handle identifies one tail block. Handles are 1-indexed so the zero value
// can mean "no handle".
type Handle int32

func (t *Tail) alloc() Handle {
	if t.firstFree != -1 {
		idx := t.firstFree
		t.firstFree = t.blocks[idx].nextFree
		t.blocks[idx] = block{nextFree: -1}
		return Handle(idx + 1)
	}
	t.blocks = append(t.blocks, block{nextFree: -1})
	return Handle(len(t.blocks))
}

// AddSuffix stores suffix (a sequence of trie codes, terminator excluded)
// and value in a fresh or reclaimed block and returns its handle.
func (t *Tail) AddSuffix(suffix []int32, value int32) Handle {
	h := t.alloc()
	b := &t.blocks[h-1]
	b.suffix = append([]int32(nil), suffix...)
	b.value = value
	return h
}

func (t *Tail) get(h Handle) (*block, error) {
	if h <= 0 || int(h) > len(t.blocks) || t.blocks[h-1].free {
		return nil, trieerrors.New(trieerrors.FormatError, "invalid tail handle")
	}
	return &t.blocks[h-1], nil
}

// GetSuffix returns the stored suffix for h.
func (t *Tail) GetSuffix(h Handle) ([]int32, error) {
	b, err := t.get(h)
	if err != nil {
		return nil, err
	}
	return b.suffix, nil
}

// SetSuffix overwrites the stored suffix for h.
func (t *Tail) SetSuffix(h Handle, suffix []int32) error {
	b, err := t.get(h)
	if err != nil {
		return err
	}
	b.suffix = append([]int32(nil), suffix...)
	return nil
}

// GetData returns the satellite value for h.
func (t *Tail) GetData(h Handle) (int32, error) {
	b, err := t.get(h)
	if err != nil {
		return 0, err
	}
	return b.value, nil
}

// SetData overwrites the satellite value for h.
func (t *Tail) SetData(h Handle, value int32) error {
	b, err := t.get(h)
	if err != nil {
		return err
	}
	b.value = value
	return nil
}

// Walk advances a cursor at position pos through the suffix stored at h,
// consuming trie code c. It returns the new position and true on a match,
// or false if c does not match the suffix at pos (including walking past
// the terminator).
func (t *Tail) Walk(h Handle, pos int, c int32) (int, bool) {
	b, err := t.get(h)
	if err != nil {
		return pos, false
	}
	if pos < 0 || pos > len(b.suffix) {
		return pos, false
	}
	var want int32
	if pos < len(b.suffix) {
		want = b.suffix[pos]
	} // pos == len(suffix): the implicit terminator
	if want != c {
		return pos, false
	}
	return pos + 1, true
}

// Delete returns h's block to the free list. The block's contents are
// cleared so stale data cannot leak through a dangling handle.
func (t *Tail) Delete(h Handle) error {
	if h <= 0 || int(h) > len(t.blocks) || t.blocks[h-1].free {
		return trieerrors.New(trieerrors.FormatError, "double free of tail handle")
	}
	idx := h - 1
	t.blocks[idx] = block{free: true, nextFree: t.firstFree}
	t.firstFree = int32(idx)
	return nil
}

// Len returns the number of blocks ever allocated, including freed ones;
// used only by serialization, which must preserve handle numbering.
func (t *Tail) Len() int32 { return int32(len(t.blocks)) }

// FirstFree exposes the free-list head for serialization.
func (t *Tail) FirstFree() int32 { return t.firstFree }

// Record is the on-disk shape of one block, used by internal/format.
type Record struct {
	NextFree int32
	Value    int32
	Suffix   []int32
	Free     bool
}

// Records returns every block (free and allocated) in handle order, for
// serialization.
func (t *Tail) Records() []Record {
	out := make([]Record, len(t.blocks))
	for i, b := range t.blocks {
		nf := b.nextFree
		if b.free {
			out[i] = Record{NextFree: nf, Free: true}
		} else {
			out[i] = Record{NextFree: -1, Value: b.value, Suffix: b.suffix}
		}
	}
	return out
}

// FromRecords reconstructs a Tail from records previously produced by
// Records, preserving handle numbers and the free list.
func FromRecords(records []Record, firstFree int32) *Tail {
	t := &Tail{firstFree: firstFree, blocks: make([]block, len(records))}
	for i, r := range records {
		if r.Free {
			t.blocks[i] = block{free: true, nextFree: r.NextFree}
		} else {
			t.blocks[i] = block{suffix: r.Suffix, value: r.Value, nextFree: -1}
		}
	}
	return t
}
