// Package trie composes an alphamap.AlphaMap, a doublearray.DoubleArray and
// a tail.Tail into the keyed, ordered associative container described by
// spec.md: insert, lookup, delete, the prefix family, serialization and
// in-order enumeration.
package trie

import (
	"strings"

	"datrie/internal/alphamap"
	"datrie/internal/doublearray"
	"datrie/internal/tail"
	"datrie/internal/trieerrors"
)

// Trie is a persistent, ordered map from Unicode strings to signed 32-bit
// integers. The zero value is not usable; construct with New or Load.
type Trie struct {
	alpha *alphamap.AlphaMap
	da    *doublearray.DoubleArray
	tl    *tail.Tail
	size  int
}

// New constructs an empty Trie over alpha, freezing it if it is not already
// frozen.
func New(alpha *alphamap.AlphaMap) *Trie {
	alpha.Freeze()
	return &Trie{
		alpha: alpha,
		da:    doublearray.New(alpha.Size()),
		tl:    tail.New(),
	}
}

// FromParts reconstructs a Trie from its three components, as produced by a
// format load. The caller is responsible for having validated them.
func FromParts(alpha *alphamap.AlphaMap, da *doublearray.DoubleArray, tl *tail.Tail, size int) *Trie {
	return &Trie{alpha: alpha, da: da, tl: tl, size: size}
}

// Alphabet, DoubleArray and TailPool expose the underlying components for
// internal/format to serialize.
func (t *Trie) Alphabet() *alphamap.AlphaMap       { return t.alpha }
func (t *Trie) DoubleArray() *doublearray.DoubleArray { return t.da }
func (t *Trie) TailPool() *tail.Tail               { return t.tl }

// Len returns the number of stored keys.
func (t *Trie) Len() int { return t.size }

func (t *Trie) decodeKey(codes []int32) string {
	var sb strings.Builder
	sb.Grow(len(codes))
	for _, c := range codes {
		if cp, ok := t.alpha.Decode(c); ok {
			sb.WriteRune(cp)
		}
	}
	return sb.String()
}

func equalCodes(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func commonPrefixLen(a, b []int32) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// residualAfter returns full[i+1:] with its trailing implicit terminator
// stripped — the bytes a tail block actually stores. full always ends with
// the terminator code 0 at its final index.
func residualAfter(full []int32, i int) []int32 {
	if i+1 >= len(full) {
		return nil
	}
	return append([]int32(nil), full[i+1:len(full)-1]...)
}

// Insert stores value under key, overwriting any existing value. It fails
// with UnmappedCharacter if key contains a code point outside the alphabet.
func (t *Trie) Insert(key string, value int32) error {
	codes, err := t.alpha.EncodeString(key)
	if err != nil {
		return err
	}

	s := int32(doublearray.Root)
	i := 0
	for i < len(codes) {
		next, ok := t.da.Walk(s, codes[i])
		if !ok {
			return t.insertFresh(s, codes, i, value)
		}
		if t.da.IsSeparate(next) {
			if codes[i] == alphamap.Terminator {
				// Reached via the terminator transition: key is already
				// stored here, so this is an overwrite.
				return t.tl.SetData(tail.Handle(t.da.TailHandle(next)), value)
			}
			return t.insertSplit(next, codes, i+1, value)
		}
		s = next
		i++
	}
	return trieerrors.New(trieerrors.FormatError, "insert: walk exhausted key without reaching a terminal state")
}

// insertFresh handles the case where codes[i] has no transition at all from
// s: a brand new separate child is created holding the rest of the key.
func (t *Trie) insertFresh(s int32, codes []int32, i int, value int32) error {
	child, err := t.da.EnsureChild(s, codes[i])
	if err != nil {
		return err
	}
	handle := t.tl.AddSuffix(residualAfter(codes, i), value)
	t.da.MarkSeparate(child, int32(handle))
	t.size++
	return nil
}

// insertSplit handles reaching an existing separate state: sepState was
// reached by consuming codes[pos-1]; codes[pos:] is the new key's residual.
func (t *Trie) insertSplit(sepState int32, codes []int32, pos int, value int32) error {
	handle := tail.Handle(t.da.TailHandle(sepState))
	oldSuffix, err := t.tl.GetSuffix(handle)
	if err != nil {
		return err
	}
	oldValue, err := t.tl.GetData(handle)
	if err != nil {
		return err
	}
	oldFull := append(append([]int32(nil), oldSuffix...), alphamap.Terminator)
	newFull := codes[pos:]

	p := commonPrefixLen(oldFull, newFull)
	if p == len(oldFull) && p == len(newFull) {
		// Identical key: overwrite in place.
		return t.tl.SetData(handle, value)
	}
	if p >= len(oldFull) || p >= len(newFull) {
		return trieerrors.New(trieerrors.FormatError, "insert: divergent suffixes share no distinguishing code")
	}

	t.da.ConvertToBranch(sepState)
	cur := sepState
	for _, code := range oldFull[:p] {
		cur, err = t.da.EnsureChild(cur, code)
		if err != nil {
			return err
		}
	}

	oldChild, err := t.da.EnsureChild(cur, oldFull[p])
	if err != nil {
		return err
	}
	t.da.MarkSeparate(oldChild, int32(handle))
	if err := t.tl.SetSuffix(handle, residualAfter(oldFull, p)); err != nil {
		return err
	}
	if err := t.tl.SetData(handle, oldValue); err != nil {
		return err
	}

	newChild, err := t.da.EnsureChild(cur, newFull[p])
	if err != nil {
		return err
	}
	newHandle := t.tl.AddSuffix(residualAfter(newFull, p), value)
	t.da.MarkSeparate(newChild, int32(newHandle))

	t.size++
	return nil
}

// Get returns the value stored for key, or a KeyNotFound error.
func (t *Trie) Get(key string) (int32, error) {
	codes, err := t.alpha.EncodeString(key)
	if err != nil {
		return 0, err
	}
	s := int32(doublearray.Root)
	for i := 0; i < len(codes); i++ {
		next, ok := t.da.Walk(s, codes[i])
		if !ok {
			return 0, trieerrors.New(trieerrors.KeyNotFound, key)
		}
		if t.da.IsSeparate(next) {
			handle := tail.Handle(t.da.TailHandle(next))
			suffix, err := t.tl.GetSuffix(handle)
			if err != nil {
				return 0, err
			}
			rest := codes[i+1:]
			if codes[i] == alphamap.Terminator {
				// Reached via the terminator transition: the key ends here,
				// so there is no extra terminator to reconstruct and rest is
				// already empty.
				if len(suffix) != 0 || len(rest) != 0 {
					return 0, trieerrors.New(trieerrors.KeyNotFound, key)
				}
				return t.tl.GetData(handle)
			}
			full := append(append([]int32(nil), suffix...), alphamap.Terminator)
			if !equalCodes(full, rest) {
				return 0, trieerrors.New(trieerrors.KeyNotFound, key)
			}
			return t.tl.GetData(handle)
		}
		s = next
	}
	return 0, trieerrors.New(trieerrors.KeyNotFound, key)
}

// GetOr returns the value for key, or fallback if key is absent. Any error
// other than KeyNotFound is still surfaced.
func (t *Trie) GetOr(key string, fallback int32) (int32, error) {
	v, err := t.Get(key)
	if err != nil {
		if trieerrors.Is(err, trieerrors.KeyNotFound) {
			return fallback, nil
		}
		return 0, err
	}
	return v, nil
}

// Contains reports whether key is stored.
func (t *Trie) Contains(key string) bool {
	_, err := t.Get(key)
	return err == nil
}

// Delete removes key, freeing its tail block and any double-array state
// that becomes childless as a result, walking upward until a still-shared
// ancestor or the root is reached.
func (t *Trie) Delete(key string) error {
	codes, err := t.alpha.EncodeString(key)
	if err != nil {
		return err
	}
	s := int32(doublearray.Root)
	for i := 0; i < len(codes); i++ {
		next, ok := t.da.Walk(s, codes[i])
		if !ok {
			return trieerrors.New(trieerrors.KeyNotFound, key)
		}
		if t.da.IsSeparate(next) {
			handle := tail.Handle(t.da.TailHandle(next))
			suffix, err := t.tl.GetSuffix(handle)
			if err != nil {
				return err
			}
			rest := codes[i+1:]
			if codes[i] == alphamap.Terminator {
				// Reached via the terminator transition: the key ends here,
				// so there is no extra terminator to reconstruct and rest is
				// already empty.
				if len(suffix) != 0 || len(rest) != 0 {
					return trieerrors.New(trieerrors.KeyNotFound, key)
				}
			} else {
				full := append(append([]int32(nil), suffix...), alphamap.Terminator)
				if !equalCodes(full, rest) {
					return trieerrors.New(trieerrors.KeyNotFound, key)
				}
			}
			if err := t.tl.Delete(handle); err != nil {
				return err
			}
			if err := t.da.Release(next); err != nil {
				return err
			}
			t.releaseChildlessAncestors(s)
			t.size--
			return nil
		}
		s = next
	}
	return trieerrors.New(trieerrors.KeyNotFound, key)
}

// Pop removes key and returns the value it held, or a KeyNotFound error if
// it was absent.
func (t *Trie) Pop(key string) (int32, error) {
	v, err := t.Get(key)
	if err != nil {
		return 0, err
	}
	if err := t.Delete(key); err != nil {
		return 0, err
	}
	return v, nil
}

// PopOr removes key and returns its value, or fallback if key was absent.
func (t *Trie) PopOr(key string, fallback int32) (int32, error) {
	v, err := t.Pop(key)
	if err != nil {
		if trieerrors.Is(err, trieerrors.KeyNotFound) {
			return fallback, nil
		}
		return 0, err
	}
	return v, nil
}

// Clear removes every stored key, resetting the trie to the same state as
// a freshly constructed one over the same alphabet.
func (t *Trie) Clear() {
	t.da = doublearray.New(t.alpha.Size())
	t.tl = tail.New()
	t.size = 0
}

func (t *Trie) releaseChildlessAncestors(from int32) {
	cur := from
	for cur != doublearray.Root {
		if t.da.HasChildren(cur) {
			return
		}
		parent := t.da.Parent(cur)
		_ = t.da.Release(cur)
		cur = parent
	}
}

// Cursor returns an in-order cursor over the whole trie.
func (t *Trie) Cursor() *Cursor {
	return newCursorFromState(t, doublearray.Root, nil)
}

// IterPrefix returns a cursor enumerating exactly the stored keys that
// begin with prefix, in ascending trie-code order.
func (t *Trie) IterPrefix(prefix string) (*Cursor, error) {
	codes, err := t.alpha.EncodeRunes(prefix)
	if err != nil {
		return nil, err
	}
	s := int32(doublearray.Root)
	var path []int32
	for i := 0; i < len(codes); i++ {
		next, ok := t.da.Walk(s, codes[i])
		if !ok {
			return newCursorEmpty(t), nil
		}
		if t.da.IsSeparate(next) {
			handle := tail.Handle(t.da.TailHandle(next))
			suffix, err := t.tl.GetSuffix(handle)
			if err != nil {
				return nil, err
			}
			remaining := codes[i+1:]
			if len(remaining) > len(suffix) || !equalCodes(remaining, suffix[:len(remaining)]) {
				return newCursorEmpty(t), nil
			}
			val, err := t.tl.GetData(handle)
			if err != nil {
				return nil, err
			}
			full := append(append(append([]int32(nil), path...), codes[i]), suffix...)
			return newCursorSingle(t, t.decodeKey(full), val), nil
		}
		path = append(path, codes[i])
		s = next
	}
	return newCursorFromState(t, s, path), nil
}

// HasKeysWithPrefix reports whether any stored key begins with prefix.
func (t *Trie) HasKeysWithPrefix(prefix string) (bool, error) {
	c, err := t.IterPrefix(prefix)
	if err != nil {
		return false, err
	}
	return c.Next(), nil
}

// PrefixHit is one stored key found along the longest-prefix walk of a
// query key.
type PrefixHit struct {
	Key   string
	Value int32
}

// PrefixItems returns every stored key that is itself a prefix of key, in
// ascending length order.
func (t *Trie) PrefixItems(key string) ([]PrefixHit, error) {
	runeCodes, err := t.alpha.EncodeRunes(key)
	if err != nil {
		return nil, err
	}
	var hits []PrefixHit
	s := int32(doublearray.Root)
	for i := 0; i <= len(runeCodes); i++ {
		if term, ok := t.da.Walk(s, alphamap.Terminator); ok && t.da.IsSeparate(term) {
			handle := tail.Handle(t.da.TailHandle(term))
			val, err := t.tl.GetData(handle)
			if err != nil {
				return nil, err
			}
			hits = append(hits, PrefixHit{Key: string([]rune(key)[:i]), Value: val})
		}
		if i == len(runeCodes) {
			break
		}
		next, ok := t.da.Walk(s, runeCodes[i])
		if !ok {
			break
		}
		if t.da.IsSeparate(next) {
			handle := tail.Handle(t.da.TailHandle(next))
			suffix, err := t.tl.GetSuffix(handle)
			if err != nil {
				return nil, err
			}
			remaining := runeCodes[i+1:]
			switch {
			case len(remaining) < len(suffix):
				// stored key is longer than key: not a prefix of key.
			case len(remaining) == len(suffix) && equalCodes(remaining, suffix):
				val, err := t.tl.GetData(handle)
				if err != nil {
					return nil, err
				}
				hits = append(hits, PrefixHit{Key: key, Value: val})
			case len(remaining) > len(suffix) && equalCodes(remaining[:len(suffix)], suffix):
				val, err := t.tl.GetData(handle)
				if err != nil {
					return nil, err
				}
				hits = append(hits, PrefixHit{Key: string([]rune(key)[:i+1+len(suffix)]), Value: val})
			}
			return hits, nil
		}
		s = next
	}
	return hits, nil
}

// LongestPrefix returns the longest stored key that is a prefix of key.
func (t *Trie) LongestPrefix(key string) (PrefixHit, error) {
	hits, err := t.PrefixItems(key)
	if err != nil {
		return PrefixHit{}, err
	}
	if len(hits) == 0 {
		return PrefixHit{}, trieerrors.New(trieerrors.KeyNotFound, key)
	}
	return hits[len(hits)-1], nil
}

// LongestPrefixOr returns the longest stored prefix of key, or fallback if
// none exists.
func (t *Trie) LongestPrefixOr(key string, fallback PrefixHit) (PrefixHit, error) {
	hit, err := t.LongestPrefix(key)
	if err != nil {
		if trieerrors.Is(err, trieerrors.KeyNotFound) {
			return fallback, nil
		}
		return PrefixHit{}, err
	}
	return hit, nil
}

// KV is one (key, value) pair, returned by the enumeration helpers.
type KV struct {
	Key   string
	Value int32
}

// Items returns every stored key/value pair whose key begins with prefix,
// in ascending trie-code order. An empty prefix enumerates the whole trie.
func (t *Trie) Items(prefix string) ([]KV, error) {
	c, err := t.IterPrefix(prefix)
	if err != nil {
		return nil, err
	}
	var out []KV
	for c.Next() {
		out = append(out, KV{Key: c.Key(), Value: c.Value()})
	}
	return out, nil
}

// Keys returns every stored key beginning with prefix, in ascending order.
func (t *Trie) Keys(prefix string) ([]string, error) {
	items, err := t.Items(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, kv := range items {
		out[i] = kv.Key
	}
	return out, nil
}

// Values returns the values of every stored key beginning with prefix, in
// the same order as Keys(prefix).
func (t *Trie) Values(prefix string) ([]int32, error) {
	items, err := t.Items(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(items))
	for i, kv := range items {
		out[i] = kv.Value
	}
	return out, nil
}
