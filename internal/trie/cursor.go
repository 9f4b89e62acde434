package trie

import (
	"datrie/internal/alphamap"
	"datrie/internal/doublearray"
	"datrie/internal/tail"
)

// childEdge is one outgoing transition considered by the walker, including
// the terminator code 0 (which always sorts first, since it is the
// smallest valid trie code).
type childEdge struct {
	code, target int32
}

// cursorFrame mirrors a call frame in a recursive in-order walk: the
// state being visited and the remaining children still to descend into.
// This is the explicit-stack shape spec.md section 9 calls for, the same
// "stack of frames" idiom the teacher's debugger uses for its call stack.
type cursorFrame struct {
	children []childEdge
	next     int
}

// Cursor is the walker/iterator over a Trie: an explicit automaton with a
// stack of frames, not a coroutine. It visits stored keys in ascending
// trie-code order.
type Cursor struct {
	t         *Trie
	stack     []cursorFrame
	pathCodes []int32
	pending   *KV

	curKey string
	curVal int32
}

func edgesOf(t *Trie, s int32) []childEdge {
	var edges []childEdge
	if tc, ok := t.da.Walk(s, alphamap.Terminator); ok {
		edges = append(edges, childEdge{alphamap.Terminator, tc})
	}
	for c := int32(1); c <= t.da.MaxCode(); c++ {
		if tg, ok := t.da.Walk(s, c); ok {
			edges = append(edges, childEdge{c, tg})
		}
	}
	return edges
}

func newCursorFromState(t *Trie, state int32, path []int32) *Cursor {
	c := &Cursor{t: t, pathCodes: append([]int32(nil), path...)}
	c.stack = append(c.stack, cursorFrame{children: edgesOf(t, state)})
	return c
}

func newCursorSingle(t *Trie, key string, value int32) *Cursor {
	return &Cursor{t: t, pending: &KV{Key: key, Value: value}}
}

func newCursorEmpty(t *Trie) *Cursor {
	return &Cursor{t: t}
}

// Next advances the cursor to the next key, returning false once
// enumeration is exhausted.
func (c *Cursor) Next() bool {
	if c.pending != nil {
		c.curKey, c.curVal = c.pending.Key, c.pending.Value
		c.pending = nil
		return true
	}
	for len(c.stack) > 0 {
		top := &c.stack[len(c.stack)-1]
		if top.next >= len(top.children) {
			c.stack = c.stack[:len(c.stack)-1]
			if len(c.pathCodes) > 0 {
				c.pathCodes = c.pathCodes[:len(c.pathCodes)-1]
			}
			continue
		}
		edge := top.children[top.next]
		top.next++

		if edge.code == alphamap.Terminator {
			if !c.t.da.IsSeparate(edge.target) {
				continue // structurally unreachable; defensively skip
			}
			handle := tail.Handle(c.t.da.TailHandle(edge.target))
			val, err := c.t.tl.GetData(handle)
			if err != nil {
				continue
			}
			c.curKey = c.t.decodeKey(c.pathCodes)
			c.curVal = val
			return true
		}

		if c.t.da.IsSeparate(edge.target) {
			handle := tail.Handle(c.t.da.TailHandle(edge.target))
			suffix, err := c.t.tl.GetSuffix(handle)
			if err != nil {
				continue
			}
			val, err := c.t.tl.GetData(handle)
			if err != nil {
				continue
			}
			full := append(append(append([]int32(nil), c.pathCodes...), edge.code), suffix...)
			c.curKey = c.t.decodeKey(full)
			c.curVal = val
			return true
		}

		c.pathCodes = append(c.pathCodes, edge.code)
		c.stack = append(c.stack, cursorFrame{children: edgesOf(c.t, edge.target)})
	}
	return false
}

// Key returns the key at the cursor's current position. Only valid after
// Next returned true.
func (c *Cursor) Key() string { return c.curKey }

// Value returns the value at the cursor's current position. Only valid
// after Next returned true.
func (c *Cursor) Value() int32 { return c.curVal }

// State is the low-level walk cursor named in spec.md section 6.2: a
// position inside the trie reached one rune at a time, independent of the
// in-order enumeration above.
type State struct {
	t       *Trie
	current int32
	ok      bool
	// tailPos/tailHandle track progress once the walk has entered a
	// separate state's tail block.
	inTail     bool
	tailHandle tail.Handle
	tailPos    int
}

// NewState returns a cursor positioned at the trie's root.
func NewState(t *Trie) *State {
	return &State{t: t, current: doublearray.Root, ok: true}
}

// WalkChar advances the cursor by one code point. It returns false (and
// leaves the cursor in the failed state permanently) if cp cannot be
// consumed from the current position.
func (s *State) WalkChar(cp rune) bool {
	if !s.ok {
		return false
	}
	code, known := s.t.alpha.Encode(cp)
	if !known {
		s.ok = false
		return false
	}
	return s.walkCode(code)
}

func (s *State) walkCode(code int32) bool {
	if s.inTail {
		next, match := s.t.tl.Walk(s.tailHandle, s.tailPos, code)
		if !match {
			s.ok = false
			return false
		}
		s.tailPos = next
		return true
	}
	next, ok := s.t.da.Walk(s.current, code)
	if !ok {
		s.ok = false
		return false
	}
	if s.t.da.IsSeparate(next) {
		s.inTail = true
		s.tailHandle = tail.Handle(s.t.da.TailHandle(next))
		s.tailPos = 0
		return true
	}
	s.current = next
	return true
}

// Walk advances the cursor through every rune of str in order, stopping (and
// returning false) at the first rune that cannot be consumed.
func (s *State) Walk(str string) bool {
	for _, cp := range str {
		if !s.WalkChar(cp) {
			return false
		}
	}
	return true
}

// IsTerminal reports whether the cursor's current position is exactly the
// end of a stored key.
func (s *State) IsTerminal() bool {
	if !s.ok {
		return false
	}
	if s.inTail {
		suffix, err := s.t.tl.GetSuffix(s.tailHandle)
		if err != nil {
			return false
		}
		return s.tailPos == len(suffix)
	}
	_, ok := s.t.da.Walk(s.current, alphamap.Terminator)
	return ok
}

// Data returns the value of the key ending at the cursor's current
// position. It is only meaningful when IsTerminal returns true.
func (s *State) Data() (int32, error) {
	if s.inTail {
		return s.t.tl.GetData(s.tailHandle)
	}
	term, ok := s.t.da.Walk(s.current, alphamap.Terminator)
	if !ok {
		return 0, nil
	}
	handle := tail.Handle(s.t.da.TailHandle(term))
	return s.t.tl.GetData(handle)
}
