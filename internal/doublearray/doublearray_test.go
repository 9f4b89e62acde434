package doublearray

import "testing"

func TestEnsureChildAndWalk(t *testing.T) {
	d := New(26)
	c1, err := d.EnsureChild(Root, 1)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := d.EnsureChild(Root, 2)
	if err != nil {
		t.Fatal(err)
	}
	if c1 == c2 {
		t.Fatal("distinct codes must not collapse to the same cell")
	}
	if got, ok := d.Walk(Root, 1); !ok || got != c1 {
		t.Fatalf("Walk(Root,1) = %d, %v; want %d, true", got, ok, c1)
	}
	if _, ok := d.Walk(Root, 3); ok {
		t.Fatal("Walk on an absent code should fail")
	}
}

func TestMarkSeparateAndTailHandle(t *testing.T) {
	d := New(26)
	c, _ := d.EnsureChild(Root, 5)
	d.MarkSeparate(c, 41)
	if !d.IsSeparate(c) {
		t.Fatal("expected separate state")
	}
	if got := d.TailHandle(c); got != 41 {
		t.Fatalf("TailHandle = %d, want 41", got)
	}
}

func TestChildrenAscendingOrder(t *testing.T) {
	d := New(26)
	for _, code := range []int32{5, 1, 3} {
		if _, err := d.EnsureChild(Root, code); err != nil {
			t.Fatal(err)
		}
	}
	children := d.Children(Root)
	var codes []int32
	for _, ch := range children {
		codes = append(codes, ch.Code)
	}
	want := []int32{1, 3, 5}
	if len(codes) != len(want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}

// TestManyChildrenForceRelocation inserts enough colliding children across
// many parents that the base-finding search must relocate at least one
// sibling set, exercising the grandchild re-parenting path.
func TestManyChildrenForceRelocation(t *testing.T) {
	d := New(8)
	parents := []int32{Root}
	for depth := 0; depth < 3; depth++ {
		var next []int32
		for _, p := range parents {
			for code := int32(1); code <= 8; code++ {
				c, err := d.EnsureChild(p, code)
				if err != nil {
					t.Fatalf("EnsureChild(%d,%d): %v", p, code, err)
				}
				next = append(next, c)
			}
		}
		parents = next
	}

	// Re-walk every path and confirm every transition still resolves
	// correctly after however many relocations occurred.
	for _, p := range []int32{Root} {
		for code := int32(1); code <= 8; code++ {
			c1, ok := d.Walk(p, code)
			if !ok {
				t.Fatalf("Walk(%d,%d) lost after relocation", p, code)
			}
			for code2 := int32(1); code2 <= 8; code2++ {
				if _, ok := d.Walk(c1, code2); !ok {
					t.Fatalf("grandchild Walk(%d,%d) lost after relocation", c1, code2)
				}
			}
		}
	}
}

func TestReleaseReturnsCellToFreeList(t *testing.T) {
	d := New(26)
	c, _ := d.EnsureChild(Root, 1)
	if err := d.Release(c); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Walk(Root, 1); ok {
		t.Fatal("released cell should no longer be reachable")
	}
	c2, err := d.EnsureChild(Root, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c2 != c {
		t.Fatalf("expected freed cell %d to be reused, got %d", c, c2)
	}
}

func TestReleaseReservedCellFails(t *testing.T) {
	d := New(26)
	if err := d.Release(Root); err == nil {
		t.Fatal("releasing the root must fail")
	}
	if err := d.Release(Header); err == nil {
		t.Fatal("releasing the header must fail")
	}
}

func TestSerializationRoundTrip(t *testing.T) {
	d := New(26)
	for _, code := range []int32{1, 2, 3} {
		if _, err := d.EnsureChild(Root, code); err != nil {
			t.Fatal(err)
		}
	}
	base := append([]int32(nil), d.Base()...)
	check := append([]int32(nil), d.Check()...)

	reloaded, err := FromArrays(base, check, 26)
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range []int32{1, 2, 3} {
		if _, ok := reloaded.Walk(Root, code); !ok {
			t.Fatalf("reloaded trie lost transition on code %d", code)
		}
	}
}

func TestFromArraysRejectsCyclicFreeList(t *testing.T) {
	// Header's free-list head points at cell 2, whose next is cell 3,
	// whose next loops back to cell 2 instead of terminating at Header.
	base := []int32{2, 1, -1, -3}
	check := []int32{0, 0, -4, -3}
	if _, err := FromArrays(base, check, 26); err == nil {
		t.Fatal("expected FormatError for a cyclic free list")
	}
}
