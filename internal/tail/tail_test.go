package tail

import "testing"

func TestAddGetSetSuffixAndData(t *testing.T) {
	tl := New()
	h := tl.AddSuffix([]int32{1, 2, 3}, 42)

	suffix, err := tl.GetSuffix(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(suffix) != 3 || suffix[0] != 1 {
		t.Fatalf("GetSuffix = %v", suffix)
	}

	v, err := tl.GetData(h)
	if err != nil || v != 42 {
		t.Fatalf("GetData = %d, %v", v, err)
	}

	if err := tl.SetSuffix(h, []int32{9}); err != nil {
		t.Fatal(err)
	}
	if err := tl.SetData(h, 7); err != nil {
		t.Fatal(err)
	}
	suffix, _ = tl.GetSuffix(h)
	if len(suffix) != 1 || suffix[0] != 9 {
		t.Fatalf("after SetSuffix, suffix = %v", suffix)
	}
}

func TestWalk(t *testing.T) {
	tl := New()
	h := tl.AddSuffix([]int32{5, 6}, 1)
	pos, ok := tl.Walk(h, 0, 5)
	if !ok || pos != 1 {
		t.Fatalf("Walk(0,5) = %d, %v", pos, ok)
	}
	pos, ok = tl.Walk(h, pos, 6)
	if !ok || pos != 2 {
		t.Fatalf("Walk(1,6) = %d, %v", pos, ok)
	}
	// Past the end of the suffix, only the implicit terminator matches.
	if _, ok := tl.Walk(h, pos, 1); ok {
		t.Fatal("Walk past suffix end should only match the terminator")
	}
	if _, ok := tl.Walk(h, pos, 0); !ok {
		t.Fatal("Walk past suffix end should match the implicit terminator")
	}
}

func TestDeleteAndHandleReuse(t *testing.T) {
	tl := New()
	h1 := tl.AddSuffix([]int32{1}, 1)
	h2 := tl.AddSuffix([]int32{2}, 2)

	if err := tl.Delete(h1); err != nil {
		t.Fatal(err)
	}
	if _, err := tl.GetSuffix(h1); err == nil {
		t.Fatal("GetSuffix on deleted handle should fail")
	}
	if err := tl.Delete(h1); err == nil {
		t.Fatal("double delete should fail")
	}

	h3 := tl.AddSuffix([]int32{3}, 3)
	if h3 != h1 {
		t.Fatalf("expected freed handle %d to be reused, got %d", h1, h3)
	}

	v, err := tl.GetData(h2)
	if err != nil || v != 2 {
		t.Fatalf("unrelated handle h2 corrupted: %d, %v", v, err)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	tl := New()
	h1 := tl.AddSuffix([]int32{1, 2}, 10)
	h2 := tl.AddSuffix([]int32{3}, 20)
	_ = tl.Delete(h1)

	records := tl.Records()
	reloaded := FromRecords(records, tl.FirstFree())

	v, err := reloaded.GetData(h2)
	if err != nil || v != 20 {
		t.Fatalf("reloaded GetData(h2) = %d, %v", v, err)
	}
	if _, err := reloaded.GetSuffix(h1); err == nil {
		t.Fatal("reloaded tail should preserve h1 as freed")
	}
	h3 := reloaded.AddSuffix([]int32{9}, 9)
	if h3 != h1 {
		t.Fatalf("reloaded free list broken: expected reuse of %d, got %d", h1, h3)
	}
}
