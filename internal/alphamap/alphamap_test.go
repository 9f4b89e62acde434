package alphamap

import "testing"

func TestAddRangeMergesOverlaps(t *testing.T) {
	m := New()
	if err := m.AddRange('a', 'f'); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRange('d', 'k'); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRange('z', 'z'); err != nil {
		t.Fatal(err)
	}
	ranges := m.Ranges()
	want := [][2]rune{{'a', 'k'}, {'z', 'z'}}
	if len(ranges) != len(want) {
		t.Fatalf("ranges = %v, want %v", ranges, want)
	}
	for i := range want {
		if ranges[i] != want[i] {
			t.Fatalf("ranges[%d] = %v, want %v", i, ranges[i], want[i])
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := PresetASCIILower()
	c, ok := m.Encode('m')
	if !ok {
		t.Fatal("'m' should be mapped")
	}
	cp, ok := m.Decode(c)
	if !ok || cp != 'm' {
		t.Fatalf("decode(%d) = %q, %v; want 'm', true", c, cp, ok)
	}
	if _, ok := m.Encode('M'); ok {
		t.Fatal("'M' should be unmapped in the lowercase preset")
	}
}

func TestFreezeRejectsFurtherEdits(t *testing.T) {
	m := New()
	_ = m.AddRange('a', 'z')
	m.Freeze()
	if err := m.AddRange('0', '9'); err == nil {
		t.Fatal("AddRange after Freeze should fail")
	}
}

func TestEncodeStringAppendsTerminator(t *testing.T) {
	m := PresetASCIILower()
	codes, err := m.EncodeString("ab")
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 3 || codes[2] != Terminator {
		t.Fatalf("codes = %v, want 3 codes ending in terminator", codes)
	}
}

func TestEncodeStringUnmappedCharacter(t *testing.T) {
	m := PresetASCIILower()
	if _, err := m.EncodeString("a1b"); err == nil {
		t.Fatal("expected UnmappedCharacter error for '1'")
	}
}
