package trie

import (
	"reflect"
	"testing"

	"datrie/internal/alphamap"
	"datrie/internal/trieerrors"
)

func mustInsert(t *testing.T, tr *Trie, key string, value int32) {
	t.Helper()
	if err := tr.Insert(key, value); err != nil {
		t.Fatalf("Insert(%q, %d): %v", key, value, err)
	}
}

// TestBasicInsertGetContains covers scenario S1: foo, bar, foobar share a
// common branching prefix and must each resolve to their own value, with
// whole-trie enumeration returning them in ascending code (alphabetical)
// order.
func TestBasicInsertGetContains(t *testing.T) {
	tr := New(alphamap.PresetASCIILower())
	mustInsert(t, tr, "foo", 10)
	mustInsert(t, tr, "bar", 20)
	mustInsert(t, tr, "foobar", 30)

	for key, want := range map[string]int32{"foo": 10, "bar": 20, "foobar": 30} {
		got, err := tr.Get(key)
		if err != nil {
			t.Fatalf("Get(%q): %v", key, err)
		}
		if got != want {
			t.Fatalf("Get(%q) = %d, want %d", key, got, want)
		}
		if !tr.Contains(key) {
			t.Fatalf("Contains(%q) = false", key)
		}
	}
	if tr.Contains("fo") {
		t.Fatal("Contains(\"fo\") should be false: fo was never inserted")
	}
	if _, err := tr.Get("food"); !trieerrors.Is(err, trieerrors.KeyNotFound) {
		t.Fatalf("Get(\"food\") error = %v, want KeyNotFound", err)
	}

	items, err := tr.Items("")
	if err != nil {
		t.Fatal(err)
	}
	want := []KV{{"bar", 20}, {"foo", 10}, {"foobar", 30}}
	if !reflect.DeepEqual(items, want) {
		t.Fatalf("Items(\"\") = %v, want %v", items, want)
	}
}

func buildProducerFamily(t *testing.T) *Trie {
	t.Helper()
	tr := New(alphamap.PresetASCIILower())
	keys := map[string]int32{
		"pool":     1,
		"prepare":  2,
		"preview":  3,
		"prize":    4,
		"produce":  5,
		"producer": 6,
		"progress": 7,
	}
	for k, v := range keys {
		mustInsert(t, tr, k, v)
	}
	return tr
}

// TestLongestPrefixFamily covers scenario S2: a cluster of keys sharing
// increasingly long common prefixes, queried with keys that extend one of
// them by a few more characters.
func TestLongestPrefixFamily(t *testing.T) {
	tr := buildProducerFamily(t)

	cases := []struct {
		query string
		want  PrefixHit
	}{
		{"producers", PrefixHit{"producer", 6}},
		{"progressive", PrefixHit{"progress", 7}},
		{"produce", PrefixHit{"produce", 5}},
		{"pool", PrefixHit{"pool", 1}},
	}
	for _, c := range cases {
		hit, err := tr.LongestPrefix(c.query)
		if err != nil {
			t.Fatalf("LongestPrefix(%q): %v", c.query, err)
		}
		if hit != c.want {
			t.Fatalf("LongestPrefix(%q) = %+v, want %+v", c.query, hit, c.want)
		}
	}

	if _, err := tr.LongestPrefix("xyz"); !trieerrors.Is(err, trieerrors.KeyNotFound) {
		t.Fatalf("LongestPrefix(\"xyz\") error = %v, want KeyNotFound", err)
	}
}

// TestPrefixItemsOrdersByLength covers scenario S3: every stored key that is
// itself a prefix of the query, shortest first.
func TestPrefixItemsOrdersByLength(t *testing.T) {
	tr := buildProducerFamily(t)

	hits, err := tr.PrefixItems("producers")
	if err != nil {
		t.Fatal(err)
	}
	want := []PrefixHit{{"produce", 5}, {"producer", 6}}
	if !reflect.DeepEqual(hits, want) {
		t.Fatalf("PrefixItems(\"producers\") = %v, want %v", hits, want)
	}

	hits, err = tr.PrefixItems("pool")
	if err != nil {
		t.Fatal(err)
	}
	want = []PrefixHit{{"pool", 1}}
	if !reflect.DeepEqual(hits, want) {
		t.Fatalf("PrefixItems(\"pool\") = %v, want %v", hits, want)
	}

	hits, err = tr.PrefixItems("pr")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Fatalf("PrefixItems(\"pr\") = %v, want none", hits)
	}
}

// TestInOrderEnumerationSequence covers scenario S4: the in-order cursor
// must yield terminal values in ascending trie-code order, with the
// terminator code sorting before any letter at a shared branching state.
func TestInOrderEnumerationSequence(t *testing.T) {
	tr := New(alphamap.PresetByteRange())
	keys := map[string]int32{
		"f":      1,
		"fo":     2,
		"fa":     3,
		"faur":   4,
		"fauxi":  5,
		"fauzox": 10,
		"fauzoy": 20,
	}
	for k, v := range keys {
		mustInsert(t, tr, k, v)
	}

	items, err := tr.Items("")
	if err != nil {
		t.Fatal(err)
	}
	var got []int32
	for _, kv := range items {
		got = append(got, kv.Value)
	}
	want := []int32{1, 3, 4, 5, 10, 20, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("in-order values = %v, want %v", got, want)
	}
}

// TestIterPrefixAndHasKeysWithPrefix exercises the has_prefix/iter_prefix
// direction (stored keys beginning with a query string), as distinct from
// the prefix_items direction (stored keys the query string begins with).
func TestIterPrefixAndHasKeysWithPrefix(t *testing.T) {
	tr := buildProducerFamily(t)

	ok, err := tr.HasKeysWithPrefix("pr")
	if err != nil || !ok {
		t.Fatalf("HasKeysWithPrefix(\"pr\") = %v, %v, want true, nil", ok, err)
	}
	ok, err = tr.HasKeysWithPrefix("zzz")
	if err != nil || ok {
		t.Fatalf("HasKeysWithPrefix(\"zzz\") = %v, %v, want false, nil", ok, err)
	}

	keys, err := tr.Keys("pre")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"prepare", "preview"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys(\"pre\") = %v, want %v", keys, want)
	}

	single, err := tr.Keys("pool")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(single, []string{"pool"}) {
		t.Fatalf("Keys(\"pool\") = %v, want [pool]", single)
	}
}

// TestDeleteReclaimsStates covers delete-then-reinsert so the free lists in
// both the double array and the tail pool are exercised together.
func TestDeleteReclaimsStates(t *testing.T) {
	tr := New(alphamap.PresetASCIILower())
	mustInsert(t, tr, "foo", 10)
	mustInsert(t, tr, "foobar", 30)

	if err := tr.Delete("foobar"); err != nil {
		t.Fatal(err)
	}
	if tr.Contains("foobar") {
		t.Fatal("foobar should be gone after Delete")
	}
	if !tr.Contains("foo") {
		t.Fatal("deleting foobar must not remove foo")
	}
	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tr.Len())
	}

	if err := tr.Delete("nope"); !trieerrors.Is(err, trieerrors.KeyNotFound) {
		t.Fatalf("Delete(\"nope\") error = %v, want KeyNotFound", err)
	}

	mustInsert(t, tr, "foobar", 99)
	v, err := tr.Get("foobar")
	if err != nil || v != 99 {
		t.Fatalf("Get(\"foobar\") after reinsert = %d, %v", v, err)
	}
}

// TestOverwriteExistingKey covers inserting an identical key twice.
func TestOverwriteExistingKey(t *testing.T) {
	tr := New(alphamap.PresetASCIILower())
	mustInsert(t, tr, "same", 1)
	mustInsert(t, tr, "same", 2)
	if tr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after overwrite", tr.Len())
	}
	v, err := tr.Get("same")
	if err != nil || v != 2 {
		t.Fatalf("Get(\"same\") = %d, %v, want 2", v, err)
	}
}

// TestUnmappedCharacter covers the alphabet boundary: a digit is outside
// the lowercase preset.
func TestUnmappedCharacter(t *testing.T) {
	tr := New(alphamap.PresetASCIILower())
	if err := tr.Insert("a1", 1); !trieerrors.Is(err, trieerrors.UnmappedCharacter) {
		t.Fatalf("Insert(\"a1\", 1) error = %v, want UnmappedCharacter", err)
	}
}

// TestCyrillicAlphabet covers scenario S6: a non-Latin alphabet preset.
func TestCyrillicAlphabet(t *testing.T) {
	tr := New(alphamap.PresetCyrillicLower())
	mustInsert(t, tr, "привет", 1)
	mustInsert(t, tr, "пример", 2)
	mustInsert(t, tr, "прогресс", 3)

	v, err := tr.Get("привет")
	if err != nil || v != 1 {
		t.Fatalf("Get(\"привет\") = %d, %v, want 1", v, err)
	}
	keys, err := tr.Keys("пр")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"привет", "пример", "прогресс"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys(\"пр\") = %v, want %v", keys, want)
	}
}
