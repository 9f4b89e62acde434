package format

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"datrie/internal/alphamap"
	"datrie/internal/trie"
	"datrie/internal/trietest"
)

// TestLargeSaveLoadRoundTrip mirrors scenario S5 (insert a large distinct
// key set, save, drop, load, confirm every lookup survives), scaled down
// from the spec's 100k keys to keep this test's run time reasonable while
// still exercising growth, relocation and tail allocation at scale.
func TestLargeSaveLoadRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large round trip in -short mode")
	}

	const n = 20000
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcdefghijklmnopqrstuvwxyz0123456789 .,-_")

	tr := trie.New(alphamap.PresetPrintableASCII())
	words := trietest.RandomWords(rng, alphabet, n, 24)

	values := make(map[string]int32, len(words))
	for i, w := range words {
		v := int32(i)
		if err := tr.Insert(w, v); err != nil {
			t.Fatalf("Insert(%q, %d): %v", w, v, err)
		}
		values[w] = v
	}

	var buf bytes.Buffer
	if err := Save(&buf, tr); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != len(values) {
		t.Fatalf("Len() = %d, want %d", loaded.Len(), len(values))
	}
	for w, want := range values {
		got, err := loaded.Get(w)
		if err != nil {
			t.Fatalf("Get(%s): %v", fmt.Sprintf("%q", w), err)
		}
		if got != want {
			t.Fatalf("Get(%q) = %d, want %d", w, got, want)
		}
	}
}
