// Package trietest is a small randomized-testing harness for the trie
// packages, in the spirit of the teacher's internal/testing framework
// (TestContext collecting assertions and failures) but built directly on
// top of the standard library's testing.T rather than a bespoke runner,
// since every other package in this module tests that way.
package trietest

import (
	"math/rand"
	"testing"

	"github.com/kr/pretty"

	"datrie/internal/trie"
)

// RandomWords returns n distinct, randomly generated strings drawn from
// alphabet, each between 1 and maxLen runes long. Generation keeps
// retrying on a collision, so the result may be shorter than n once the
// alphabet/length combination is nearly exhausted.
func RandomWords(rng *rand.Rand, alphabet []rune, n, maxLen int) []string {
	if len(alphabet) == 0 || maxLen <= 0 {
		return nil
	}
	seen := make(map[string]bool, n)
	words := make([]string, 0, n)
	attempts := 0
	for len(words) < n && attempts < n*50 {
		attempts++
		length := 1 + rng.Intn(maxLen)
		runes := make([]rune, length)
		for i := range runes {
			runes[i] = alphabet[rng.Intn(len(alphabet))]
		}
		w := string(runes)
		if seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

// Model is a plain-map reference oracle mirroring a Trie's contents,
// played alongside it so property tests can compare the two after an
// arbitrary sequence of inserts and deletes.
type Model struct {
	entries map[string]int32
}

// NewModel returns an empty model.
func NewModel() *Model { return &Model{entries: make(map[string]int32)} }

// Insert mirrors Trie.Insert on the model.
func (m *Model) Insert(key string, value int32) { m.entries[key] = value }

// Delete mirrors Trie.Delete on the model.
func (m *Model) Delete(key string) { delete(m.entries, key) }

// Len mirrors Trie.Len on the model.
func (m *Model) Len() int { return len(m.entries) }

// AssertMatches fails t, with a pretty-printed diff, if tr's contents
// disagree with m's in either direction: a key missing from one side, or
// present in both with different values.
func AssertMatches(t *testing.T, tr *trie.Trie, m *Model) {
	t.Helper()

	if tr.Len() != m.Len() {
		t.Fatalf("trie.Len() = %d, model has %d entries", tr.Len(), m.Len())
	}

	for key, want := range m.entries {
		got, err := tr.Get(key)
		if err != nil {
			t.Fatalf("Get(%q) failed against model expecting %d: %v", key, want, err)
		}
		if got != want {
			t.Fatalf("Get(%q) = %d, model says %d\ndiff: %s", key, got, want,
				pretty.Diff(got, want))
		}
	}

	items, err := tr.Items("")
	if err != nil {
		t.Fatalf("Items(\"\"): %v", err)
	}
	if len(items) != len(m.entries) {
		t.Fatalf("Items(\"\") returned %d pairs, model has %d\ndiff: %s",
			len(items), len(m.entries), pretty.Diff(items, m.entries))
	}
	for _, kv := range items {
		if want, ok := m.entries[kv.Key]; !ok || want != kv.Value {
			t.Fatalf("Items(\"\") contains (%q, %d) not present in model", kv.Key, kv.Value)
		}
	}
}
