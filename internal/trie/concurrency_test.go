package trie

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"

	"datrie/internal/alphamap"
)

// TestConcurrentReadsAgreeWithSingleThreaded fans out many goroutines doing
// nothing but Get calls against one shared, already-built Trie. Reads never
// mutate the double array, tail pool or alphabet, so this is safe without
// any locking in the trie layer itself — the point of the test is to catch
// a future change that accidentally introduces shared mutable read state.
func TestConcurrentReadsAgreeWithSingleThreaded(t *testing.T) {
	tr := New(alphamap.PresetASCIILower())
	keys := map[string]int32{
		"pool": 1, "prepare": 2, "preview": 3, "prize": 4,
		"produce": 5, "producer": 6, "progress": 7,
	}
	for k, v := range keys {
		if err := tr.Insert(k, v); err != nil {
			t.Fatal(err)
		}
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			for k, want := range keys {
				got, err := tr.Get(k)
				if err != nil {
					return err
				}
				if got != want {
					t.Errorf("concurrent Get(%q) = %d, want %d", k, got, want)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
