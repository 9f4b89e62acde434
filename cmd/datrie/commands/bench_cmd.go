package commands

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"datrie/internal/report"
	"datrie/internal/trie"
	"datrie/internal/trietest"
)

// BenchCommand runs an in-memory insert/lookup throughput benchmark over a
// batch of random words, mirroring the shape of the original datrie
// project's bench/speed.py: generate a random word set once, then time
// bulk insert and bulk lookup passes over it.
func BenchCommand(args []string) error {
	_, flags := splitArgs(args)

	count := 100000
	if raw, ok := flags["count"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid --count %q: %w", raw, err)
		}
		count = n
	}
	keyLen := 16
	if raw, ok := flags["keylen"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid --keylen %q: %w", raw, err)
		}
		keyLen = n
	}

	alpha, err := presetFor(flags["alphabet"])
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	runeAlphabet := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	words := trietest.RandomWords(rng, runeAlphabet, count, keyLen)

	t := trie.New(alpha)

	start := time.Now()
	for i, w := range words {
		if err := t.Insert(w, int32(i)); err != nil {
			return fmt.Errorf("bench insert: %w", err)
		}
	}
	insertElapsed := time.Since(start)

	start = time.Now()
	for _, w := range words {
		if _, err := t.Get(w); err != nil {
			return fmt.Errorf("bench get: %w", err)
		}
	}
	getElapsed := time.Since(start)

	opsPerSec := func(d time.Duration, n int) float64 {
		if d <= 0 {
			return 0
		}
		return float64(n) / d.Seconds()
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fmt.Printf("words: %d (requested %d, keylen<=%d)\n", len(words), count, keyLen)
	fmt.Printf("insert: %v total, %s ops/sec\n", insertElapsed, humanize.Comma(int64(opsPerSec(insertElapsed, len(words)))))
	fmt.Printf("get:    %v total, %s ops/sec\n", getElapsed, humanize.Comma(int64(opsPerSec(getElapsed, len(words)))))
	fmt.Printf("heap in use: %s\n", humanize.Bytes(mem.HeapInuse))
	report.Print(os.Stdout, report.Collect(t), nil)
	return nil
}
