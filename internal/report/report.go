// Package report formats trie statistics for the CLI, the way the
// teacher's internal/reporting package turns in-memory state into
// human-facing output: humanize for large-number formatting, isatty to
// decide whether a terminal gets color.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"datrie/internal/trie"
)

// Stats summarizes a trie's storage footprint.
type Stats struct {
	Keys       int
	Cells      int
	TailBlocks int
	TailFree   int
}

// Collect gathers Stats from a live trie.
func Collect(t *trie.Trie) Stats {
	records := t.TailPool().Records()
	free := 0
	for _, r := range records {
		if r.Free {
			free++
		}
	}
	return Stats{
		Keys:       t.Len(),
		Cells:      int(t.DoubleArray().Len()),
		TailBlocks: len(records),
		TailFree:   free,
	}
}

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Print writes a human-readable stats block to w, colorizing the field
// labels only when w is a terminal (or colorOverride forces the choice).
func Print(w io.Writer, s Stats, colorOverride *bool) {
	color := false
	if colorOverride != nil {
		color = *colorOverride
	} else if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	label := func(s string) string {
		if !color {
			return s
		}
		return ansiBold + s + ansiReset
	}

	fmt.Fprintf(w, "%s %s\n", label("keys:"), humanize.Comma(int64(s.Keys)))
	fmt.Fprintf(w, "%s %s\n", label("double-array cells:"), humanize.Comma(int64(s.Cells)))
	fmt.Fprintf(w, "%s %s (%s free)\n", label("tail blocks:"),
		humanize.Comma(int64(s.TailBlocks)), humanize.Comma(int64(s.TailFree)))

	footprint := estimateBytes(s)
	fmt.Fprintf(w, "%s %s\n", label("estimated footprint:"), humanize.Bytes(footprint))
}

// estimateBytes gives a rough memory-footprint estimate: two int32s per
// double-array cell, plus a tail block's fixed overhead. It is meant for
// operator-facing reporting, not an exact accounting.
func estimateBytes(s Stats) uint64 {
	const cellBytes = 8      // base + check, int32 each
	const tailOverhead = 12  // next_free + value + length header
	return uint64(s.Cells)*cellBytes + uint64(s.TailBlocks)*tailOverhead
}
