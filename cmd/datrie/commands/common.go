// Package commands implements datrie's subcommands, each a small function
// over a plain []string of arguments, the same shape cmd/sentra/commands
// uses for its build/watch/clean commands.
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"datrie/internal/alphamap"
	"datrie/internal/format"
	"datrie/internal/trie"
)

// splitArgs separates rest into positional arguments and --key=value (or
// --key value) flags.
func splitArgs(args []string) (positional []string, flags map[string]string) {
	flags = make(map[string]string)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "--") {
			positional = append(positional, a)
			continue
		}
		a = strings.TrimPrefix(a, "--")
		if eq := strings.IndexByte(a, '='); eq >= 0 {
			flags[a[:eq]] = a[eq+1:]
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			flags[a] = args[i+1]
			i++
			continue
		}
		flags[a] = "true"
	}
	return positional, flags
}

func presetFor(name string) (*alphamap.AlphaMap, error) {
	switch name {
	case "", "printable":
		return alphamap.PresetPrintableASCII(), nil
	case "asciilower":
		return alphamap.PresetASCIILower(), nil
	case "byterange":
		return alphamap.PresetByteRange(), nil
	case "cyrillic":
		return alphamap.PresetCyrillicLower(), nil
	default:
		return nil, fmt.Errorf("unknown alphabet preset %q", name)
	}
}

func loadTrie(path string) (*trie.Trie, error) {
	return format.LoadFile(path)
}

func saveTrie(path string, t *trie.Trie) error {
	return format.SaveFile(path, t)
}

func parseValue(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q: %w", s, err)
	}
	return int32(v), nil
}

func requireArgs(positional []string, n int, usage string) error {
	if len(positional) < n {
		return fmt.Errorf("not enough arguments: %s", usage)
	}
	return nil
}
