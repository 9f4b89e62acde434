package commands

import (
	"fmt"
	"os"

	"datrie/internal/report"
)

// KeysCommand prints every key with an optional prefix filter, one per
// line.
func KeysCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 1, "datrie keys <file> [prefix]"); err != nil {
		return err
	}
	path := positional[0]
	prefix := ""
	if len(positional) > 1 {
		prefix = positional[1]
	}

	t, err := loadTrie(path)
	if err != nil {
		return err
	}
	keys, err := t.Keys(prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

// ItemsCommand prints every (key, value) pair with an optional prefix
// filter, one "key\tvalue" per line.
func ItemsCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 1, "datrie items <file> [prefix]"); err != nil {
		return err
	}
	path := positional[0]
	prefix := ""
	if len(positional) > 1 {
		prefix = positional[1]
	}

	t, err := loadTrie(path)
	if err != nil {
		return err
	}
	items, err := t.Items(prefix)
	if err != nil {
		return err
	}
	for _, kv := range items {
		fmt.Printf("%s\t%d\n", kv.Key, kv.Value)
	}
	return nil
}

// PrefixCommand prints every stored key that is itself a prefix of key,
// shortest first, one "key\tvalue" per line.
func PrefixCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 2, "datrie prefix <file> <key>"); err != nil {
		return err
	}
	path, key := positional[0], positional[1]

	t, err := loadTrie(path)
	if err != nil {
		return err
	}
	hits, err := t.PrefixItems(key)
	if err != nil {
		return err
	}
	for _, h := range hits {
		fmt.Printf("%s\t%d\n", h.Key, h.Value)
	}
	return nil
}

// StatsCommand prints storage statistics for the saved trie.
func StatsCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 1, "datrie stats <file>"); err != nil {
		return err
	}
	t, err := loadTrie(positional[0])
	if err != nil {
		return err
	}
	report.Print(os.Stdout, report.Collect(t), nil)
	return nil
}
