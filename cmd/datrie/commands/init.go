package commands

import (
	"fmt"

	"datrie/internal/trie"
)

// InitCommand creates an empty trie file over the chosen alphabet preset.
func InitCommand(args []string) error {
	positional, flags := splitArgs(args)
	if err := requireArgs(positional, 1, "datrie init <file>"); err != nil {
		return err
	}
	path := positional[0]

	alpha, err := presetFor(flags["alphabet"])
	if err != nil {
		return err
	}
	t := trie.New(alpha)
	if err := saveTrie(path, t); err != nil {
		return err
	}
	fmt.Printf("initialized empty trie at %s\n", path)
	return nil
}
