package commands

import (
	"fmt"
)

// InsertCommand inserts or overwrites a key's value and persists the file.
func InsertCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 3, "datrie insert <file> <key> <value>"); err != nil {
		return err
	}
	path, key, rawValue := positional[0], positional[1], positional[2]

	value, err := parseValue(rawValue)
	if err != nil {
		return err
	}
	t, err := loadTrie(path)
	if err != nil {
		return err
	}
	if err := t.Insert(key, value); err != nil {
		return err
	}
	if err := saveTrie(path, t); err != nil {
		return err
	}
	fmt.Printf("%s = %d\n", key, value)
	return nil
}

// GetCommand prints a key's value.
func GetCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 2, "datrie get <file> <key>"); err != nil {
		return err
	}
	path, key := positional[0], positional[1]

	t, err := loadTrie(path)
	if err != nil {
		return err
	}
	v, err := t.Get(key)
	if err != nil {
		return err
	}
	fmt.Println(v)
	return nil
}

// DeleteCommand removes a key and persists the file.
func DeleteCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 2, "datrie delete <file> <key>"); err != nil {
		return err
	}
	path, key := positional[0], positional[1]

	t, err := loadTrie(path)
	if err != nil {
		return err
	}
	if err := t.Delete(key); err != nil {
		return err
	}
	if err := saveTrie(path, t); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", key)
	return nil
}

// ContainsCommand reports whether a key is stored by printing "true" or
// "false"; the exit status is zero either way.
func ContainsCommand(args []string) error {
	positional, _ := splitArgs(args)
	if err := requireArgs(positional, 2, "datrie contains <file> <key>"); err != nil {
		return err
	}
	path, key := positional[0], positional[1]

	t, err := loadTrie(path)
	if err != nil {
		return err
	}
	if t.Contains(key) {
		fmt.Println("true")
	} else {
		fmt.Println("false")
	}
	return nil
}
