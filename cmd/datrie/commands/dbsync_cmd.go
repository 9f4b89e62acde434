package commands

import (
	"fmt"

	"datrie/internal/dbsync"
)

// ImportCommand bulk-loads rows from a SQL table into the saved trie.
func ImportCommand(args []string) error {
	positional, flags := splitArgs(args)
	if err := requireArgs(positional, 1, "datrie import <file> --driver=<d> --dsn=<dsn> --table=<t>"); err != nil {
		return err
	}
	driver, dsn, table := flags["driver"], flags["dsn"], flags["table"]
	if driver == "" || dsn == "" || table == "" {
		return fmt.Errorf("import requires --driver, --dsn and --table")
	}

	t, err := loadTrie(positional[0])
	if err != nil {
		return err
	}

	m := dbsync.NewManager()
	id, err := m.Connect(driver, dsn)
	if err != nil {
		return err
	}
	defer m.Close(id)

	n, err := m.Import(id, table, t)
	if err != nil {
		return err
	}
	if err := saveTrie(positional[0], t); err != nil {
		return err
	}
	fmt.Printf("imported %d rows from %s\n", n, table)
	return nil
}

// ExportCommand bulk-writes the saved trie's contents into a SQL table.
func ExportCommand(args []string) error {
	positional, flags := splitArgs(args)
	if err := requireArgs(positional, 1, "datrie export <file> --driver=<d> --dsn=<dsn> --table=<t>"); err != nil {
		return err
	}
	driver, dsn, table := flags["driver"], flags["dsn"], flags["table"]
	if driver == "" || dsn == "" || table == "" {
		return fmt.Errorf("export requires --driver, --dsn and --table")
	}
	prefix := flags["prefix"]

	t, err := loadTrie(positional[0])
	if err != nil {
		return err
	}

	m := dbsync.NewManager()
	id, err := m.Connect(driver, dsn)
	if err != nil {
		return err
	}
	defer m.Close(id)

	if err := m.EnsureTable(id, table); err != nil {
		return err
	}
	n, err := m.Export(id, table, prefix, t)
	if err != nil {
		return err
	}
	fmt.Printf("exported %d rows to %s\n", n, table)
	return nil
}
