// cmd/datrie/main.go
package main

import (
	"fmt"
	"os"

	"datrie/cmd/datrie/commands"
)

const version = "1.0.0"

// commandAliases lets short, frequently typed forms stand in for the full
// subcommand name, the way cmd/sentra resolves "r" to "run".
var commandAliases = map[string]string{
	"i": "insert",
	"g": "get",
	"d": "delete",
	"k": "keys",
	"s": "stats",
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI for args and returns the process exit code. It is
// factored out of main so the testscript harness in script_test.go can
// re-exec the test binary as the datrie command and drive the same
// dispatch logic without a separately built binary.
func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return 0
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return 0
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Println("datrie", version)
		return 0
	}

	rest := args[1:]
	var err error
	switch cmd {
	case "init":
		err = commands.InitCommand(rest)
	case "insert":
		err = commands.InsertCommand(rest)
	case "get":
		err = commands.GetCommand(rest)
	case "delete":
		err = commands.DeleteCommand(rest)
	case "contains":
		err = commands.ContainsCommand(rest)
	case "keys":
		err = commands.KeysCommand(rest)
	case "items":
		err = commands.ItemsCommand(rest)
	case "prefix":
		err = commands.PrefixCommand(rest)
	case "stats":
		err = commands.StatsCommand(rest)
	case "import":
		err = commands.ImportCommand(rest)
	case "export":
		err = commands.ExportCommand(rest)
	case "serve":
		err = commands.ServeCommand(rest)
	case "bench":
		err = commands.BenchCommand(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		showUsage()
		return 1
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func showUsage() {
	fmt.Print(`datrie - a persistent double-array trie

Usage:
  datrie init <file> [--alphabet=asciilower|printable|byterange|cyrillic]
  datrie insert <file> <key> <value>
  datrie get <file> <key>
  datrie delete <file> <key>
  datrie contains <file> <key>
  datrie keys <file> [prefix]
  datrie items <file> [prefix]
  datrie prefix <file> <key>
  datrie stats <file>
  datrie import <file> --driver=<driver> --dsn=<dsn> --table=<table>
  datrie export <file> --driver=<driver> --dsn=<dsn> --table=<table>
  datrie serve <file> --addr=<host:port> [--interval=1s]
  datrie bench [--alphabet=printable] [--count=100000] [--keylen=16]

Aliases: i=insert, g=get, d=delete, k=keys, s=stats
`)
}
