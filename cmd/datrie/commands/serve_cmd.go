package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"datrie/internal/watch"
)

// ServeCommand starts a WebSocket server broadcasting the saved trie's
// live statistics until interrupted.
func ServeCommand(args []string) error {
	positional, flags := splitArgs(args)
	if err := requireArgs(positional, 1, "datrie serve <file> --addr=<host:port>"); err != nil {
		return err
	}
	addr := flags["addr"]
	if addr == "" {
		addr = ":8080"
	}
	interval := time.Second
	if raw, ok := flags["interval"]; ok {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid --interval %q: %w", raw, err)
		}
		interval = d
	}

	t, err := loadTrie(positional[0])
	if err != nil {
		return err
	}

	s := watch.NewServer(addr, t)
	if err := s.Start(interval); err != nil {
		return err
	}
	fmt.Printf("serving live stats on ws://%s/stats (ctrl-c to stop)\n", addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	return s.Stop()
}
