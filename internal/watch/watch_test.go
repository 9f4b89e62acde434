package watch

import (
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"datrie/internal/alphamap"
	"datrie/internal/trie"
)

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestBroadcastReachesConnectedClient(t *testing.T) {
	tr := trie.New(alphamap.PresetASCIILower())
	_ = tr.Insert("foo", 1)

	addr := freePort(t)
	s := NewServer(addr, tr)
	if err := s.Start(20 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	var conn *websocket.Conn
	var err error
	for i := 0; i < 20; i++ {
		conn, _, err = websocket.DefaultDialer.Dial("ws://"+addr+"/stats", nil)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("expected a broadcast stats frame: %v", err)
	}
}
