// Package watch serves a trie's live statistics over a WebSocket, the way
// the teacher's internal/network package runs a WebSocket server: an
// Upgrader on an http.Server, one goroutine per client reading acks, and a
// broadcast that fans a message out to every connected client.
package watch

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"datrie/internal/report"
	"datrie/internal/trie"
)

// Stats is one snapshot broadcast to every connected client.
type Stats struct {
	Len             int       `json:"len"`
	Cells           int       `json:"cells"`
	FreeTailBlocks  int       `json:"free_tail_blocks"`
	TailUtilization float64   `json:"tail_utilization"`
	Timestamp       time.Time `json:"timestamp"`
}

// snapshot gathers the current Stats for t via internal/report's storage
// accounting, the same figures the stats CLI subcommand prints.
func snapshot(t *trie.Trie) Stats {
	s := report.Collect(t)
	util := 1.0
	if s.TailBlocks > 0 {
		util = float64(s.TailBlocks-s.TailFree) / float64(s.TailBlocks)
	}
	return Stats{
		Len:             s.Keys,
		Cells:           s.Cells,
		FreeTailBlocks:  s.TailFree,
		TailUtilization: util,
		Timestamp:       time.Now(),
	}
}

type client struct {
	id     string
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

// Server periodically broadcasts a Stats snapshot of a trie to every
// connected client.
type Server struct {
	t        *trie.Trie
	addr     string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client

	httpServer *http.Server
	stopOnce   sync.Once
	stopCh     chan struct{}
}

// NewServer returns a watch server for t, listening on addr once Start is
// called. addr follows net.Listen's "host:port" convention.
func NewServer(addr string, t *trie.Trie) *Server {
	return &Server{
		t:       t,
		addr:    addr,
		clients: make(map[string]*client),
		stopCh:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start begins accepting WebSocket connections on /stats and broadcasting a
// Stats snapshot every interval. It returns once the listener is up; the
// HTTP server itself runs in a background goroutine.
func (s *Server) Start(interval time.Duration) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleUpgrade)
	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("watch: listen on %s: %w", s.addr, err)
	}
	go s.httpServer.Serve(ln)
	go s.publishLoop(interval)
	return nil
}

// Stop shuts down the HTTP server and every client connection. Safe to call
// more than once.
func (s *Server) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.mu.Lock()
		for _, c := range s.clients {
			c.mu.Lock()
			c.closed = true
			c.conn.Close()
			c.mu.Unlock()
		}
		s.clients = make(map[string]*client)
		s.mu.Unlock()
		if s.httpServer != nil {
			err = s.httpServer.Close()
		}
	})
	return err
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{id: uuid.NewString(), conn: conn}

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	go s.readUntilClosed(c)
}

// readUntilClosed drains and discards client frames, purely to notice
// disconnects (ReadMessage returns an error once the peer goes away).
func (s *Server) readUntilClosed(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			s.mu.Lock()
			delete(s.clients, c.id)
			s.mu.Unlock()
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			return
		}
	}
}

func (s *Server) publishLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			_ = s.Broadcast(snapshot(s.t))
		}
	}
}

// Broadcast sends stats as JSON to every connected client, dropping (and
// disconnecting) any client whose write fails.
func (s *Server) Broadcast(stats Stats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	var lastErr error
	for _, c := range clients {
		c.mu.Lock()
		if !c.closed {
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				lastErr = err
				c.closed = true
				c.conn.Close()
			}
		}
		c.mu.Unlock()
	}
	return lastErr
}

// ClientIDs returns the session ids of every currently connected client.
func (s *Server) ClientIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	return ids
}
