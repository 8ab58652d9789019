// Package sse provides Server-Sent Events client management for live search sessions.
package sse

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Event is one message pushed to a browser.
type Event struct {
	Name string
	Data string
}

// WriteTo encodes the event in text/event-stream framing. Multi-line data is split
// across several data fields.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if e.Name != "" {
		fmt.Fprintf(&b, "event: %s\n", e.Name)
	}
	for _, line := range strings.Split(e.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", strings.TrimRight(line, "\r"))
	}
	b.WriteString("\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

const clientBuffer = 8

type Client struct {
	Msg     chan Event
	Session string
}

func NewClient(session string) *Client {
	return &Client{
		Msg:     make(chan Event, clientBuffer),
		Session: session,
	}
}

type SSEClients struct {
	clients map[*Client]bool
	mu      sync.RWMutex
}

func NewSSEClients() *SSEClients {
	return &SSEClients{
		clients: make(map[*Client]bool),
	}
}

func (s *SSEClients) Add(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
}

func (s *SSEClients) Delete(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.Msg)
}

func (s *SSEClients) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends msg to every client of session and reports how many received it.
// Slow clients with a full buffer miss the event.
func (s *SSEClients) Broadcast(session string, msg Event) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sent := 0
	for client := range s.clients {
		if client.Session == session {
			select {
			case client.Msg <- msg:
				sent++
			default:
			}
		}
	}
	return sent
}
