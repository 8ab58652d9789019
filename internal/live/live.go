// Package live runs server-side search sessions. Each browser tab opens an SSE
// stream with a session id, posts keystrokes to the search endpoint, and receives
// the re-rendered result grid once typing settles.
package live

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/metablog/internal/cache"
	"github.com/debemdeboas/metablog/internal/content"
	"github.com/debemdeboas/metablog/internal/search"
	"github.com/debemdeboas/metablog/internal/sse"
	"github.com/debemdeboas/metablog/internal/view"
)

var liveLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	liveLogger = l
}

// EventResults is the SSE event name carrying the rendered grid.
const EventResults = "results"

var (
	ErrInvalidSession = errors.New("live: invalid session id")
	ErrUnknownSession = errors.New("live: unknown session")
)

// Renderer turns a feed snapshot into the HTML fragment sent to the browser.
type Renderer func(state view.FeedState) (string, error)

type Session struct {
	ID string

	feed      *view.Feed
	debouncer *search.Debouncer[string]
	loaded    chan struct{}

	mu      sync.Mutex
	claimed bool
	expired bool
	expiry  *time.Timer
}

// Loaded is closed once the initial feed load has finished or been discarded.
func (s *Session) Loaded() <-chan struct{} {
	return s.loaded
}

func (s *Session) State() view.FeedState {
	return s.feed.Snapshot()
}

// claim hands a prepared session to the first stream that connects to it.
func (s *Session) claim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed || s.expired {
		return false
	}
	s.claimed = true
	if s.expiry != nil {
		s.expiry.Stop()
	}
	return true
}

func (s *Session) expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed {
		return false
	}
	s.expired = true
	return true
}

// PendingTTL bounds how long a prepared session waits for its stream.
const PendingTTL = time.Minute

type Hub struct {
	src        content.Source
	clients    *sse.SSEClients
	render     Renderer
	delay      time.Duration
	pendingTTL time.Duration
	sessions   *cache.Cache[string, *Session]
}

func NewHub(src content.Source, clients *sse.SSEClients, delay time.Duration, render Renderer) *Hub {
	return &Hub{
		src:        src,
		clients:    clients,
		render:     render,
		delay:      delay,
		pendingTTL: PendingTTL,
		sessions:   cache.NewCache[string, *Session](),
	}
}

func NewSessionID() string {
	return uuid.NewString()
}

func (h *Hub) newSession(id string, feed *view.Feed) *Session {
	s := &Session{
		ID:     id,
		feed:   feed,
		loaded: make(chan struct{}),
	}
	s.debouncer = search.NewDebouncer(h.delay, func(q string) {
		s.feed.SetQuery(q)
		h.publish(s)
	})
	return s
}

// Prepare adopts a feed that was already loaded for a page render and registers
// it under a fresh session id. The first stream opened with that id reuses the
// feed as is. Unclaimed sessions are dropped after PendingTTL.
//
// The hub owns feed from here on, so it must not be bound to a request context.
func (h *Hub) Prepare(feed *view.Feed) *Session {
	s := h.newSession(NewSessionID(), feed)
	close(s.loaded)
	h.sessions.Set(s.ID, s)

	s.mu.Lock()
	s.expiry = time.AfterFunc(h.pendingTTL, func() {
		if s.expire() {
			liveLogger.Debug().Str("session", s.ID).Msg("Prepared live session expired")
			h.Close(s)
		}
	})
	s.mu.Unlock()

	liveLogger.Debug().Str("session", s.ID).Msg("Live session prepared")
	return s
}

// Open attaches a stream to session id. A prepared session is claimed and its
// current grid is published without fetching again. Otherwise a new feed is
// loaded with query applied. The session lives until Close or until parent is
// cancelled.
func (h *Hub) Open(parent context.Context, id, query string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidSession
	}

	if s, ok := h.sessions.Get(id); ok && s.claim() {
		context.AfterFunc(parent, func() { h.Close(s) })
		h.publish(s)
		liveLogger.Debug().Str("session", id).Msg("Live session claimed")
		return s, nil
	}

	if old, ok := h.sessions.Take(id); ok {
		old.teardown()
	}

	s := h.newSession(id, view.NewFeed(parent, h.src))
	s.claimed = true
	s.feed.SetQuery(query)
	h.sessions.Set(id, s)
	context.AfterFunc(parent, func() { h.Close(s) })

	go func() {
		defer close(s.loaded)
		if err := s.feed.Load(context.Background()); errors.Is(err, view.ErrDiscarded) {
			return
		}
		h.publish(s)
	}()

	liveLogger.Debug().Str("session", id).Msg("Live session opened")
	return s, nil
}

func (h *Hub) Get(id string) (*Session, bool) {
	return h.sessions.Get(id)
}

// Type records a keystroke. The grid is re-rendered after the debounce delay.
func (h *Hub) Type(id, query string) error {
	s, ok := h.sessions.Get(id)
	if !ok {
		return ErrUnknownSession
	}
	s.debouncer.Trigger(query)
	return nil
}

// Close tears s down. The registry entry is only removed while it still points
// at s, so a stream that lost its id to a reopen cannot end the newer session.
func (h *Hub) Close(s *Session) {
	if s == nil {
		return
	}
	if h.sessions.DeleteIf(s.ID, func(cur *Session) bool { return cur == s }) {
		liveLogger.Debug().Str("session", s.ID).Msg("Live session closed")
	}
	s.teardown()
}

func (h *Hub) Len() int {
	return h.sessions.Len()
}

func (s *Session) teardown() {
	s.debouncer.Stop()
	s.feed.Close()
}

func (h *Hub) publish(s *Session) {
	if cur, ok := h.sessions.Get(s.ID); !ok || cur != s {
		return
	}

	html, err := h.render(s.feed.Snapshot())
	if err != nil {
		liveLogger.Error().Err(err).Str("session", s.ID).Msg("Error rendering search results")
		return
	}

	sent := h.clients.Broadcast(s.ID, sse.Event{Name: EventResults, Data: html})
	liveLogger.Debug().Str("session", s.ID).Int("clients", sent).Msg("Published search results")
}
