package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/debemdeboas/metablog/internal/config"
	"github.com/debemdeboas/metablog/internal/content"
	"github.com/debemdeboas/metablog/internal/model"
	"github.com/debemdeboas/metablog/internal/search"
)

type Feed struct {
	mu sync.RWMutex

	src  content.Source
	life *Lifetime

	gen      uint64
	inflight bool

	status  Status
	message string
	err     error

	baseline  []model.Post
	displayed []model.Post
	query     string
}

func NewFeed(parent context.Context, src content.Source) *Feed {
	return &Feed{
		src:    src,
		life:   NewLifetime(parent),
		status: Loading,
	}
}

// Load enters Loading and fetches the whole post list once.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.inflight = true
	f.status = Loading
	f.message = ""
	f.err = nil
	f.mu.Unlock()

	fctx, cancel := f.life.bind(ctx)
	defer cancel()

	posts, err := f.src.FetchAllPosts(fctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen || !f.life.Alive() {
		viewLogger.Debug().Uint64("generation", gen).Msg("Discarding stale feed result")
		return ErrDiscarded
	}
	f.inflight = false

	if err != nil {
		viewLogger.Error().Err(err).Msg("Error fetching posts")
		f.status = Error
		f.message = config.MsgFeedLoadFailed
		f.err = err
		return err
	}

	f.status = Ready
	f.baseline = posts
	f.displayed = search.Filter(posts, f.query)
	return nil
}

// Retry re-runs Load from Ready or Error. It is a no-op while a load is in flight.
func (f *Feed) Retry(ctx context.Context) error {
	f.mu.RLock()
	busy := f.inflight
	f.mu.RUnlock()

	if busy {
		return nil
	}
	return f.Load(ctx)
}

// SetQuery recomputes the displayed posts from the unfiltered baseline.
func (f *Feed) SetQuery(q string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.query = q
	if f.status == Ready {
		f.displayed = search.Filter(f.baseline, q)
	}
}

func (f *Feed) Close() {
	f.life.Close()
}

func (f *Feed) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

// Err returns the cause of the last failed load. It is never shown to readers.
func (f *Feed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

// Featured is the first post of the unfiltered list, or nil before a successful load.
func (f *Feed) Featured() *model.Post {
	return f.Snapshot().Featured
}

func (f *Feed) Displayed() []model.Post {
	return f.Snapshot().Posts
}

func (f *Feed) Query() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.query
}

func (f *Feed) ResultCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.status != Ready {
		return 0
	}
	return len(f.displayed)
}

// FeedState is an immutable copy of the feed for rendering.
type FeedState struct {
	Status   Status
	Message  string
	Query    string
	Featured *model.Post
	Posts    []model.Post
	Total    int
}

func (f *Feed) Snapshot() FeedState {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s := FeedState{
		Status:  f.status,
		Message: f.message,
		Query:   f.query,
		Total:   len(f.baseline),
	}
	if f.status != Ready {
		return s
	}

	if len(f.baseline) > 0 {
		featured := f.baseline[0]
		s.Featured = &featured
	}
	s.Posts = append([]model.Post(nil), f.displayed...)
	return s
}

func (s FeedState) Loading() bool { return s.Status == Loading }
func (s FeedState) Failed() bool  { return s.Status == Error }
func (s FeedState) Ready() bool   { return s.Status == Ready }

func (s FeedState) Searching() bool {
	return !search.IsBlank(s.Query)
}

func (s FeedState) ResultCount() int {
	return len(s.Posts)
}

// ResultLabel is the "Found N results for "q"" line.
func (s FeedState) ResultLabel() string {
	plural := "s"
	if len(s.Posts) == 1 {
		plural = ""
	}
	return fmt.Sprintf("Found %d result%s for \"%s\"", len(s.Posts), plural, s.Query)
}

// NoMatches reports an active search that matched nothing. An empty feed is not a
// search miss.
func (s FeedState) NoMatches() bool {
	return s.Ready() && s.Searching() && s.Total > 0 && len(s.Posts) == 0
}

func (s FeedState) ShowViewAll() bool {
	return s.Ready() && !s.Searching() && len(s.Posts) > 0
}
