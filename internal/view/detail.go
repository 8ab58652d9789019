package view

import (
	"context"
	"sync"

	"github.com/debemdeboas/metablog/internal/config"
	"github.com/debemdeboas/metablog/internal/content"
	"github.com/debemdeboas/metablog/internal/model"
)

const (
	// AuthorPlaceholder stands in for an author that could not be fetched.
	AuthorPlaceholder = "Author"

	DescriptionLength = 150
)

type Detail struct {
	mu sync.RWMutex

	src  content.Source
	life *Lifetime
	meta MetaSink

	gen      uint64
	inflight bool

	id      model.PostID
	status  Status
	message string
	err     error

	post   *model.Post
	author *model.User
}

func NewDetail(parent context.Context, src content.Source, id model.PostID, meta MetaSink) *Detail {
	return &Detail{
		src:    src,
		life:   NewLifetime(parent),
		meta:   meta,
		id:     id,
		status: Loading,
	}
}

// Load fetches the post and then its author. An author failure leaves the view Ready
// without an author.
func (d *Detail) Load(ctx context.Context) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	id := d.id
	d.inflight = true
	d.status = Loading
	d.message = ""
	d.err = nil
	d.post = nil
	d.author = nil
	d.mu.Unlock()

	fctx, cancel := d.life.bind(ctx)
	defer cancel()

	post, err := d.src.FetchPost(fctx, id)

	d.mu.Lock()
	if !d.current(gen) {
		d.mu.Unlock()
		return ErrDiscarded
	}
	if err != nil {
		defer d.mu.Unlock()
		viewLogger.Error().Err(err).Int("post_id", int(id)).Msg("Error fetching post")
		d.inflight = false
		d.status = Error
		d.message = config.MsgPostLoadFailed
		d.err = err
		return err
	}
	d.post = post
	if d.meta != nil {
		d.meta.SetTitle(post.Title + model.TitleSuffix)
		d.meta.SetDescription(model.Truncate(post.Body, DescriptionLength))
	}
	d.mu.Unlock()

	author, err := d.src.FetchUser(fctx, post.UserID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.current(gen) {
		return ErrDiscarded
	}
	d.inflight = false
	d.status = Ready

	if err != nil {
		viewLogger.Warn().Err(err).
			Int("post_id", int(id)).
			Int("user_id", int(post.UserID)).
			Msg("Author unavailable, using placeholder")
		return nil
	}
	d.author = author
	return nil
}

func (d *Detail) current(gen uint64) bool {
	if gen != d.gen || !d.life.Alive() {
		viewLogger.Debug().Uint64("generation", gen).Msg("Discarding stale detail result")
		return false
	}
	return true
}

// SetID re-keys the view and reloads it when the id changed.
func (d *Detail) SetID(ctx context.Context, id model.PostID) error {
	d.mu.Lock()
	// An in-flight load for the same id already covers it.
	same := d.id == id && (d.inflight || d.status != Loading)
	d.id = id
	d.mu.Unlock()

	if same {
		return nil
	}
	return d.Load(ctx)
}

func (d *Detail) Retry(ctx context.Context) error {
	d.mu.RLock()
	busy := d.inflight
	d.mu.RUnlock()

	if busy {
		return nil
	}
	return d.Load(ctx)
}

func (d *Detail) Close() {
	d.life.Close()
}

func (d *Detail) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *Detail) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}

func (d *Detail) Post() *model.Post {
	return d.Snapshot().Post
}

// Author is nil until loaded, and stays nil when the author fetch failed.
func (d *Detail) Author() *model.User {
	return d.Snapshot().Author
}

func (d *Detail) AuthorName() string {
	return d.Snapshot().AuthorName()
}

type DetailState struct {
	ID      model.PostID
	Status  Status
	Message string
	Post    *model.Post
	Author  *model.User
}

func (d *Detail) Snapshot() DetailState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := DetailState{
		ID:      d.id,
		Status:  d.status,
		Message: d.message,
	}
	if d.post != nil {
		p := *d.post
		s.Post = &p
	}
	if d.author != nil {
		a := *d.author
		s.Author = &a
	}
	return s
}

func (s DetailState) Loading() bool { return s.Status == Loading }
func (s DetailState) Failed() bool  { return s.Status == Error }
func (s DetailState) Ready() bool   { return s.Status == Ready }

func (s DetailState) AuthorName() string {
	if s.Author == nil || s.Author.Name == "" {
		return AuthorPlaceholder
	}
	return s.Author.Name
}
