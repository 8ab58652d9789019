package view

import (
	"context"
	"errors"
	"sync"

	"github.com/debemdeboas/metablog/internal/content"
	"github.com/debemdeboas/metablog/internal/model"
)

// fakeSource is an in-memory content.Source that counts calls.
type fakeSource struct {
	mu sync.Mutex

	posts    []model.Post
	postsErr error
	byID     map[model.PostID]model.Post
	users    map[model.UserID]model.User
	userErr  error

	// gate, when set, blocks FetchAllPosts and FetchPost until it is closed.
	gate chan struct{}

	listCalls int
	postCalls int
	userCalls int
}

var _ content.Source = (*fakeSource)(nil)

func (f *fakeSource) wait(ctx context.Context) {
	if f.gate == nil {
		return
	}
	select {
	case <-f.gate:
	case <-ctx.Done():
	}
}

func (f *fakeSource) FetchAllPosts(ctx context.Context) ([]model.Post, error) {
	f.mu.Lock()
	f.listCalls++
	posts, err := f.posts, f.postsErr
	f.mu.Unlock()

	f.wait(ctx)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (f *fakeSource) FetchPost(ctx context.Context, id model.PostID) (*model.Post, error) {
	f.mu.Lock()
	f.postCalls++
	p, ok := f.byID[id]
	f.mu.Unlock()

	f.wait(ctx)
	if !ok {
		return nil, &content.Error{Kind: content.ErrNotFound, Op: "fetch post"}
	}
	return &p, nil
}

func (f *fakeSource) FetchUser(ctx context.Context, id model.UserID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++

	if f.userErr != nil {
		return nil, f.userErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, &content.Error{Kind: content.ErrNotFound, Op: "fetch user"}
	}
	return &u, nil
}

func (f *fakeSource) calls() (list, post, user int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.postCalls, f.userCalls
}

var errNetwork = &content.Error{Kind: content.ErrNetwork, Op: "fetch", Err: errors.New("connection refused")}

// metaRecorder is a MetaSink that remembers what was written.
type metaRecorder struct {
	title       string
	description string
	writes      int
}

func (m *metaRecorder) SetTitle(title string) {
	m.title = title
	m.writes++
}

func (m *metaRecorder) SetDescription(description string) {
	m.description = description
	m.writes++
}
