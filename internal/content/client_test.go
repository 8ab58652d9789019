package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/debemdeboas/metablog/internal/config"
	"github.com/debemdeboas/metablog/internal/model"
)

const postsJSON = `[
  {"userId": 1, "id": 1, "title": "sunt aut facere", "body": "quia et suscipit"},
  {"userId": 1, "id": 2, "title": "qui est esse", "body": "est rerum tempore"},
  {"userId": 2, "id": 11, "title": "et ea vero quia", "body": "delectus reiciendis"}
]`

func newTestServer(t *testing.T, routes map[string]func(w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.URL.Path]; ok {
			h(w)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("{}"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func body(status int, s string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(s))
	}
}

func TestFetchAllPosts(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter){
		"/posts": body(http.StatusOK, postsJSON),
	})
	c := NewClient(srv.URL+"/", time.Second, nil)

	posts, err := c.FetchAllPosts(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("Expected 3 posts, got %d", len(posts))
	}

	// Order is whatever the API returned.
	wantIDs := []model.PostID{1, 2, 11}
	for i, id := range wantIDs {
		if posts[i].ID != id {
			t.Errorf("Expected post %d at position %d, got %d", id, i, posts[i].ID)
		}
	}
	if posts[2].UserID != 2 || posts[2].Title != "et ea vero quia" {
		t.Errorf("Unexpected post decoded: %+v", posts[2])
	}
}

func TestFetchAllPostsEmpty(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter){
		"/posts": body(http.StatusOK, `[]`),
	})

	posts, err := NewClient(srv.URL, time.Second, nil).FetchAllPosts(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", posts)
	}
}

func TestFetchPostAndUser(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter){
		"/posts/5": body(http.StatusOK, `{"userId": 1, "id": 5, "title": "nesciunt quas odio", "body": "repudiandae veniam"}`),
		"/users/1": body(http.StatusOK, `{"id": 1, "name": "Leanne Graham", "username": "Bret", "email": "Sincere@april.biz"}`),
	})
	c := NewClient(srv.URL, time.Second, nil)

	post, err := c.FetchPost(context.Background(), 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if post.ID != 5 || post.UserID != 1 || post.Title != "nesciunt quas odio" {
		t.Errorf("Unexpected post: %+v", post)
	}

	user, err := c.FetchUser(context.Background(), post.UserID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.Name != "Leanne Graham" || user.Email != "Sincere@april.biz" {
		t.Errorf("Unexpected user: %+v", user)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter){
		"/posts":     body(http.StatusInternalServerError, `oops`),
		"/posts/1":   body(http.StatusOK, `{"id": 1, "userId": 1, "title": `),
		"/posts/2":   body(http.StatusOK, `{}`),
		"/posts/3":   body(http.StatusOK, `{"id": 3, "userId": 0, "title": "no owner"}`),
		"/posts/4":   body(http.StatusOK, `{"id": 4, "userId": 1, "title": ""}`),
		"/posts/5":   body(http.StatusBadGateway, ``),
		"/users/1":   body(http.StatusOK, `{"id": 1}`),
		"/users/2":   body(http.StatusServiceUnavailable, ``),
		"/posts/600": body(http.StatusOK, `["not", "an", "object"]`),
	})
	c := NewClient(srv.URL, time.Second, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"list non-2xx", func() error { _, err := c.FetchAllPosts(ctx); return err }, ErrNetwork},
		{"post truncated json", func() error { _, err := c.FetchPost(ctx, 1); return err }, ErrParse},
		{"post empty object", func() error { _, err := c.FetchPost(ctx, 2); return err }, ErrNotFound},
		{"post missing owner", func() error { _, err := c.FetchPost(ctx, 3); return err }, ErrParse},
		{"post missing title", func() error { _, err := c.FetchPost(ctx, 4); return err }, ErrParse},
		{"post bad gateway", func() error { _, err := c.FetchPost(ctx, 5); return err }, ErrNetwork},
		{"post 404", func() error { _, err := c.FetchPost(ctx, 404); return err }, ErrNotFound},
		{"post wrong shape", func() error { _, err := c.FetchPost(ctx, 600); return err }, ErrParse},
		{"user missing name", func() error { _, err := c.FetchUser(ctx, 1); return err }, ErrParse},
		{"user unavailable", func() error { _, err := c.FetchUser(ctx, 2); return err }, ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			var cerr *Error
			if !errors.As(err, &cerr) {
				t.Errorf("Expected *Error, got %T", err)
			}
		})
	}
}

func TestFetchListParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"object instead of array", `{"id": 1}`},
		{"null", `null`},
		{"invalid item", `[{"id": 1, "userId": 1, "title": "ok"}, {"id": 0, "userId": 1, "title": "bad"}]`},
		{"garbage", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, map[string]func(http.ResponseWriter){
				"/posts": body(http.StatusOK, tt.payload),
			})
			_, err := NewClient(srv.URL, time.Second, nil).FetchAllPosts(context.Background())
			if !errors.Is(err, ErrParse) {
				t.Errorf("Expected ErrParse, got %v", err)
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, nil).FetchAllPosts(context.Background())
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected ErrNetwork, got %v", err)
	}
}

func TestCancelledContext(t *testing.T) {
	srv := newTestServer(t, map[string]func(http.ResponseWriter){
		"/posts": body(http.StatusOK, postsJSON),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, time.Second, nil).FetchAllPosts(ctx)
	if !errors.Is(err, ErrNetwork) || !errors.Is(err, context.Canceled) {
		t.Errorf("Expected cancelled network error, got %v", err)
	}
}

func TestHeadersAndConfig(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := config.Default().Content
	cfg.APIBaseURL = srv.URL
	cfg.UserAgent = "test-agent"

	c := NewFromConfig(cfg)
	if _, err := c.FetchAllPosts(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if gotUA != "test-agent" {
		t.Errorf("Expected User-Agent 'test-agent', got %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept header, got %q", gotAccept)
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	_, err := c.FetchPost(context.Background(), 1)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("Expected ErrNetwork from nil client, got %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: ErrNetwork, Op: "fetch post", URL: "http://x/posts/1", Status: 500}
	msg := err.Error()
	for _, part := range []string{"fetch post", "http://x/posts/1", "status 500", "network error"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Expected %q in %q", part, msg)
		}
	}
	if !IsNotFound(&Error{Kind: ErrNotFound}) {
		t.Error("Expected IsNotFound to match")
	}
}
