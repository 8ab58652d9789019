// Package content is the client for the remote posts/users API.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/metablog/internal/config"
	"github.com/debemdeboas/metablog/internal/model"
)

var contentLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	contentLogger = l
}

// MaxBodySize caps how much of a response is read.
const MaxBodySize = 8 << 20

// Source is the read-only view of the content API that pages depend on.
type Source interface {
	FetchAllPosts(ctx context.Context) ([]model.Post, error)
	FetchPost(ctx context.Context, id model.PostID) (*model.Post, error)
	FetchUser(ctx context.Context, id model.UserID) (*model.User, error)
}

type Client struct {
	BaseURL   string
	UserAgent string

	client    *http.Client
	transport *http.Transport
	validate  *validator.Validate
}

var _ Source = (*Client)(nil)

func GetDefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

func NewClient(baseURL string, timeout time.Duration, transport *http.Transport) *Client {
	if transport == nil {
		transport = GetDefaultTransport()
	}

	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "metablog-reader",
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		transport: transport,
		validate:  newValidator(),
	}
}

func NewFromConfig(cfg config.ContentConfig) *Client {
	c := NewClient(cfg.APIBaseURL, cfg.Timeout(), nil)
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	return c
}

func (c *Client) FetchAllPosts(ctx context.Context) ([]model.Post, error) {
	const op = "fetch posts"
	url := c.endpoint("/posts")

	body, err := c.get(ctx, op, url)
	if err != nil {
		return nil, err
	}

	posts, err := decodeList[model.Post](c.validate, body)
	if err != nil {
		return nil, &Error{Kind: ErrParse, Op: op, URL: url, Err: err}
	}
	return posts, nil
}

func (c *Client) FetchPost(ctx context.Context, id model.PostID) (*model.Post, error) {
	const op = "fetch post"
	return fetchOne[model.Post](ctx, c, op, c.endpoint("/posts/"+id.String()))
}

func (c *Client) FetchUser(ctx context.Context, id model.UserID) (*model.User, error) {
	const op = "fetch user"
	return fetchOne[model.User](ctx, c, op, c.endpoint("/users/"+id.String()))
}

func (c *Client) endpoint(path string) string {
	if c == nil {
		return path
	}
	return c.BaseURL + path
}

func fetchOne[T any](ctx context.Context, c *Client, op, url string) (*T, error) {
	body, err := c.get(ctx, op, url)
	if err != nil {
		return nil, err
	}

	out, err := decode[T](c.validate, body)
	if errors.Is(err, errEmptyPayload) {
		return nil, &Error{Kind: ErrNotFound, Op: op, URL: url}
	}
	if err != nil {
		return nil, &Error{Kind: ErrParse, Op: op, URL: url, Err: err}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, url string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, &Error{Kind: ErrNetwork, Op: op, URL: url, Err: fmt.Errorf("client is nil")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Op: op, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	contentLogger.Debug().
		Str("op", op).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Content API response")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Kind: ErrNotFound, Op: op, URL: url, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &Error{Kind: ErrNetwork, Op: op, URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &Error{Kind: ErrNetwork, Op: op, URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if len(body) > MaxBodySize {
		return nil, &Error{Kind: ErrParse, Op: op, URL: url, Err: fmt.Errorf("response body exceeds %d bytes", MaxBodySize)}
	}
	return body, nil
}
