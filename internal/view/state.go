// Package view holds the feed and detail page state machines.
//
// Both views move Loading -> Ready | Error and go back to Loading only through
// Load/Retry. Every view is bound to a Lifetime. Once the lifetime is closed, or a
// newer load has started, late fetch results are discarded instead of applied.
package view

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var viewLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	viewLogger = l
}

type Status int

const (
	Loading Status = iota
	Ready
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	}
	return "unknown"
}

// ErrDiscarded is returned by Load when its result arrived too late to be applied.
var ErrDiscarded = errors.New("view: result discarded")

// Lifetime is the cancellation token tied to a rendered view instance.
type Lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func NewLifetime(parent context.Context) *Lifetime {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Lifetime{ctx: ctx, cancel: cancel}
}

func (l *Lifetime) Context() context.Context {
	return l.ctx
}

func (l *Lifetime) Close() {
	l.cancel()
}

func (l *Lifetime) Alive() bool {
	return l.ctx.Err() == nil
}

// bind returns a context cancelled when either ctx or the lifetime ends.
func (l *Lifetime) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	bound, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return bound, func() {
		stop()
		cancel()
	}
}

// MetaSink receives the document metadata a detail page publishes.
type MetaSink interface {
	SetTitle(title string)
	SetDescription(description string)
}
