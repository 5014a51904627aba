package app

import (
	"context"
	"fmt"
	"regexp"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]ledger.Handler
}

var _ ledger.Registry = (*Router)(nil)
var _ ledger.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]ledger.Handler, 10),
	}
}

// Handle adds a new Handler for the given message type.
// panics if another Handler was already registered
// for the same path.
func (r *Router) Handle(m ledger.Msg, h ledger.Handler) {
	path := m.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path.
// If no path is found, returns a noSuchPath Handler.
// Always returns a non-nil Handler.
func (r *Router) handler(path string) ledger.Handler {
	h, ok := r.routes[path]
	if !ok {
		return noSuchPathHandler{path: path}
	}
	return h
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Check(ctx, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	return r.handler(msg.Path()).Deliver(ctx, store, tx)
}

// noSuchPathHandler is a Handler that always returns an unknown path error
type noSuchPathHandler struct {
	path string
}

var _ ledger.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Check(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}

func (h noSuchPathHandler) Deliver(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", h.path)
}
