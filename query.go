package ledger

import (
	"fmt"
)

// Query modifiers are appended to a query path after "?". Without a
// modifier the query data is an exact key, with PrefixQueryMod every key
// starting with the data is returned.
const (
	KeyQueryMod    = ""
	PrefixQueryMod = "prefix"
)

// Model is a single stored entry as returned by a state query.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key-value pair
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}

// QueryHandler serves one query path, for example the escrow bucket or one
// of its indexes.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister mounts the query paths of one extension.
type QueryRegister func(QueryRouter)

// QueryRouter maps query paths such as "/escrows" or "/nonces" to the
// handler that reads them. Each path is served by exactly one handler.
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{
		routes: make(map[string]QueryHandler, 10),
	}
}

// RegisterAll mounts the paths of every given extension.
func (r QueryRouter) RegisterAll(qr ...QueryRegister) {
	for _, q := range qr {
		q(r)
	}
}

// Register mounts h under path. Two extensions claiming the same path is
// a wiring bug, so this panics.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("query path %q registered twice", path))
	}
	r.routes[path] = h
}

// Handler returns the handler mounted under path, or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
