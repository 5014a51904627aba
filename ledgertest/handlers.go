package ledgertest

import (
	"context"

	"github.com/iov-one/ledger"
)

// Handler is a mock implementation of the ledger.Handler interface.
//
// Each method call is counted. When Key is set, every call writes
// Key=Value to the store before returning, so tests can see whether the
// write survived.
type Handler struct {
	checkCall   int
	CheckResult ledger.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult ledger.DeliverResult
	DeliverErr    error

	Key   []byte
	Value []byte

	// Panic if set is passed to panic on every call.
	Panic interface{}
}

var _ ledger.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	h.checkCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	h.deliverCall++
	if err := h.write(db); err != nil {
		return nil, err
	}
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) write(db ledger.KVStore) error {
	if h.Panic != nil {
		panic(h.Panic)
	}
	if h.Key == nil {
		return nil
	}
	return db.Set(h.Key, h.Value)
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}
