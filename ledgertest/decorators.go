package ledgertest

import (
	"context"

	"github.com/iov-one/ledger"
)

// Decorator is a mock implementation of the ledger.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding method.
// If error attributes are not set then wrapped handler method is called and
// its result returned.
// Each method call is counted. Regardless of the method call result the
// counter is incremented.
type Decorator struct {
	checkCall int
	// CheckErr if set is returned by the Check method before calling
	// the wrapped handler.
	CheckErr error

	deliverCall int
	// DeliverErr if set is returned by the Deliver method before calling
	// the wrapped handler.
	DeliverErr error
}

var _ ledger.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx, next ledger.Checker) (*ledger.CheckResult, error) {
	d.checkCall++

	if d.CheckErr != nil {
		return &ledger.CheckResult{}, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx, next ledger.Deliverer) (*ledger.DeliverResult, error) {
	d.deliverCall++

	if d.DeliverErr != nil {
		return &ledger.DeliverResult{}, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int {
	return d.checkCall
}

func (d *Decorator) DeliverCallCount() int {
	return d.deliverCall
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

func Decorate(h ledger.Handler, d ledger.Decorator) ledger.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn ledger.Handler
	dc ledger.Decorator
}

var _ ledger.Handler = (*decoratedHandler)(nil)

func (d *decoratedHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
