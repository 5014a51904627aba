package app

import (
	"context"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()

	first := &ledgertest.Handler{}
	second := &ledgertest.Handler{DeliverErr: errors.ErrAmount}
	r.Handle(&ledgertest.Msg{RoutePath: "escrow/make"}, first)
	r.Handle(&ledgertest.Msg{RoutePath: "escrow/take"}, second)

	ctx := context.Background()
	tx := &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: "escrow/make"}}
	_, err := r.Check(ctx, nil, tx)
	assert.Nil(t, err)
	_, err = r.Deliver(ctx, nil, tx)
	assert.Nil(t, err)
	assert.Equal(t, 2, first.CallCount())

	tx = &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: "escrow/take"}}
	_, err = r.Deliver(ctx, nil, tx)
	assert.IsErr(t, errors.ErrAmount, err)
	assert.Equal(t, 1, second.CallCount())
}

func TestRouterUnknownPath(t *testing.T) {
	r := NewRouter()
	tx := &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: "escrow/lost"}}

	_, err := r.Check(context.Background(), nil, tx)
	assert.IsErr(t, errors.ErrNotFound, err)
	_, err = r.Deliver(context.Background(), nil, tx)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestRouterBrokenTx(t *testing.T) {
	r := NewRouter()
	tx := &ledgertest.Tx{Err: errors.ErrHuman}

	_, err := r.Deliver(context.Background(), nil, tx)
	assert.IsErr(t, errors.ErrHuman, err)
}

func TestRouterRejectsRoutes(t *testing.T) {
	r := NewRouter()
	r.Handle(&ledgertest.Msg{RoutePath: "token/transfer"}, &ledgertest.Handler{})

	assert.Panics(t, func() {
		r.Handle(&ledgertest.Msg{RoutePath: "token/transfer"}, &ledgertest.Handler{})
	})
	assert.Panics(t, func() {
		r.Handle(&ledgertest.Msg{RoutePath: "token?transfer"}, &ledgertest.Handler{})
	})
}
