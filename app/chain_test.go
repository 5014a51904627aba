package app

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChain(t *testing.T) {
	c1 := &ledgertest.Decorator{}
	c2 := &ledgertest.Decorator{}
	c3 := &ledgertest.Decorator{}
	h := &ledgertest.Handler{}

	var nilDecorator *ledgertest.Decorator
	stack := ChainDecorators(
		c1,
		utils.NewLogging(),
		nilDecorator,
		utils.NewRecovery(),
		c2,
	).Chain(c3).WithHandler(h)

	ctx := ledger.WithHeight(context.Background(), 4)
	_, err := stack.Check(ctx, nil, &ledgertest.Tx{})
	require.NoError(t, err)
	_, err = stack.Deliver(ctx, nil, &ledgertest.Tx{})
	require.NoError(t, err)

	assert.Equal(t, 2, c1.CallCount())
	assert.Equal(t, 2, c2.CallCount())
	assert.Equal(t, 2, c3.CallCount())
	assert.Equal(t, 1, h.CheckCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())
}

func TestChainStopsOnError(t *testing.T) {
	outer := &ledgertest.Decorator{}
	failing := &ledgertest.Decorator{
		CheckErr:   errors.ErrUnauthorized,
		DeliverErr: errors.ErrAmount,
	}
	inner := &ledgertest.Decorator{}
	h := &ledgertest.Handler{}

	stack := ChainDecorators(outer, failing, inner).WithHandler(h)

	_, err := stack.Check(context.Background(), nil, &ledgertest.Tx{})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	_, err = stack.Deliver(context.Background(), nil, &ledgertest.Tx{})
	assert.True(t, errors.ErrAmount.Is(err))

	assert.Equal(t, 2, outer.CallCount())
	assert.Equal(t, 2, failing.CallCount())
	assert.Equal(t, 0, inner.CallCount())
	assert.Equal(t, 0, h.CallCount())
}

func TestChainRecoversPanic(t *testing.T) {
	outer := &ledgertest.Decorator{}
	h := &ledgertest.Handler{Panic: "fire alarm"}

	stack := ChainDecorators(
		outer,
		utils.NewRecovery(),
	).WithHandler(h)

	_, err := stack.Check(context.Background(), nil, &ledgertest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))
	_, err = stack.Deliver(context.Background(), nil, &ledgertest.Tx{})
	assert.True(t, errors.ErrPanic.Is(err))

	// the panic never reaches the decorators above the recovery
	assert.Equal(t, 2, outer.CallCount())
	assert.Equal(t, 2, h.CallCount())
}
