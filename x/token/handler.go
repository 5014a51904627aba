package token

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
)

const (
	createAssociatedCost int64 = 200
	transferCost         int64 = 100
	mintToCost           int64 = 100
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&CreateAssociatedMsg{}, CreateAssociatedHandler{auth, control})
	r.Handle(&TransferMsg{}, TransferHandler{auth, control})
	r.Handle(&MintToMsg{}, MintToHandler{auth, control})
}

// CreateAssociatedHandler opens associated token accounts.
type CreateAssociatedHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ ledger.Handler = CreateAssociatedHandler{}

func (h CreateAssociatedHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: createAssociatedCost}, nil
}

// Deliver returns the created address in the result data.
func (h CreateAssociatedHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	addr, err := h.control.CreateAssociated(db, msg.Payer, msg.Wallet, msg.Mint)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{Data: addr}, nil
}

func (h CreateAssociatedHandler) validate(ctx context.Context, tx ledger.Tx) (*CreateAssociatedMsg, error) {
	var msg CreateAssociatedMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature missing")
	}
	return &msg, nil
}

// TransferHandler moves tokens.
type TransferHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ ledger.Handler = TransferHandler{}

func (h TransferHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: transferCost}, nil
}

func (h TransferHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Transfer(ctx, db, msg.Src, msg.Dest, msg.Authority, msg.Amount); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h TransferHandler) validate(ctx context.Context, tx ledger.Tx) (*TransferMsg, error) {
	var msg TransferMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Authority) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "authority signature missing")
	}
	return &msg, nil
}

// MintToHandler issues new tokens.
type MintToHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ ledger.Handler = MintToHandler{}

func (h MintToHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: mintToCost}, nil
}

func (h MintToHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MintTo(ctx, db, msg.Mint, msg.Dest, msg.Authority, msg.Amount); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h MintToHandler) validate(ctx context.Context, tx ledger.Tx) (*MintToMsg, error) {
	var msg MintToMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Authority) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "mint authority signature missing")
	}
	return &msg, nil
}
