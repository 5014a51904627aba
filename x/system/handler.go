package system

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/x"
)

const sendTxCost = 100

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, control Controller) {
	r.Handle(&SendMsg{}, NewSendHandler(auth, control))
	r.Handle(&UpdateConfigurationMsg{}, NewConfigHandler(auth))
}

// RegisterQuery will register this bucket as "/accounts"
func RegisterQuery(qr ledger.QueryRouter) {
	NewBucket().Register("accounts", qr)
}

// SendHandler will handle sending lamports
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ ledger.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: sendTxCost}, nil
}

// Deliver moves the lamports from source to receiver if
// all preconditions are met
func (h SendHandler) Deliver(ctx context.Context, store ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.TransferLamports(store, msg.Src, msg.Dest, msg.Lamports); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx context.Context, tx ledger.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	// Make sure we have permission from the source.
	if !h.auth.HasAddress(ctx, msg.Src) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "account owner signature missing")
	}
	return &msg, nil
}

// NewConfigHandler returns the handler of UpdateConfigurationMsg.
func NewConfigHandler(auth x.Authenticator) ledger.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler(configPkg, &conf, auth, nil)
}
