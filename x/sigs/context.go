package sigs

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module
// can add a signer
func withSigners(ctx context.Context, signers []ledger.Address) context.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate exposes the addresses that signed the transaction.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetSigners returns who signed the current Context.
// May be empty
func (a Authenticate) GetSigners(ctx context.Context) []ledger.Address {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]ledger.Address)
	return val
}

// HasAddress returns true if addr signed the current Context.
func (a Authenticate) HasAddress(ctx context.Context, addr ledger.Address) bool {
	for _, s := range a.GetSigners(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}
