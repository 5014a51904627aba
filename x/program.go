package x

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

type contextKey int

const (
	contextKeyProgram contextKey = iota
)

// WithProgramSigner authorizes the address derived from the program and
// the given seeds for the rest of the call chain. The last seed must be
// the bump. The address is recomputed here, so a caller can only sign
// for the addresses of the program it runs as.
func WithProgramSigner(ctx context.Context, program ledger.Address, seeds ...[]byte) (context.Context, ledger.Address, error) {
	addr, err := ledger.CreateProgramAddress(program, seeds...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "cannot derive program address")
	}
	prev, _ := ctx.Value(contextKeyProgram).([]ledger.Address)
	if containsAddress(prev, addr) {
		return ctx, addr, nil
	}
	signers := make([]ledger.Address, 0, len(prev)+1)
	signers = append(signers, prev...)
	signers = append(signers, addr)
	return context.WithValue(ctx, contextKeyProgram, signers), addr, nil
}

// ProgramAuth authenticates the program derived addresses added with
// WithProgramSigner.
type ProgramAuth struct{}

var _ Authenticator = ProgramAuth{}

// GetSigners returns all program addresses authorized in this context.
func (ProgramAuth) GetSigners(ctx context.Context) []ledger.Address {
	val, _ := ctx.Value(contextKeyProgram).([]ledger.Address)
	return val
}

// HasAddress returns true if the program authorized given address.
func (a ProgramAuth) HasAddress(ctx context.Context, addr ledger.Address) bool {
	return containsAddress(a.GetSigners(ctx), addr)
}
