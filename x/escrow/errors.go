package escrow

import "github.com/iov-one/ledger/errors"

// escrow takes 1010-1020
var (
	// ErrAddressMismatch is returned when a supplied account is not the
	// one derived from the escrow state.
	ErrAddressMismatch = errors.Register(1010, "address mismatch")
	// ErrAlreadyClosed is returned when an escrow was already taken or
	// refunded.
	ErrAlreadyClosed = errors.Register(1011, "escrow closed")
	// ErrDuplicateEscrow is returned when the escrow address of a maker
	// and seed is in use or was used before.
	ErrDuplicateEscrow = errors.Register(1012, "duplicate escrow")
)
