package escrow

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
)

const (
	// pay escrow cost up-front
	makeEscrowCost   int64 = 300
	takeEscrowCost   int64 = 200
	refundEscrowCost int64 = 0
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, control *Controller) {
	r.Handle(&MakeMsg{}, MakeHandler{auth, control})
	r.Handle(&TakeMsg{}, TakeHandler{auth, control})
	r.Handle(&RefundMsg{}, RefundHandler{auth, control})
}

// RegisterQuery will register open escrows as "/escrows" and closed ones
// as "/escrows/closed"
func RegisterQuery(qr ledger.QueryRouter) {
	qr.Register("/escrows", openQuery{accounts: orm.NewBucket(system.BucketName)})
	NewClosedBucket().Register("escrows/closed", qr)
}

// MakeHandler opens new escrows.
type MakeHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ ledger.Handler = MakeHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h MakeHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: makeEscrowCost}, nil
}

// Deliver creates the escrow and moves the deposit into its vault. The
// escrow address is returned as the result data.
func (h MakeHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	addr, err := h.control.Open(ctx, db, escrow, msg.MakerAtaA, msg.Deposit)
	if err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{Data: addr}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h MakeHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*MakeMsg, *Escrow, error) {
	var msg MakeMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}

	addr, bump, err := EscrowAddress(msg.Maker, msg.Seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "escrow address")
	}
	if !addr.Equals(msg.Escrow) {
		return nil, nil, errors.Wrapf(ErrAddressMismatch, "escrow: want %s", addr)
	}
	vault, err := VaultAddress(addr, msg.MintA)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vault address")
	}
	if !vault.Equals(msg.Vault) {
		return nil, nil, errors.Wrapf(ErrAddressMismatch, "vault: want %s", vault)
	}

	escrow := &Escrow{
		Maker:   msg.Maker,
		Seed:    msg.Seed,
		MintA:   msg.MintA,
		MintB:   msg.MintB,
		Receive: msg.Receive,
		Bump:    bump,
	}
	return &msg, escrow, nil
}

// TakeHandler completes escrows.
type TakeHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ ledger.Handler = TakeHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h TakeHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: takeEscrowCost}, nil
}

// Deliver pays the maker and releases the vault to the taker. The escrow
// is closed afterwards.
func (h TakeHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Take(ctx, db, msg.Escrow, escrow, msg.Taker, msg.TakerAtaB); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h TakeHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*TakeMsg, *Escrow, error) {
	var msg TakeMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Taker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "taker signature missing")
	}
	escrow, err := h.control.Escrow(db, msg.Escrow)
	if err != nil {
		return nil, nil, err
	}
	if !escrow.Maker.Equals(msg.Maker) {
		return nil, nil, errors.Wrap(ErrAddressMismatch, "maker")
	}
	if err := checkVault(msg.Escrow, escrow, msg.Vault); err != nil {
		return nil, nil, err
	}
	if err := checkAssociated("taker_ata_a", msg.TakerAtaA, msg.Taker, escrow.MintA); err != nil {
		return nil, nil, err
	}
	if err := checkAssociated("maker_ata_b", msg.MakerAtaB, escrow.Maker, escrow.MintB); err != nil {
		return nil, nil, err
	}
	return &msg, escrow, nil
}

// RefundHandler cancels escrows.
type RefundHandler struct {
	auth    x.Authenticator
	control *Controller
}

var _ ledger.Handler = RefundHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h RefundHandler) Check(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: refundEscrowCost}, nil
}

// Deliver returns the deposit to the maker and closes the escrow.
func (h RefundHandler) Deliver(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Refund(ctx, db, msg.Escrow, escrow); err != nil {
		return nil, err
	}
	return &ledger.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h RefundHandler) validate(ctx context.Context, db ledger.KVStore, tx ledger.Tx) (*RefundMsg, *Escrow, error) {
	var msg RefundMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.control.Escrow(db, msg.Escrow)
	if err != nil {
		return nil, nil, err
	}
	// Only the maker stored in the escrow can take the deposit back.
	if !escrow.Maker.Equals(msg.Maker) || !h.auth.HasAddress(ctx, escrow.Maker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}
	if err := checkVault(msg.Escrow, escrow, msg.Vault); err != nil {
		return nil, nil, err
	}
	if err := checkAssociated("maker_ata_a", msg.MakerAtaA, escrow.Maker, escrow.MintA); err != nil {
		return nil, nil, err
	}
	return &msg, escrow, nil
}

func checkVault(addr ledger.Address, escrow *Escrow, got ledger.Address) error {
	vault, err := VaultAddress(addr, escrow.MintA)
	if err != nil {
		return errors.Wrap(err, "vault address")
	}
	if !vault.Equals(got) {
		return errors.Wrapf(ErrAddressMismatch, "vault: want %s", vault)
	}
	return nil
}

func checkAssociated(name string, got, wallet, mint ledger.Address) error {
	want, err := token.AssociatedAddress(wallet, mint)
	if err != nil {
		return errors.Wrapf(err, "%s address", name)
	}
	if !want.Equals(got) {
		return errors.Wrapf(ErrAddressMismatch, "%s: want %s", name, want)
	}
	return nil
}
