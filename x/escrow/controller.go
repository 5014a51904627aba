package escrow

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
)

// Controller runs the escrow program on top of the account runtime and
// the token program. It does not authenticate the maker or the taker,
// handlers must do that before calling it.
type Controller struct {
	sys    system.Controller
	tokens token.Controller
	closed ClosedBucket
}

// NewController returns the escrow program.
func NewController(sys system.Controller, tokens token.Controller, closed ClosedBucket) *Controller {
	return &Controller{
		sys:    sys,
		tokens: tokens,
		closed: closed,
	}
}

// Escrow loads the open escrow stored at addr. It fails with
// ErrAlreadyClosed if the escrow was closed and with ErrAddressMismatch
// if addr cannot be derived from the stored seeds.
func (c *Controller) Escrow(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Escrow, error) {
	switch closed, err := c.closed.IsClosed(db, addr); {
	case err != nil:
		return nil, errors.Wrap(err, "load closed escrow")
	case closed:
		return nil, errors.Wrapf(ErrAlreadyClosed, "escrow %s", addr)
	}
	acc, err := c.sys.Account(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "escrow %s", addr)
	}
	if !acc.Owner.Equals(ProgramID) {
		return nil, errors.Wrapf(errors.ErrInput, "account %s is not owned by the escrow program", addr)
	}
	var e Escrow
	if err := e.Unmarshal(acc.Data); err != nil {
		return nil, errors.Wrapf(err, "escrow %s", addr)
	}
	derived, err := e.Address()
	if err != nil {
		return nil, errors.Wrapf(ErrAddressMismatch, "cannot derive escrow address: %s", err)
	}
	if !derived.Equals(addr) {
		return nil, errors.Wrap(ErrAddressMismatch, "escrow")
	}
	return &e, nil
}

// Open allocates the escrow record and a fresh vault and moves the
// deposit from the maker account into the vault. The maker pays the rent
// of both accounts and must own src.
func (c *Controller) Open(ctx context.Context, db ledger.KVStore, e *Escrow, src ledger.Address, deposit uint64) (ledger.Address, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	addr, err := e.Address()
	if err != nil {
		return nil, errors.Wrap(err, "escrow address")
	}
	switch closed, err := c.closed.IsClosed(db, addr); {
	case err != nil:
		return nil, errors.Wrap(err, "load closed escrow")
	case closed:
		return nil, errors.Wrapf(ErrDuplicateEscrow, "escrow %s was closed", addr)
	}
	if _, err := c.tokens.Mint(db, e.MintA); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "mint a: %s", err)
	}
	if _, err := c.tokens.Mint(db, e.MintB); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "mint b: %s", err)
	}

	vault, err := VaultAddress(addr, e.MintA)
	if err != nil {
		return nil, err
	}
	// The vault must start empty, so an account allocated at its address
	// before the escrow makes the offer unusable.
	switch acc, err := c.sys.Account(db, vault); {
	case err == nil:
		if !acc.IsSystem() {
			return nil, errors.Wrapf(ErrDuplicateEscrow, "vault %s already exists", vault)
		}
	case !errors.ErrNotFound.Is(err):
		return nil, errors.Wrap(err, "load vault")
	}

	if _, err := c.sys.CreateAccount(db, e.Maker, addr, EscrowLen, ProgramID); err != nil {
		if errors.ErrDuplicate.Is(err) {
			return nil, errors.Wrapf(ErrDuplicateEscrow, "escrow %s is open", addr)
		}
		return nil, errors.Wrap(err, "create escrow account")
	}
	raw, err := e.Marshal()
	if err != nil {
		return nil, err
	}
	if err := c.sys.WriteData(db, ProgramID, addr, raw); err != nil {
		return nil, errors.Wrap(err, "write escrow")
	}

	if _, err := c.tokens.CreateAssociated(db, e.Maker, addr, e.MintA); err != nil {
		if errors.ErrDuplicate.Is(err) {
			return nil, errors.Wrapf(ErrDuplicateEscrow, "vault %s already exists", vault)
		}
		return nil, errors.Wrap(err, "create vault")
	}
	if err := c.tokens.Transfer(ctx, db, src, vault, e.Maker, deposit); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}
	return addr, nil
}

// Take pays the maker from the taker's mint B account and releases the
// vault to the taker. Missing associated accounts of the taker for mint A
// and of the maker for mint B are created at the taker's cost.
func (c *Controller) Take(ctx context.Context, db ledger.KVStore, addr ledger.Address, e *Escrow, taker, src ledger.Address) error {
	takerAta, err := c.tokens.EnsureAssociated(db, taker, taker, e.MintA)
	if err != nil {
		return errors.Wrap(err, "taker account")
	}
	makerAta, err := c.tokens.EnsureAssociated(db, taker, e.Maker, e.MintB)
	if err != nil {
		return errors.Wrap(err, "maker account")
	}
	if err := c.tokens.Transfer(ctx, db, src, makerAta, taker, e.Receive); err != nil {
		return errors.Wrap(err, "pay maker")
	}
	return c.release(ctx, db, addr, e, takerAta, OutcomeTaken)
}

// Refund returns the whole deposit to the maker's associated mint A
// account.
func (c *Controller) Refund(ctx context.Context, db ledger.KVStore, addr ledger.Address, e *Escrow) error {
	makerAta, err := c.tokens.EnsureAssociated(db, e.Maker, e.Maker, e.MintA)
	if err != nil {
		return errors.Wrap(err, "maker account")
	}
	return c.release(ctx, db, addr, e, makerAta, OutcomeRefunded)
}

// release empties the vault into dest and closes both the vault and the
// escrow account. All rent goes back to the maker.
func (c *Controller) release(ctx context.Context, db ledger.KVStore, addr ledger.Address, e *Escrow, dest ledger.Address, outcome Outcome) error {
	vault, err := VaultAddress(addr, e.MintA)
	if err != nil {
		return err
	}
	ctx, signer, err := x.WithProgramSigner(ctx, ProgramID, e.seeds()...)
	if err != nil {
		return err
	}
	amount, err := c.tokens.Balance(db, vault)
	if err != nil {
		return errors.Wrap(err, "vault")
	}
	if amount > 0 {
		if err := c.tokens.Transfer(ctx, db, vault, dest, signer, amount); err != nil {
			return errors.Wrap(err, "withdraw")
		}
	}
	if err := c.tokens.CloseAccount(ctx, db, vault, e.Maker, signer); err != nil {
		return errors.Wrap(err, "close vault")
	}
	if err := c.sys.CloseAccount(db, ProgramID, addr, e.Maker); err != nil {
		return errors.Wrap(err, "close escrow")
	}

	height, _ := ledger.GetHeight(ctx)
	closed := Closed{Maker: e.Maker, Height: height, Outcome: outcome}
	if err := c.closed.Put(db, addr, &closed); err != nil {
		return errors.Wrap(err, "save closed escrow")
	}
	ledger.GetLogger(ctx).Debug("escrow closed",
		"escrow", addr.String(),
		"outcome", outcome.String(),
		"amount", amount)
	return nil
}
