package token

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/system"
)

// Controller is the token program as used by other programs and by the
// message handlers of this package. Authorities are checked against the
// signers known to the authenticator, including program signers.
type Controller interface {
	Mint(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Mint, error)
	Account(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Account, error)
	// Balance returns the token amount held at addr.
	Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error)

	// InitializeMint creates a new mint at addr, paid by payer.
	InitializeMint(db ledger.KVStore, payer, addr ledger.Address, decimals uint8, authority ledger.Address) error
	// InitializeAccount creates an empty token account of mint held by
	// owner at addr, paid by payer.
	InitializeAccount(db ledger.KVStore, payer, addr, mint, owner ledger.Address) error
	// CreateAssociated creates the associated token account of wallet
	// for mint and returns its address.
	CreateAssociated(db ledger.KVStore, payer, wallet, mint ledger.Address) (ledger.Address, error)
	// EnsureAssociated returns the associated token account of wallet,
	// creating it first if it does not exist yet.
	EnsureAssociated(db ledger.KVStore, payer, wallet, mint ledger.Address) (ledger.Address, error)

	// Transfer moves amount between two accounts of the same mint.
	// Authority must own src and be a signer.
	Transfer(ctx context.Context, db ledger.KVStore, src, dest, authority ledger.Address, amount uint64) error
	// MintTo issues new tokens into dest. Authority must be the mint
	// authority and a signer.
	MintTo(ctx context.Context, db ledger.KVStore, mint, dest, authority ledger.Address, amount uint64) error
	// CloseAccount deletes an empty token account and moves its rent to
	// dest. Authority must own the account and be a signer.
	CloseAccount(ctx context.Context, db ledger.KVStore, addr, dest, authority ledger.Address) error
}

// BaseController implements Controller on top of the account runtime.
type BaseController struct {
	auth x.Authenticator
	sys  system.Controller
}

var _ Controller = BaseController{}

// NewController returns the token program.
func NewController(auth x.Authenticator, sys system.Controller) BaseController {
	return BaseController{auth: auth, sys: sys}
}

func (c BaseController) Mint(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Mint, error) {
	data, err := c.programData(db, addr)
	if err != nil {
		return nil, err
	}
	var m Mint
	if err := m.Unmarshal(data); err != nil {
		return nil, errors.Wrapf(err, "mint %s", addr)
	}
	if !m.IsInitialized {
		return nil, errors.Wrapf(errors.ErrInput, "mint %s not initialized", addr)
	}
	return &m, nil
}

func (c BaseController) Account(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Account, error) {
	data, err := c.programData(db, addr)
	if err != nil {
		return nil, err
	}
	var a Account
	if err := a.Unmarshal(data); err != nil {
		return nil, errors.Wrapf(err, "token account %s", addr)
	}
	if a.State == StateUninitialized {
		return nil, errors.Wrapf(errors.ErrInput, "token account %s not initialized", addr)
	}
	return &a, nil
}

func (c BaseController) Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error) {
	a, err := c.Account(db, addr)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// programData returns the data of an account owned by this program.
func (c BaseController) programData(db ledger.ReadOnlyKVStore, addr ledger.Address) ([]byte, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	acc, err := c.sys.Account(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	if !acc.Owner.Equals(ProgramID) {
		return nil, errors.Wrapf(errors.ErrInput, "account %s is not owned by the token program", addr)
	}
	return acc.Data, nil
}

func (c BaseController) InitializeMint(db ledger.KVStore, payer, addr ledger.Address, decimals uint8, authority ledger.Address) error {
	if err := authority.Validate(); err != nil {
		return errors.Wrap(err, "mint authority")
	}
	if _, err := c.sys.CreateAccount(db, payer, addr, MintLen, ProgramID); err != nil {
		return errors.Wrap(err, "create mint account")
	}
	m := Mint{MintAuthority: authority, Decimals: decimals, IsInitialized: true}
	return c.writeMint(db, addr, &m)
}

func (c BaseController) InitializeAccount(db ledger.KVStore, payer, addr, mint, owner ledger.Address) error {
	if err := owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if _, err := c.Mint(db, mint); err != nil {
		return err
	}
	if _, err := c.sys.CreateAccount(db, payer, addr, AccountLen, ProgramID); err != nil {
		return errors.Wrap(err, "create token account")
	}
	a := Account{Mint: mint, Owner: owner, State: StateInitialized}
	return c.writeAccount(db, addr, &a)
}

func (c BaseController) CreateAssociated(db ledger.KVStore, payer, wallet, mint ledger.Address) (ledger.Address, error) {
	if err := wallet.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	if err := mint.Validate(); err != nil {
		return nil, errors.Wrap(err, "mint")
	}
	addr, err := AssociatedAddress(wallet, mint)
	if err != nil {
		return nil, err
	}
	if err := c.InitializeAccount(db, payer, addr, mint, wallet); err != nil {
		return nil, err
	}
	return addr, nil
}

func (c BaseController) EnsureAssociated(db ledger.KVStore, payer, wallet, mint ledger.Address) (ledger.Address, error) {
	if err := wallet.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet")
	}
	if err := mint.Validate(); err != nil {
		return nil, errors.Wrap(err, "mint")
	}
	addr, err := AssociatedAddress(wallet, mint)
	if err != nil {
		return nil, err
	}
	switch _, err := c.sys.Account(db, addr); {
	case errors.ErrNotFound.Is(err):
		if err := c.InitializeAccount(db, payer, addr, mint, wallet); err != nil {
			return nil, err
		}
		return addr, nil
	case err != nil:
		return nil, err
	}
	a, err := c.Account(db, addr)
	if err != nil {
		return nil, err
	}
	if !a.Mint.Equals(mint) || !a.Owner.Equals(wallet) {
		return nil, errors.Wrapf(errors.ErrInput, "account %s does not belong to wallet and mint", addr)
	}
	return addr, nil
}

func (c BaseController) Transfer(ctx context.Context, db ledger.KVStore, src, dest, authority ledger.Address, amount uint64) error {
	from, err := c.Account(db, src)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	to, err := c.Account(db, dest)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if !from.Mint.Equals(to.Mint) {
		return errors.Wrap(errors.ErrInput, "mint mismatch")
	}
	if from.State == StateFrozen || to.State == StateFrozen {
		return errors.Wrap(errors.ErrState, "account frozen")
	}
	if err := c.authorize(ctx, from.Owner, authority); err != nil {
		return err
	}
	if from.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "have %d, need %d", from.Amount, amount)
	}
	if src.Equals(dest) || amount == 0 {
		return nil
	}
	if to.Amount+amount < to.Amount {
		return errors.Wrap(errors.ErrOverflow, "destination amount")
	}
	from.Amount -= amount
	to.Amount += amount
	if err := c.writeAccount(db, src, from); err != nil {
		return err
	}
	return c.writeAccount(db, dest, to)
}

func (c BaseController) MintTo(ctx context.Context, db ledger.KVStore, mint, dest, authority ledger.Address, amount uint64) error {
	m, err := c.Mint(db, mint)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil {
		return errors.Wrap(errors.ErrState, "fixed supply")
	}
	if err := c.authorize(ctx, m.MintAuthority, authority); err != nil {
		return err
	}
	to, err := c.Account(db, dest)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if !to.Mint.Equals(mint) {
		return errors.Wrap(errors.ErrInput, "mint mismatch")
	}
	if m.Supply+amount < m.Supply || to.Amount+amount < to.Amount {
		return errors.Wrap(errors.ErrOverflow, "supply")
	}
	m.Supply += amount
	to.Amount += amount
	if err := c.writeMint(db, mint, m); err != nil {
		return err
	}
	return c.writeAccount(db, dest, to)
}

func (c BaseController) CloseAccount(ctx context.Context, db ledger.KVStore, addr, dest, authority ledger.Address) error {
	a, err := c.Account(db, addr)
	if err != nil {
		return err
	}
	owner := a.Owner
	if a.CloseAuthority != nil {
		owner = a.CloseAuthority
	}
	if err := c.authorize(ctx, owner, authority); err != nil {
		return err
	}
	if a.Amount != 0 {
		return errors.Wrapf(errors.ErrState, "account holds %d tokens", a.Amount)
	}
	return c.sys.CloseAccount(db, ProgramID, addr, dest)
}

// authorize ensures the expected authority was given and signed.
func (c BaseController) authorize(ctx context.Context, want, authority ledger.Address) error {
	if !want.Equals(authority) {
		return errors.Wrap(errors.ErrUnauthorized, "authority does not own the account")
	}
	if !c.auth.HasAddress(ctx, authority) {
		return errors.Wrap(errors.ErrUnauthorized, "authority signature missing")
	}
	return nil
}

func (c BaseController) writeMint(db ledger.KVStore, addr ledger.Address, m *Mint) error {
	raw, err := m.Marshal()
	if err != nil {
		return err
	}
	return c.sys.WriteData(db, ProgramID, addr, raw)
}

func (c BaseController) writeAccount(db ledger.KVStore, addr ledger.Address, a *Account) error {
	raw, err := a.Marshal()
	if err != nil {
		return err
	}
	return c.sys.WriteData(db, ProgramID, addr, raw)
}
