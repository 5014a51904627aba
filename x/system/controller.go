package system

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Controller is the account runtime used by programs. It does no
// authentication, callers must ensure that the payer or the owner
// program authorized the change.
type Controller interface {
	// Account returns the account at addr or ErrNotFound.
	Account(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Account, error)
	// Balance returns the lamports held at addr, zero if there is no
	// account.
	Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error)
	// MinimumBalance returns the rent exempt deposit for space bytes.
	MinimumBalance(db ledger.ReadOnlyKVStore, space int) (uint64, error)
	// CreateAccount allocates space bytes of data at addr, assigns it to
	// owner and moves the rent exempt deposit from payer.
	CreateAccount(db ledger.KVStore, payer, addr ledger.Address, space int, owner ledger.Address) (*Account, error)
	// TransferLamports moves lamports between system owned accounts.
	TransferLamports(db ledger.KVStore, src, dest ledger.Address, amount uint64) error
	// WriteData replaces the data of an account owned by program.
	WriteData(db ledger.KVStore, program, addr ledger.Address, data []byte) error
	// CloseAccount deletes an account owned by program and moves all its
	// lamports to dest.
	CloseAccount(db ledger.KVStore, program, addr, dest ledger.Address) error
}

// BaseController is the Controller backed by the accounts bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a Controller storing accounts in given bucket.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

func (c BaseController) Account(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Account, error) {
	return c.bucket.Get(db, addr)
}

func (c BaseController) Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error) {
	switch acc, err := c.bucket.Get(db, addr); {
	case err == nil:
		return acc.Lamports, nil
	case errors.ErrNotFound.Is(err):
		return 0, nil
	default:
		return 0, err
	}
}

func (c BaseController) MinimumBalance(db ledger.ReadOnlyKVStore, space int) (uint64, error) {
	conf, err := loadConf(db)
	if err != nil {
		return 0, err
	}
	return conf.MinimumBalance(space)
}

func (c BaseController) CreateAccount(db ledger.KVStore, payer, addr ledger.Address, space int, owner ledger.Address) (*Account, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	rent, err := c.MinimumBalance(db, space)
	if err != nil {
		return nil, err
	}

	acc := &Account{Owner: owner, Data: make([]byte, space)}
	switch prev, err := c.bucket.Get(db, addr); {
	case err == nil:
		// Lamports may be sent to any address before it is allocated.
		// Such an account is taken over, anything else is in use.
		if !prev.IsSystem() {
			return nil, errors.Wrapf(errors.ErrDuplicate, "account %s already in use", addr)
		}
		acc.Lamports = prev.Lamports
	case errors.ErrNotFound.Is(err):
	default:
		return nil, errors.Wrap(err, "load account")
	}

	if acc.Lamports < rent {
		if err := c.TransferLamports(db, payer, addr, rent-acc.Lamports); err != nil {
			return nil, errors.Wrap(err, "rent deposit")
		}
		acc.Lamports = rent
	}
	if err := c.bucket.Put(db, addr, acc); err != nil {
		return nil, errors.Wrap(err, "save account")
	}
	return acc, nil
}

func (c BaseController) TransferLamports(db ledger.KVStore, src, dest ledger.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero lamports")
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInput, "source and destination are the same")
	}
	from, err := c.bucket.Get(db, src)
	switch {
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrInsufficientAmount, "empty account %s", src)
	case err != nil:
		return errors.Wrap(err, "load source")
	}
	if !from.IsSystem() {
		return errors.Wrap(errors.ErrUnauthorized, "source account is owned by a program")
	}
	if from.Lamports < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "have %d, need %d", from.Lamports, amount)
	}
	from.Lamports -= amount
	if err := c.credit(db, dest, amount); err != nil {
		return err
	}
	return c.save(db, src, from)
}

func (c BaseController) WriteData(db ledger.KVStore, program, addr ledger.Address, data []byte) error {
	acc, err := c.owned(db, program, addr)
	if err != nil {
		return err
	}
	if len(data) != len(acc.Data) {
		return errors.Wrapf(errors.ErrInput, "data size %d does not match allocated %d", len(data), len(acc.Data))
	}
	acc.Data = append(acc.Data[:0], data...)
	return c.bucket.Put(db, addr, acc)
}

func (c BaseController) CloseAccount(db ledger.KVStore, program, addr, dest ledger.Address) error {
	acc, err := c.owned(db, program, addr)
	if err != nil {
		return err
	}
	if addr.Equals(dest) {
		return errors.Wrap(errors.ErrInput, "cannot close into itself")
	}
	if acc.Lamports > 0 {
		if err := c.credit(db, dest, acc.Lamports); err != nil {
			return err
		}
	}
	if err := c.bucket.Delete(db, addr); err != nil {
		return errors.Wrap(err, "delete account")
	}
	return nil
}

// owned loads the account at addr and ensures program owns it.
func (c BaseController) owned(db ledger.ReadOnlyKVStore, program, addr ledger.Address) (*Account, error) {
	acc, err := c.bucket.Get(db, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	if !acc.Owner.Equals(program) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "account %s not owned by %s", addr, program)
	}
	return acc, nil
}

// credit adds lamports to dest, creating a system account if needed.
func (c BaseController) credit(db ledger.KVStore, dest ledger.Address, amount uint64) error {
	if err := dest.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	to, err := c.bucket.Get(db, dest)
	switch {
	case errors.ErrNotFound.Is(err):
		to = &Account{Owner: ProgramID}
	case err != nil:
		return errors.Wrap(err, "load destination")
	}
	if to.Lamports+amount < to.Lamports {
		return errors.Wrap(errors.ErrOverflow, "lamports")
	}
	to.Lamports += amount
	return c.bucket.Put(db, dest, to)
}

// save stores the account, removing plain accounts that hold nothing.
func (c BaseController) save(db ledger.KVStore, addr ledger.Address, acc *Account) error {
	if acc.Lamports == 0 && acc.IsSystem() {
		return c.bucket.Delete(db, addr)
	}
	return c.bucket.Put(db, addr, acc)
}
