package system

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const (
	pathSendMsg                = "system/send"
	pathUpdateConfigurationMsg = "system/update_configuration"
)

// SendMsg moves native lamports from Src to Dest. It must be signed by
// Src.
type SendMsg struct {
	Src      ledger.Address `json:"src"`
	Dest     ledger.Address `json:"dest"`
	Lamports uint64         `json:"lamports"`
}

var _ ledger.Msg = (*SendMsg)(nil)

func (SendMsg) Path() string {
	return pathSendMsg
}

func (m *SendMsg) Validate() error {
	if err := m.Src.Validate(); err != nil {
		return errors.Wrap(err, "src")
	}
	if err := m.Dest.Validate(); err != nil {
		return errors.Wrap(err, "dest")
	}
	if m.Lamports == 0 {
		return errors.Wrap(errors.ErrAmount, "lamports must be positive")
	}
	return nil
}

// UpdateConfigurationMsg changes the rent parameters. Zero fields of the
// patch are left unchanged.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ ledger.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	if len(m.Patch.Owner) != 0 {
		if err := m.Patch.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	return nil
}
