package system

import (
	"math/bits"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
	amino "github.com/tendermint/go-amino"
)

// configPkg is the gconf key of the rent configuration.
const configPkg = "system"

var cdc = amino.NewCodec()

// Configuration holds the rent parameters of the runtime.
type Configuration struct {
	// Owner may update the configuration.
	Owner ledger.Address `json:"owner"`
	// LamportsPerByteYear is the rent charged for a single stored byte.
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	// ExemptionThresholdYears is how many years of rent make an
	// account exempt. Accounts must always be exempt.
	ExemptionThresholdYears uint64 `json:"exemption_threshold_years"`
	// AccountOverhead is the number of bytes charged on top of the data.
	AccountOverhead uint64 `json:"account_overhead"`
}

var _ gconf.Configuration = (*Configuration)(nil)

// DefaultConfiguration returns the rent parameters used when the
// genesis does not declare any.
func DefaultConfiguration() Configuration {
	return Configuration{
		LamportsPerByteYear:     3480,
		ExemptionThresholdYears: 2,
		AccountOverhead:         128,
	}
}

func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

func (c *Configuration) GetOwner() ledger.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner address")
		}
	}
	if c.ExemptionThresholdYears == 0 {
		return errors.Wrap(errors.ErrState, "exemption threshold must be positive")
	}
	return nil
}

// MinimumBalance returns the lamports an account holding space bytes of
// data must keep to be rent exempt.
func (c *Configuration) MinimumBalance(space int) (uint64, error) {
	if space < 0 {
		return 0, errors.Wrap(errors.ErrInput, "negative space")
	}
	size := c.AccountOverhead + uint64(space)
	hi, perYear := bits.Mul64(size, c.LamportsPerByteYear)
	if hi != 0 {
		return 0, errors.Wrap(errors.ErrOverflow, "rent")
	}
	hi, total := bits.Mul64(perYear, c.ExemptionThresholdYears)
	if hi != 0 {
		return 0, errors.Wrap(errors.ErrOverflow, "rent")
	}
	return total, nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, configPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}
