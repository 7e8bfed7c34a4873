package multisig

import (
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/ledger"
)

const (
	// DefaultAccountSize is the data size of a registry account.
	DefaultAccountSize = 1024

	// DefaultRentLamports is the amount a registry account is funded with.
	DefaultRentLamports = 80179200
)

// Config is the configuration of the multisig program.
type Config struct {
	// AccountSize is the data size the registry is allocated with.
	AccountSize uint64 `json:"account_size"`
	// RentLamports is moved from the payer to the registry account.
	RentLamports uint64 `json:"rent_lamports"`
	// StrictThreshold rejects a threshold above the roster size and
	// signers holding more than one seat.
	StrictThreshold bool `json:"strict_threshold"`
	// AllowReexecution allows an executed proposal to be executed again.
	AllowReexecution bool `json:"allow_reexecution"`
}

// DefaultConfig returns the configuration used when none is stored.
func DefaultConfig() Config {
	return Config{
		AccountSize:     DefaultAccountSize,
		RentLamports:    DefaultRentLamports,
		StrictThreshold: true,
	}
}

// Validate implements gconf.Configuration.
func (c *Config) Validate() error {
	if c.AccountSize < RegistryLen {
		return errors.Wrapf(errors.ErrInput, "account size %d is below %d", c.AccountSize, RegistryLen)
	}
	if c.AccountSize > ledger.MaxAccountSize {
		return errors.Wrapf(errors.ErrInput, "account size %d exceeds %d", c.AccountSize, ledger.MaxAccountSize)
	}
	return nil
}

// LoadConfig returns the stored configuration, or the default one if none
// was stored.
func LoadConfig(db gconf.ReadStore) (Config, error) {
	conf := DefaultConfig()
	err := gconf.Load(db, "multisig", &conf)
	switch {
	case errors.ErrNotFound.Is(err):
		return DefaultConfig(), nil
	case err != nil:
		return Config{}, err
	}
	return conf, conf.Validate()
}
