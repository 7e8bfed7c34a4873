package door

import (
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/ledger"
	"github.com/iov-one/quorum/x/multisig"
)

// Config is the configuration of the door program.
type Config struct {
	// AccountSize is the data size the access account is allocated with.
	AccountSize uint64 `json:"account_size"`
	// RentLamports is moved from the payer to the access account.
	RentLamports uint64 `json:"rent_lamports"`
}

// DefaultConfig returns the configuration used when none is stored.
func DefaultConfig() Config {
	return Config{
		AccountSize:  1024,
		RentLamports: 80179200,
	}
}

// Validate implements gconf.Configuration.
func (c *Config) Validate() error {
	if c.AccountSize < StateLen || c.AccountSize > ledger.MaxAccountSize {
		return errors.Wrapf(errors.ErrInput, "account size %d not in [%d, %d]", c.AccountSize, StateLen, ledger.MaxAccountSize)
	}
	if c.AccountSize == multisig.RegistryLen {
		return errors.Wrapf(errors.ErrInput, "account size %d is reserved for rosters", c.AccountSize)
	}
	return nil
}

// LoadConfig returns the stored configuration, or the default one if none
// was stored.
func LoadConfig(db gconf.ReadStore) (Config, error) {
	conf := DefaultConfig()
	err := gconf.Load(db, "door", &conf)
	switch {
	case errors.ErrNotFound.Is(err):
		return DefaultConfig(), nil
	case err != nil:
		return Config{}, err
	}
	return conf, conf.Validate()
}
