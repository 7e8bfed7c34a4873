package ledger

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/store"
)

// Config is the ledger configuration created from genesis.
type Config struct {
	ChainID string `json:"chain_id"`
}

// Validate ensures the chain ID is well formed.
func (c *Config) Validate() error {
	if !IsValidChainID(c.ChainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %q", c.ChainID)
	}
	return nil
}

// LoadConfig returns the ledger configuration stored by the genesis
// initializer.
func LoadConfig(db gconf.ReadStore) (*Config, error) {
	var c Config
	if err := gconf.Load(db, "ledger", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Initializer fulfils the quorum.Initializer interface to load the chain
// ID and the funded wallets from the genesis file.
type Initializer struct{}

var _ quorum.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts quorum.Options, db store.KVStore) error {
	var genesis struct {
		ChainID  string `json:"chain_id"`
		Accounts []struct {
			Address  quorum.Identity `json:"address"`
			Lamports uint64          `json:"lamports"`
		} `json:"accounts"`
	}
	if err := opts.ReadOptions("ledger", &genesis); err != nil {
		return err
	}
	if err := gconf.Save(db, "ledger", &Config{ChainID: genesis.ChainID}); err != nil {
		return err
	}

	bucket := NewAccountBucket(db)
	for i, a := range genesis.Accounts {
		acc, err := bucket.Get(a.Address)
		if err != nil {
			return err
		}
		if !acc.Owner.Equals(quorum.SystemProgramID) {
			return errors.Wrapf(errors.ErrAccountInUse, "account #%d: %s", i, a.Address)
		}
		if acc.Lamports, err = addLamports(acc.Lamports, a.Lamports); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
		if err := bucket.Save(a.Address, acc); err != nil {
			return errors.Wrapf(err, "account #%d", i)
		}
	}
	return nil
}
