package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/ledger"
	"github.com/iov-one/quorum/store"
)

// Initializer fulfils the quorum.Initializer interface to load the program
// configuration and an optional registry from genesis.
type Initializer struct {
	ProgramID quorum.Identity
}

var _ quorum.Initializer = (*Initializer)(nil)

// FromGenesis stores the configuration found under conf.multisig, or the
// default one, and writes the registry declared under multisig.registry.
func (i *Initializer) FromGenesis(opts quorum.Options, kv store.KVStore) error {
	conf := DefaultConfig()
	switch err := gconf.InitConfig(kv, opts, "multisig", &conf); {
	case errors.ErrNotFound.Is(err):
		if err := gconf.Save(kv, "multisig", &conf); err != nil {
			return err
		}
	case err != nil:
		return err
	}

	var genesis struct {
		Registry *struct {
			Threshold uint8             `json:"threshold"`
			Signers   []quorum.Identity `json:"signers"`
		} `json:"registry"`
	}
	if err := opts.ReadOptions("multisig", &genesis); err != nil {
		return err
	}
	if genesis.Registry == nil {
		return nil
	}
	if err := ValidateRoster(genesis.Registry.Threshold, genesis.Registry.Signers, conf.StrictThreshold); err != nil {
		return errors.Wrap(err, "genesis registry")
	}

	addr, _, err := DeriveRegistry(quorum.Deriver, i.ProgramID)
	if err != nil {
		return err
	}
	bucket := ledger.NewAccountBucket(kv)
	acc, err := bucket.Get(addr)
	if err != nil {
		return err
	}
	if !acc.IsEmpty() {
		return errors.Wrapf(errors.ErrAccountInUse, "registry %s", addr)
	}
	acc = &quorum.Account{
		Owner:    i.ProgramID,
		Lamports: conf.RentLamports,
		Data:     make([]byte, conf.AccountSize),
	}
	r := NewRegistry(genesis.Registry.Threshold, genesis.Registry.Signers)
	if err := r.Store(acc.Data); err != nil {
		return err
	}
	return bucket.Save(addr, acc)
}
