package door

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/store"
)

// Initializer fulfils the quorum.Initializer interface to load the door
// configuration from genesis.
type Initializer struct{}

var _ quorum.Initializer = Initializer{}

// FromGenesis stores the configuration found under conf.door, or the
// default one.
func (Initializer) FromGenesis(opts quorum.Options, kv store.KVStore) error {
	conf := DefaultConfig()
	err := gconf.InitConfig(kv, opts, "door", &conf)
	if errors.ErrNotFound.Is(err) {
		return gconf.Save(kv, "door", &conf)
	}
	return err
}
