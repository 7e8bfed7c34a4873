package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/ledger"
	"github.com/iov-one/quorum/store"
	"github.com/iov-one/quorum/x/counter"
	"github.com/iov-one/quorum/x/door"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/mr-tron/base58"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"
)

// Programs is the set of program identities a home ledger deploys. It is
// read from the "programs" section of the genesis file.
type Programs struct {
	Multisig quorum.Identity `json:"multisig"`
	Door     quorum.Identity `json:"door"`
	Counter  quorum.Identity `json:"counter"`
}

var _ gconf.Configuration = (*Programs)(nil)

// Validate implements gconf.Configuration.
func (p *Programs) Validate() error {
	ids := map[string]quorum.Identity{
		"multisig": p.Multisig,
		"door":     p.Door,
		"counter":  p.Counter,
	}
	seen := make(map[quorum.Identity]string)
	for name, id := range ids {
		if id.IsZero() {
			return errors.Wrapf(errors.ErrInput, "%s program is required", name)
		}
		if id.Equals(quorum.SystemProgramID) {
			return errors.Wrapf(errors.ErrInput, "%s program cannot use the system program identity", name)
		}
		if other, ok := seen[id]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "%s and %s programs share %s", name, other, id)
		}
		seen[id] = name
	}
	return nil
}

// programsInitializer saves the program identities found in genesis.
type programsInitializer struct{}

func (programsInitializer) FromGenesis(opts quorum.Options, db store.KVStore) error {
	var p Programs
	if err := opts.ReadOptions("programs", &p); err != nil {
		return err
	}
	return gconf.Save(db, "programs", &p)
}

func loadPrograms(db gconf.ReadStore) (*Programs, error) {
	var p Programs
	if err := gconf.Load(db, "programs", &p); err != nil {
		return nil, errors.Wrap(err, "home is not initialized")
	}
	return &p, nil
}

// genesisInitializer returns the initializer applying a genesis file to a
// home database. Program identities must be known before the multisig
// registry can be derived, so they are read from opts.
func genesisInitializer(opts quorum.Options) (quorum.Initializer, error) {
	var p Programs
	if err := opts.ReadOptions("programs", &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "genesis programs")
	}
	return quorum.ChainInitializers(
		ledger.Initializer{},
		programsInitializer{},
		&multisig.Initializer{ProgramID: p.Multisig},
		door.Initializer{},
	), nil
}

// homeDB is an open home database.
type homeDB struct {
	*store.LevelDB
	programs *Programs
}

// openHome opens an initialized home database. Close it as soon as
// possible because a home can be opened by only one process at a time.
func openHome(home string) (*homeDB, error) {
	db, err := store.OpenLevelDB(home)
	if err != nil {
		return nil, fmt.Errorf("cannot open home %q: %s", home, err)
	}
	p, err := loadPrograms(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &homeDB{LevelDB: db, programs: p}, nil
}

// Ledger returns a ledger running on top of the home database with all
// programs deployed.
func (h *homeDB) Ledger() (*ledger.Ledger, error) {
	lconf, err := ledger.LoadConfig(h)
	if err != nil {
		return nil, errors.Wrap(err, "ledger configuration")
	}
	mconf, err := multisig.LoadConfig(h)
	if err != nil {
		return nil, errors.Wrap(err, "multisig configuration")
	}
	dconf, err := door.LoadConfig(h)
	if err != nil {
		return nil, errors.Wrap(err, "door configuration")
	}
	l, err := ledger.New(h, lconf.ChainID)
	if err != nil {
		return nil, err
	}
	deploy := map[quorum.Identity]quorum.Program{
		h.programs.Multisig: multisig.NewProgram(mconf),
		h.programs.Door:     door.NewProgram(dconf),
		h.programs.Counter:  counter.Program{},
	}
	for id, p := range deploy {
		if err := l.Deploy(id, p); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// withHome opens the home, calls fn and closes the home before returning.
func withHome(home string, fn func(*homeDB) error) error {
	h, err := openHome(home)
	if err != nil {
		return err
	}
	if err := fn(h); err != nil {
		h.Close()
		return err
	}
	return h.Close()
}

// decodePrivateKey loads a private key written by keygen. The key is
// stored base58 encoded.
func decodePrivateKey(filepath string) (ed25519.PrivateKey, error) {
	raw, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q file: %s", filepath, err)
	}
	data, err := base58.Decode(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("cannot decode %q file: %s", filepath, err)
	}
	if len(data) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(data))
	}
	return ed25519.PrivateKey(data), nil
}

func keyIdentity(key ed25519.PrivateKey) quorum.Identity {
	var id quorum.Identity
	copy(id[:], key.Public().(ed25519.PublicKey))
	return id
}

// writeInstructions writes an unsigned transaction containing given
// instructions.
func writeInstructions(w io.Writer, ins ...quorum.Instruction) error {
	_, err := ledger.WriteTx(w, &ledger.Tx{Instructions: ins})
	return err
}

func newLogger(level string) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, opt), nil
}
