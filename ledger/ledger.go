package ledger

import (
	"context"
	"sync"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
)

// Ledger executes transactions against accounts kept in a store.
//
// Transactions are executed one at a time. Every instruction sees the
// changes made by the instructions executed before it.
type Ledger struct {
	mu       sync.Mutex
	db       store.CacheableKVStore
	chainID  string
	programs map[quorum.Identity]quorum.Program
}

// New returns a ledger that keeps its state in given store. The system
// program is always deployed.
func New(db store.CacheableKVStore, chainID string) (*Ledger, error) {
	if !IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %q", chainID)
	}
	l := &Ledger{
		db:       db,
		chainID:  chainID,
		programs: make(map[quorum.Identity]quorum.Program),
	}
	l.programs[quorum.SystemProgramID] = SystemProgram{}
	return l, nil
}

// ChainID returns the chain ID signatures must be made for.
func (l *Ledger) ChainID() string {
	return l.chainID
}

// Deploy makes the program callable under given identity.
func (l *Ledger) Deploy(id quorum.Identity, p quorum.Program) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.programs[id]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "program %s", id)
	}
	l.programs[id] = p
	return nil
}

// Account returns the current state of the account with given key.
func (l *Ledger) Account(key quorum.Identity) (*quorum.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(NewAccountBucket(l.db), key)
}

// Accounts calls fn for every stored account.
func (l *Ledger) Accounts(fn func(quorum.Identity, *quorum.Account) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NewAccountBucket(l.db).Iterate(fn)
}

// Sequence returns the sequence the next signature of given signer must
// carry.
func (l *Ledger) Sequence(signer quorum.Identity) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NewSequenceBucket(l.db).Get(signer)
}

func (l *Ledger) load(bucket *AccountBucket, key quorum.Identity) (*quorum.Account, error) {
	acc, err := bucket.Get(key)
	if err != nil {
		return nil, err
	}
	if _, ok := l.programs[key]; ok {
		acc.Executable = true
	}
	return acc, nil
}

// Submit verifies and executes the transaction. Either all changes of the
// transaction are persisted or none is.
func (l *Ledger) Submit(ctx context.Context, tx *Tx) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := quorum.GetLogger(ctx).With("module", "ledger")
	ctx = quorum.WithChainID(ctx, l.chainID)

	if err := tx.Validate(); err != nil {
		return err
	}

	cache := l.db.CacheWrap()
	if err := l.execute(ctx, cache, tx); err != nil {
		cache.Discard()
		logger.Debug("transaction rejected", "err", err)
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "commit")
	}
	logger.Info("transaction committed", "instructions", len(tx.Instructions), "signers", len(tx.Signatures))
	return nil
}

func (l *Ledger) execute(ctx context.Context, db store.KVStore, tx *Tx) error {
	signers, err := l.authenticate(db, tx)
	if err != nil {
		return err
	}

	bucket := NewAccountBucket(db)
	for i, in := range tx.Instructions {
		if err := l.executeInstruction(ctx, bucket, signers, in); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return nil
}

// authenticate verifies every signature and advances the sequence of every
// signer.
func (l *Ledger) authenticate(db store.KVStore, tx *Tx) (map[quorum.Identity]bool, error) {
	sequences := NewSequenceBucket(db)
	signers := make(map[quorum.Identity]bool, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		if signers[sig.Signer] {
			return nil, errors.Wrapf(errors.ErrDuplicate, "signer %s", sig.Signer)
		}
		if err := VerifySignature(tx, sig, l.chainID); err != nil {
			return nil, err
		}
		want, err := sequences.Get(sig.Signer)
		if err != nil {
			return nil, err
		}
		if sig.Sequence != want {
			return nil, errors.Wrapf(errors.ErrUnauthorized, "sequence of %s: want %d, got %d", sig.Signer, want, sig.Sequence)
		}
		if err := sequences.Increment(sig.Signer); err != nil {
			return nil, err
		}
		signers[sig.Signer] = true
	}
	return signers, nil
}

func (l *Ledger) executeInstruction(
	ctx context.Context,
	bucket *AccountBucket,
	signers map[quorum.Identity]bool,
	in quorum.Instruction,
) error {
	loaded := make(map[quorum.Identity]*quorum.Account)
	infos := make([]*quorum.AccountInfo, len(in.Accounts))
	for i, m := range in.Accounts {
		if m.IsSigner && !signers[m.PublicKey] {
			return errors.Wrapf(errors.ErrMissingSignature, "account %s", m.PublicKey)
		}
		acc, ok := loaded[m.PublicKey]
		if !ok {
			var err error
			if acc, err = l.load(bucket, m.PublicKey); err != nil {
				return err
			}
			loaded[m.PublicKey] = acc
		}
		infos[i] = &quorum.AccountInfo{
			Key:        m.PublicKey,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    acc,
		}
	}

	f := newFrame(l, in.Program, 1, infos)
	if err := f.run(ctx, in.Data); err != nil {
		return err
	}

	for key, acc := range loaded {
		if acc.Executable {
			continue
		}
		if err := bucket.Save(key, acc); err != nil {
			return err
		}
	}
	return nil
}
