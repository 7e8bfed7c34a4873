package ledger

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
)

var (
	accountPrefix  = []byte("acct:")
	sequencePrefix = []byte("seq:")
)

// AccountBucket persists accounts in a key-value store.
type AccountBucket struct {
	db store.KVStore
}

// NewAccountBucket returns a bucket that reads and writes accounts to given
// store.
func NewAccountBucket(db store.KVStore) *AccountBucket {
	return &AccountBucket{db: db}
}

func accountKey(key quorum.Identity) []byte {
	return append(append([]byte{}, accountPrefix...), key[:]...)
}

// Get returns the account stored under given key. An account that was never
// stored is an empty account owned by the system program.
func (b *AccountBucket) Get(key quorum.Identity) (*quorum.Account, error) {
	raw, err := b.db.Get(accountKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "load account")
	}
	if raw == nil {
		return &quorum.Account{Owner: quorum.SystemProgramID}, nil
	}
	acc, err := decodeAccount(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "account %s", key)
	}
	return acc, nil
}

// Save writes the account. Empty accounts are removed from the store.
func (b *AccountBucket) Save(key quorum.Identity, acc *quorum.Account) error {
	if acc.IsEmpty() {
		return b.db.Delete(accountKey(key))
	}
	raw, err := encodeAccount(acc)
	if err != nil {
		return err
	}
	return b.db.Set(accountKey(key), raw)
}

// Iterate calls fn for every stored account, in key order.
func (b *AccountBucket) Iterate(fn func(quorum.Identity, *quorum.Account) error) error {
	end := append([]byte{}, accountPrefix...)
	end[len(end)-1]++
	it, err := b.db.Iterator(accountPrefix, end)
	if err != nil {
		return err
	}
	defer it.Release()

	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return nil
		}
		if err != nil {
			return err
		}
		key, err := quorum.IdentityFromBytes(k[len(accountPrefix):])
		if err != nil {
			return errors.Wrap(errors.ErrCorruptData, "account key")
		}
		acc, err := decodeAccount(v)
		if err != nil {
			return errors.Wrapf(err, "account %s", key)
		}
		if err := fn(key, acc); err != nil {
			return err
		}
	}
}

// owner(32) | lamports(u64) | executable(u8) | data(length prefixed)
func encodeAccount(acc *quorum.Account) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteBytes(acc.Owner[:], false); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteUint64(acc.Lamports, binary.LittleEndian); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteBool(acc.Executable); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := enc.WriteBytes(acc.Data, true); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return buf.Bytes(), nil
}

func decodeAccount(raw []byte) (*quorum.Account, error) {
	dec := bin.NewBinDecoder(raw)
	owner, err := dec.ReadNBytes(quorum.IdentitySize)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptData, "owner: %s", err)
	}
	lamports, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptData, "lamports: %s", err)
	}
	executable, err := readSentinel(dec)
	if err != nil {
		return nil, errors.Wrap(err, "executable")
	}
	data, err := dec.ReadByteSlice()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCorruptData, "data: %s", err)
	}
	acc := &quorum.Account{
		Lamports:   lamports,
		Executable: executable,
	}
	copy(acc.Owner[:], owner)
	if len(data) > 0 {
		acc.Data = append([]byte{}, data...)
	}
	return acc, nil
}

func readSentinel(dec *bin.Decoder) (bool, error) {
	b, err := dec.ReadUint8()
	if err != nil {
		return false, errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(errors.ErrCorruptData, "invalid bool value %d", b)
	}
}

// SequenceBucket keeps the next expected signature sequence of each signer.
type SequenceBucket struct {
	db store.KVStore
}

// NewSequenceBucket returns a bucket backed by given store.
func NewSequenceBucket(db store.KVStore) *SequenceBucket {
	return &SequenceBucket{db: db}
}

func sequenceKey(key quorum.Identity) []byte {
	return append(append([]byte{}, sequencePrefix...), key[:]...)
}

// Get returns the sequence the next signature of given signer must carry.
func (b *SequenceBucket) Get(key quorum.Identity) (uint64, error) {
	raw, err := b.db.Get(sequenceKey(key))
	if err != nil {
		return 0, errors.Wrap(err, "load sequence")
	}
	if raw == nil {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrCorruptData, "sequence of %s", key)
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// Increment advances the sequence of given signer.
func (b *SequenceBucket) Increment(key quorum.Identity) error {
	seq, err := b.Get(key)
	if err != nil {
		return err
	}
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, seq+1)
	return b.db.Set(sequenceKey(key), raw)
}
