package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/quorum/errors"
)

// MemStore returns a simple implementation useful for tests and short lived
// ledgers. There is no persistence here.
func MemStore() CacheableKVStore {
	return NewBTreeCacheWrap(emptyKVStore{})
}

// BTreeCacheWrap places a btree cache over a KVStore. Reads fall through to
// the backing store for keys the cache does not know about.
type BTreeCacheWrap struct {
	bt   *btree.BTree
	back KVStore
}

var _ KVCacheWrap = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap initializes a BTree to cache around this kv store.
func NewBTreeCacheWrap(back KVStore) *BTreeCacheWrap {
	return &BTreeCacheWrap{
		bt:   btree.New(2),
		back: back,
	}
}

// CacheWrap layers another BTree on top of this one.
func (b *BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b)
}

// Write applies all cached operations to the backing store, in key order,
// and then cleans up.
func (b *BTreeCacheWrap) Write() error {
	var err error
	b.bt.Ascend(func(i btree.Item) bool {
		switch it := i.(type) {
		case setItem:
			err = b.back.Set(it.key, it.value)
		case deletedItem:
			err = b.back.Delete(it.key)
		default:
			err = errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", i)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	b.Discard()
	return nil
}

// Discard invalidates this CacheWrap and releases all data.
func (b *BTreeCacheWrap) Discard() {
	b.bt.Clear(false)
}

// Set writes to the BTree.
func (b *BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	b.bt.ReplaceOrInsert(setItem{bkey{copyBytes(key)}, copyBytes(value)})
	return nil
}

// Delete marks the key as deleted in the BTree.
func (b *BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrInput, "nil key")
	}
	b.bt.ReplaceOrInsert(deletedItem{bkey{copyBytes(key)}})
	return nil
}

// Get reads from btree if there, else backing store.
func (b *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	switch it := b.bt.Get(bkey{key}).(type) {
	case nil:
		return b.back.Get(key)
	case setItem:
		return copyBytes(it.value), nil
	case deletedItem:
		return nil, nil
	default:
		return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", it)
	}
}

// Has reads from btree if there, else backing store.
func (b *BTreeCacheWrap) Has(key []byte) (bool, error) {
	switch it := b.bt.Get(bkey{key}).(type) {
	case nil:
		return b.back.Has(key)
	case setItem:
		return true, nil
	case deletedItem:
		return false, nil
	default:
		return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", it)
	}
}

// Iterator combines results from the btree and the backing store. Cached
// writes shadow the backing values.
func (b *BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	defer parent.Release()

	merged := btree.New(2)
	for {
		k, v, err := parent.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		merged.ReplaceOrInsert(setItem{bkey{k}, v})
	}

	ascendRange(b.bt, start, end, func(i btree.Item) bool {
		switch it := i.(type) {
		case setItem:
			merged.ReplaceOrInsert(it)
		case deletedItem:
			merged.Delete(it.bkey)
		}
		return true
	})

	var models []Model
	merged.Ascend(func(i btree.Item) bool {
		it := i.(setItem)
		models = append(models, Model{Key: copyBytes(it.key), Value: copyBytes(it.value)})
		return true
	})
	return NewSliceIterator(models), nil
}

func ascendRange(bt *btree.BTree, start, end []byte, fn btree.ItemIterator) {
	switch {
	case start == nil && end == nil:
		bt.Ascend(fn)
	case start == nil:
		bt.AscendLessThan(bkey{end}, fn)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, fn)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, fn)
	}
}

// we enforce all data in our btree implements keyer so we
// can compare nicely
type keyer interface {
	Key() []byte
}

// bkey implements keyer and btree.Item and may be used for queries or
// embedded in data to store.
type bkey struct {
	key []byte
}

var _ btree.Item = bkey{}

func (k bkey) Key() []byte {
	return k.key
}

// Less returns true iff second argument is greater than first.
func (k bkey) Less(item btree.Item) bool {
	return bytes.Compare(k.key, item.(keyer).Key()) < 0
}

type deletedItem struct {
	bkey
}

type setItem struct {
	bkey
	value []byte
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// emptyKVStore is the backing store of a MemStore. It holds nothing and
// ignores writes.
type emptyKVStore struct{}

var _ KVStore = emptyKVStore{}

func (emptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }
func (emptyKVStore) Has(key []byte) (bool, error)   { return false, nil }
func (emptyKVStore) Set(key, value []byte) error    { return nil }
func (emptyKVStore) Delete(key []byte) error        { return nil }

func (emptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}
