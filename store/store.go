/*
Package store defines the key-value storage the host ledger keeps accounts in,
and the implementations used by the ledger: an in-memory btree store, a
LevelDB store for persistent homes, and btree cache wraps that group the
writes of one transaction so they can be committed or dropped together.
*/
package store

// ReadOnlyKVStore is a simple interface to query data.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist.
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists.
	Has(key []byte) (bool, error)

	// Iterator over a domain of keys in ascending order. End is exclusive.
	// A nil start or end leaves that side of the domain open.
	Iterator(start, end []byte) (Iterator, error)
}

// KVStore is a simple interface to get/set data.
type KVStore interface {
	ReadOnlyKVStore

	// Set sets the key.
	Set(key, value []byte) error

	// Delete deletes the key.
	Delete(key []byte) error
}

// Iterator allows us to access a set of items within a range of keys.
//
//	var itr Iterator = ...
//	defer itr.Release()
//
//	for {
//	  k, v, err := itr.Next()
//	  if errors.ErrIteratorDone.Is(err) { break }
//	  ...
//	}
type Iterator interface {
	// Next returns the next key and value or ErrIteratorDone.
	Next() (key, value []byte, err error)

	// Release releases the Iterator.
	Release()
}

// CacheableKVStore is a KVStore that supports cache wrapping.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap maintains a scratch-pad of uncommitted data that is visible to
// all queries made through it.
//
// At the end, call Write to use the cached data, or Discard to drop it.
type KVCacheWrap interface {
	// CacheableKVStore allows us to use this Cache recursively
	CacheableKVStore

	// Write syncs with the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}
