package store

import (
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/stretchr/testify/require"
)

func collect(t testing.TB, it Iterator) []Model {
	t.Helper()
	defer it.Release()
	var res []Model
	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		require.NoError(t, err)
		res = append(res, Model{Key: k, Value: v})
	}
}

func TestMemStoreGetSet(t *testing.T) {
	db := MemStore()

	v, err := db.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, db.Set([]byte("a"), []byte("1")))
	v, err = db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	ok, err := db.Has([]byte("a"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, db.Delete([]byte("a")))
	ok, err = db.Has([]byte("a"))
	require.NoError(t, err)
	require.False(t, ok)

	require.True(t, errors.ErrInput.Is(db.Set(nil, []byte("x"))))
}

func TestCacheWrapWriteAndDiscard(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("keep"), []byte("old")))
	require.NoError(t, base.Set([]byte("gone"), []byte("old")))

	cases := map[string]struct {
		commit   bool
		wantKeep []byte
		wantGone []byte
		wantNew  []byte
	}{
		"discard leaves the parent untouched": {
			commit:   false,
			wantKeep: []byte("old"),
			wantGone: []byte("old"),
			wantNew:  nil,
		},
		"write applies every operation": {
			commit:   true,
			wantKeep: []byte("new"),
			wantGone: nil,
			wantNew:  []byte("fresh"),
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent := base.CacheWrap()
			cache := parent.CacheWrap()
			require.NoError(t, cache.Set([]byte("keep"), []byte("new")))
			require.NoError(t, cache.Delete([]byte("gone")))
			require.NoError(t, cache.Set([]byte("new"), []byte("fresh")))

			// the cache sees its own writes
			v, err := cache.Get([]byte("gone"))
			require.NoError(t, err)
			require.Nil(t, v)

			if tc.commit {
				require.NoError(t, cache.Write())
			} else {
				cache.Discard()
			}

			for key, want := range map[string][]byte{"keep": tc.wantKeep, "gone": tc.wantGone, "new": tc.wantNew} {
				got, err := parent.Get([]byte(key))
				require.NoError(t, err)
				require.Equal(t, want, got, key)
			}
		})
	}
}

func TestCacheWrapIterator(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("a"), []byte("1")))
	require.NoError(t, base.Set([]byte("b"), []byte("2")))
	require.NoError(t, base.Set([]byte("d"), []byte("4")))

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("c"), []byte("3")))
	require.NoError(t, cache.Set([]byte("a"), []byte("one")))
	require.NoError(t, cache.Delete([]byte("b")))

	it, err := cache.Iterator(nil, nil)
	require.NoError(t, err)
	require.Equal(t, []Model{
		{Key: []byte("a"), Value: []byte("one")},
		{Key: []byte("c"), Value: []byte("3")},
		{Key: []byte("d"), Value: []byte("4")},
	}, collect(t, it))

	it, err = cache.Iterator([]byte("b"), []byte("d"))
	require.NoError(t, err)
	require.Equal(t, []Model{
		{Key: []byte("c"), Value: []byte("3")},
	}, collect(t, it))
}
