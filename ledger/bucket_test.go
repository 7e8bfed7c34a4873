package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"github.com/stretchr/testify/require"
)

func TestAccountBucket(t *testing.T) {
	bucket := NewAccountBucket(store.MemStore())
	key := quorumtest.RandomIdentity(t)

	acc, err := bucket.Get(key)
	require.NoError(t, err)
	require.True(t, acc.IsEmpty())

	want := &quorum.Account{
		Owner:      quorumtest.RandomIdentity(t),
		Lamports:   80179200,
		Data:       []byte{1, 2, 3, 0, 0},
		Executable: false,
	}
	require.NoError(t, bucket.Save(key, want))

	got, err := bucket.Get(key)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("account mismatch (-want +got):\n%s", diff)
	}

	var seen []quorum.Identity
	require.NoError(t, bucket.Iterate(func(k quorum.Identity, _ *quorum.Account) error {
		seen = append(seen, k)
		return nil
	}))
	require.Equal(t, []quorum.Identity{key}, seen)

	// Saving an empty account removes it.
	require.NoError(t, bucket.Save(key, &quorum.Account{Owner: quorum.SystemProgramID}))
	seen = nil
	require.NoError(t, bucket.Iterate(func(k quorum.Identity, _ *quorum.Account) error {
		seen = append(seen, k)
		return nil
	}))
	require.Empty(t, seen)
}

func TestDecodeAccountCorrupt(t *testing.T) {
	raw, err := encodeAccount(&quorum.Account{Lamports: 1, Executable: true})
	require.NoError(t, err)

	raw[quorum.IdentitySize+8] = 2
	_, err = decodeAccount(raw)
	require.True(t, errors.ErrCorruptData.Is(err), "%+v", err)

	_, err = decodeAccount(raw[:10])
	require.True(t, errors.ErrCorruptData.Is(err), "%+v", err)
}

func TestSequenceBucket(t *testing.T) {
	bucket := NewSequenceBucket(store.MemStore())
	key := quorumtest.RandomIdentity(t)

	seq, err := bucket.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint64(0), seq)

	require.NoError(t, bucket.Increment(key))
	require.NoError(t, bucket.Increment(key))

	seq, err = bucket.Get(key)
	require.NoError(t, err)
	require.Equal(t, uint64(2), seq)
}
