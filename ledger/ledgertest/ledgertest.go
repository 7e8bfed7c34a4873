/*
Package ledgertest runs programs on an in-memory ledger in tests.
*/
package ledgertest

import (
	"context"
	"fmt"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/ledger"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	"golang.org/x/crypto/ed25519"
)

// ChainID is the chain every test ledger runs.
const ChainID = "test-chain"

// Ledger wraps a ledger kept in memory.
type Ledger struct {
	*ledger.Ledger
	DB store.CacheableKVStore
}

// New returns a ledger with given programs deployed. Every given key is
// funded with given amount of lamports.
func New(t testing.TB, programs map[quorum.Identity]quorum.Program, lamports uint64, keys ...ed25519.PrivateKey) *Ledger {
	t.Helper()
	db := store.MemStore()
	bucket := ledger.NewAccountBucket(db)
	for _, k := range keys {
		acc := &quorum.Account{Owner: quorum.SystemProgramID, Lamports: lamports}
		if err := bucket.Save(quorumtest.KeyIdentity(k), acc); err != nil {
			t.Fatalf("cannot fund account: %s", err)
		}
	}
	l, err := ledger.New(db, ChainID)
	if err != nil {
		t.Fatalf("cannot create ledger: %s", err)
	}
	for id, p := range programs {
		if err := l.Deploy(id, p); err != nil {
			t.Fatalf("cannot deploy %s: %s", id, err)
		}
	}
	return &Ledger{Ledger: l, DB: db}
}

// Tx returns the transaction signed by every given key.
func (l *Ledger) Tx(t testing.TB, ins []quorum.Instruction, keys ...ed25519.PrivateKey) *ledger.Tx {
	t.Helper()
	tx := &ledger.Tx{Instructions: ins}
	for _, k := range keys {
		seq, err := l.Sequence(quorumtest.KeyIdentity(k))
		if err != nil {
			t.Fatalf("cannot read sequence: %s", err)
		}
		sig, err := ledger.SignTx(k, tx, l.ChainID(), seq)
		if err != nil {
			t.Fatalf("cannot sign: %s", err)
		}
		tx.Signatures = append(tx.Signatures, sig)
	}
	return tx
}

// Submit signs a transaction holding given instructions and executes it.
func (l *Ledger) Submit(t testing.TB, ins []quorum.Instruction, keys ...ed25519.PrivateKey) error {
	t.Helper()
	return l.Ledger.Submit(context.Background(), l.Tx(t, ins, keys...))
}

// MustAccount returns the account stored under given key.
func (l *Ledger) MustAccount(t testing.TB, key quorum.Identity) *quorum.Account {
	t.Helper()
	acc, err := l.Account(key)
	if err != nil {
		t.Fatalf("cannot load %s: %s", key, err)
	}
	return acc
}

// Must fails the test if an instruction builder returned an error.
func Must(in quorum.Instruction, err error) quorum.Instruction {
	if err != nil {
		panic(fmt.Sprintf("cannot build instruction: %s", err))
	}
	return in
}
