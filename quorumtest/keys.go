package quorumtest

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/quorum"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a new ed25519 private key.
func NewKey(t testing.TB) ed25519.PrivateKey {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	return priv
}

// KeyIdentity returns the identity of given private key.
func KeyIdentity(key ed25519.PrivateKey) quorum.Identity {
	return solana.PublicKeyFromBytes(key.Public().(ed25519.PublicKey))
}

// RandomIdentity returns an identity of a freshly generated key.
func RandomIdentity(t testing.TB) quorum.Identity {
	t.Helper()
	return KeyIdentity(NewKey(t))
}

// SequenceIdentity returns an identity with all bytes but the last zero.
// It is useful when tests need a stable ordering of identities.
func SequenceIdentity(n uint8) quorum.Identity {
	var id quorum.Identity
	id[len(id)-1] = n
	return id
}
