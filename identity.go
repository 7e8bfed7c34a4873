package quorum

import (
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/quorum/errors"
)

// Identity is a 32 byte key identifying an account or a program. Two
// identities are equal only if all 32 bytes are equal.
type Identity = solana.PublicKey

// AccountMeta names an account an instruction operates on, together with
// the privileges the instruction requests for it.
type AccountMeta = solana.AccountMeta

// SystemProgramID is the identity of the native program that creates
// accounts and moves lamports between them. It is all zeros.
var SystemProgramID = solana.SystemProgramID

// IdentitySize is the length of an Identity in bytes.
const IdentitySize = solana.PublicKeyLength

// ParseIdentity decodes the base58 text form of an identity.
func ParseIdentity(s string) (Identity, error) {
	id, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return Identity{}, errors.Wrapf(errors.ErrInput, "identity %q: %s", s, err)
	}
	return id, nil
}

// IdentityFromBytes returns the identity stored in given bytes. The input
// must be exactly IdentitySize long.
func IdentityFromBytes(b []byte) (Identity, error) {
	if len(b) != IdentitySize {
		return Identity{}, errors.Wrapf(errors.ErrInput, "identity must be %d bytes, got %d", IdentitySize, len(b))
	}
	return solana.PublicKeyFromBytes(b), nil
}

// Meta returns an account descriptor for given key.
func Meta(key Identity, writable, signer bool) AccountMeta {
	return AccountMeta{PublicKey: key, IsWritable: writable, IsSigner: signer}
}
