package quorum

import (
	"bytes"

	"github.com/iov-one/quorum/errors"
)

// Account is the state the ledger keeps for every address.
type Account struct {
	// Owner is the program allowed to change Data and to debit Lamports.
	Owner      Identity
	Lamports   uint64
	Data       []byte
	Executable bool
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return &c
}

// Equals returns true if both accounts hold the same state.
func (a *Account) Equals(b *Account) bool {
	return a.Owner.Equals(b.Owner) &&
		a.Lamports == b.Lamports &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// IsEmpty returns true for an account that was never funded or allocated.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner.Equals(SystemProgramID) && !a.Executable
}

// AccountInfo is an account as seen by a program during a single call. The
// Account pointer is shared by every frame of the call stack, so a change
// made by a nested call is visible to the caller once the nested call
// returns.
type AccountInfo struct {
	Key        Identity
	IsSigner   bool
	IsWritable bool
	*Account
}

// Meta returns the descriptor of this account with the privileges it holds
// in the current call.
func (a *AccountInfo) Meta() AccountMeta {
	return Meta(a.Key, a.IsWritable, a.IsSigner)
}

// RequireSigner returns an error unless the account signed the call.
func RequireSigner(a *AccountInfo) error {
	if !a.IsSigner {
		return errors.Wrapf(errors.ErrMissingSignature, "account %s", a.Key)
	}
	return nil
}

// RequireWritable returns an error unless the account was passed writable.
func RequireWritable(a *AccountInfo) error {
	if !a.IsWritable {
		return errors.Wrapf(errors.ErrUnauthorized, "account %s is not writable", a.Key)
	}
	return nil
}

// RequireOwner returns an error unless the account is owned by the program.
func RequireOwner(a *AccountInfo, program Identity) error {
	if !a.Owner.Equals(program) {
		return errors.Wrapf(errors.ErrIncorrectOwner, "account %s is owned by %s", a.Key, a.Owner)
	}
	return nil
}

// AccountIter hands out the accounts of an instruction in order.
type AccountIter struct {
	accounts []*AccountInfo
	pos      int
}

// NewAccountIter returns an iterator over given accounts.
func NewAccountIter(accounts []*AccountInfo) *AccountIter {
	return &AccountIter{accounts: accounts}
}

// Next returns the next account or ErrNotEnoughAccounts.
func (it *AccountIter) Next() (*AccountInfo, error) {
	if it.pos >= len(it.accounts) {
		return nil, errors.Wrapf(errors.ErrNotEnoughAccounts, "account %d", it.pos)
	}
	a := it.accounts[it.pos]
	it.pos++
	return a, nil
}

// Rest returns all accounts that were not consumed yet.
func (it *AccountIter) Rest() []*AccountInfo {
	rest := it.accounts[it.pos:]
	it.pos = len(it.accounts)
	return rest
}
