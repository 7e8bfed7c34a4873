package quorumtest

import (
	"github.com/iov-one/quorum"
)

// NewAccountInfo returns an account owned by given program with allocated,
// zeroed data of given size.
func NewAccountInfo(key, owner quorum.Identity, lamports uint64, size int) *quorum.AccountInfo {
	var data []byte
	if size > 0 {
		data = make([]byte, size)
	}
	return &quorum.AccountInfo{
		Key: key,
		Account: &quorum.Account{
			Owner:    owner,
			Lamports: lamports,
			Data:     data,
		},
	}
}

// Wallet returns a system owned account holding given lamports.
func Wallet(key quorum.Identity, lamports uint64) *quorum.AccountInfo {
	return NewAccountInfo(key, quorum.SystemProgramID, lamports, 0)
}

// Signer marks the account as a signer and returns it.
func Signer(a *quorum.AccountInfo) *quorum.AccountInfo {
	a.IsSigner = true
	return a
}

// Writable marks the account as writable and returns it.
func Writable(a *quorum.AccountInfo) *quorum.AccountInfo {
	a.IsWritable = true
	return a
}

// Accounts collects account infos into a slice.
func Accounts(infos ...*quorum.AccountInfo) []*quorum.AccountInfo {
	return infos
}
