package counter

import (
	"context"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/ledger/ledgertest"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/require"
)

func TestCounterLifecycle(t *testing.T) {
	programID := quorumtest.RandomIdentity(t)
	owner := quorumtest.NewKey(t)
	other := quorumtest.NewKey(t)
	counterKey := quorumtest.NewKey(t)
	counter := quorumtest.KeyIdentity(counterKey)

	l := ledgertest.New(t, map[quorum.Identity]quorum.Program{programID: Program{}}, 1000000, owner, other)

	create := ledgertest.Must(CreateAccountInstruction(programID, quorumtest.KeyIdentity(owner), counter, 1000))
	initIns := InitializeInstruction(programID, quorumtest.KeyIdentity(owner), counter)
	require.NoError(t, l.Submit(t, []quorum.Instruction{create, initIns}, owner, counterKey))

	load := func() Counter {
		var c Counter
		require.NoError(t, c.Unmarshal(l.MustAccount(t, counter).Data))
		return c
	}
	require.Equal(t, Counter{Authority: quorumtest.KeyIdentity(owner), Initialized: true}, load())

	inc := UpdateInstruction(programID, quorumtest.KeyIdentity(owner), counter, OpIncrement)
	require.NoError(t, l.Submit(t, []quorum.Instruction{inc, inc}, owner))
	require.EqualValues(t, 2, load().Count)

	foreign := UpdateInstruction(programID, quorumtest.KeyIdentity(other), counter, OpIncrement)
	err := l.Submit(t, []quorum.Instruction{foreign}, other)
	require.True(t, errors.ErrUnauthorized.Is(err), "got %+v", err)

	reinit := InitializeInstruction(programID, quorumtest.KeyIdentity(other), counter)
	err = l.Submit(t, []quorum.Instruction{reinit}, other, counterKey)
	require.True(t, errors.ErrAlreadyInitialized.Is(err), "got %+v", err)

	reset := UpdateInstruction(programID, quorumtest.KeyIdentity(owner), counter, OpReset)
	require.NoError(t, l.Submit(t, []quorum.Instruction{reset}, owner))
	require.EqualValues(t, 0, load().Count)
}

func TestCounterProcess(t *testing.T) {
	programID := quorumtest.RandomIdentity(t)
	authority := quorumtest.RandomIdentity(t)

	cases := map[string]struct {
		Accounts func() []*quorum.AccountInfo
		Data     []byte
		WantErr  *errors.Error
	}{
		"no data": {
			Accounts: func() []*quorum.AccountInfo {
				return quorumtest.Accounts(
					quorumtest.Wallet(authority, 0),
					quorumtest.NewAccountInfo(quorumtest.RandomIdentity(t), programID, 0, AccountLen),
				)
			},
			Data:    nil,
			WantErr: errors.ErrInput,
		},
		"unknown instruction": {
			Accounts: func() []*quorum.AccountInfo {
				return quorumtest.Accounts(
					quorumtest.Wallet(authority, 0),
					quorumtest.NewAccountInfo(quorumtest.RandomIdentity(t), programID, 0, AccountLen),
				)
			},
			Data:    []byte{7},
			WantErr: errors.ErrInput,
		},
		"counter owned by another program": {
			Accounts: func() []*quorum.AccountInfo {
				return quorumtest.Accounts(
					quorumtest.Wallet(authority, 0),
					quorumtest.NewAccountInfo(quorumtest.RandomIdentity(t), authority, 0, AccountLen),
				)
			},
			Data:    []byte{OpIncrement},
			WantErr: errors.ErrIncorrectOwner,
		},
		"increment uninitialized": {
			Accounts: func() []*quorum.AccountInfo {
				return quorumtest.Accounts(
					quorumtest.Signer(quorumtest.Wallet(authority, 0)),
					quorumtest.NewAccountInfo(quorumtest.RandomIdentity(t), programID, 0, AccountLen),
				)
			},
			Data:    []byte{OpIncrement},
			WantErr: errors.ErrUninitialized,
		},
		"initialize without the counter signature": {
			Accounts: func() []*quorum.AccountInfo {
				return quorumtest.Accounts(
					quorumtest.Wallet(authority, 0),
					quorumtest.NewAccountInfo(quorumtest.RandomIdentity(t), programID, 0, AccountLen),
				)
			},
			Data:    []byte{OpInitialize},
			WantErr: errors.ErrMissingSignature,
		},
		"missing counter account": {
			Accounts: func() []*quorum.AccountInfo {
				return quorumtest.Accounts(quorumtest.Wallet(authority, 0))
			},
			Data:    []byte{OpIncrement},
			WantErr: errors.ErrNotEnoughAccounts,
		},
		"data too short": {
			Accounts: func() []*quorum.AccountInfo {
				return quorumtest.Accounts(
					quorumtest.Wallet(authority, 0),
					quorumtest.NewAccountInfo(quorumtest.RandomIdentity(t), programID, 0, AccountLen-1),
				)
			},
			Data:    []byte{OpIncrement},
			WantErr: errors.ErrCorruptData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := Program{}.Process(context.Background(), &quorumtest.Host{}, programID, tc.Accounts(), tc.Data)
			require.True(t, tc.WantErr.Is(err), "want %s, got %+v", tc.WantErr, err)
		})
	}
}
