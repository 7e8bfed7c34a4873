package quorum

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/quorum/errors"
)

// Instruction is a single call to a program.
type Instruction struct {
	Program  Identity
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction converts any instruction built with the solana-go
// instruction builders.
func NewInstruction(in solana.Instruction) (Instruction, error) {
	data, err := in.Data()
	if err != nil {
		return Instruction{}, errors.Wrapf(errors.ErrInput, "instruction data: %s", err)
	}
	metas := in.Accounts()
	accounts := make([]AccountMeta, len(metas))
	for i, m := range metas {
		accounts[i] = *m
	}
	return Instruction{
		Program:  in.ProgramID(),
		Accounts: accounts,
		Data:     data,
	}, nil
}

// MetaSlice returns the account descriptors in the pointer form used by the
// solana-go decoders.
func (in Instruction) MetaSlice() solana.AccountMetaSlice {
	res := make(solana.AccountMetaSlice, len(in.Accounts))
	for i := range in.Accounts {
		m := in.Accounts[i]
		res[i] = &m
	}
	return res
}

// Program is the code deployed at a program identity.
//
// Process is called with the identity under which the program runs, the
// accounts the instruction names (in order) and the instruction data. A
// returned error reverts every change made by the transaction.
type Program interface {
	Process(ctx context.Context, host Host, programID Identity, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc allows to use a function as a Program.
type ProgramFunc func(ctx context.Context, host Host, programID Identity, accounts []*AccountInfo, data []byte) error

// Process calls the function.
func (fn ProgramFunc) Process(ctx context.Context, host Host, programID Identity, accounts []*AccountInfo, data []byte) error {
	return fn(ctx, host, programID, accounts, data)
}

// AddressDeriver computes program derived addresses.
type AddressDeriver interface {
	// FindProgramAddress returns the first derived address that is not a
	// valid public key, trying bump seeds from 255 down, and the bump that
	// produced it.
	FindProgramAddress(seeds [][]byte, program Identity) (Identity, uint8, error)

	// CreateProgramAddress returns the derived address for the exact
	// seeds, the bump included.
	CreateProgramAddress(seeds [][]byte, program Identity) (Identity, error)
}

// Host is the ledger runtime a program is executed by.
type Host interface {
	AddressDeriver

	// Invoke calls another program. Every account the instruction names
	// must be one of given accounts, with no more privileges than the
	// caller holds.
	Invoke(ctx context.Context, in Instruction, accounts []*AccountInfo) error

	// InvokeSigned is Invoke that additionally signs for every address
	// derived from the caller's identity with one of given seed sets.
	InvokeSigned(ctx context.Context, in Instruction, accounts []*AccountInfo, signerSeeds [][][]byte) error
}

// Deriver computes addresses the same way the ledger does. Clients use it
// to find the accounts an instruction needs.
var Deriver AddressDeriver = solanaDeriver{}

type solanaDeriver struct{}

func (solanaDeriver) FindProgramAddress(seeds [][]byte, program Identity) (Identity, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return Identity{}, 0, errors.Wrap(errors.ErrInput, err.Error())
	}
	return addr, bump, nil
}

func (solanaDeriver) CreateProgramAddress(seeds [][]byte, program Identity) (Identity, error) {
	addr, err := solana.CreateProgramAddress(seeds, program)
	if err != nil {
		return Identity{}, errors.Wrap(errors.ErrInput, err.Error())
	}
	return addr, nil
}
