package quorumtest

import (
	"context"

	"github.com/iov-one/quorum"
)

// Invocation is a nested call recorded by Host.
type Invocation struct {
	Instruction quorum.Instruction
	Accounts    []*quorum.AccountInfo
	SignerSeeds [][][]byte
}

// Host is a quorum.Host that records invocations. When Handler is set it is
// called for every invocation and its error is returned. Addresses are
// derived the same way the ledger derives them.
type Host struct {
	Invocations []Invocation
	Handler     func(in quorum.Instruction, accounts []*quorum.AccountInfo) error
}

var _ quorum.Host = (*Host)(nil)

// FindProgramAddress implements quorum.AddressDeriver.
func (h *Host) FindProgramAddress(seeds [][]byte, program quorum.Identity) (quorum.Identity, uint8, error) {
	return quorum.Deriver.FindProgramAddress(seeds, program)
}

// CreateProgramAddress implements quorum.AddressDeriver.
func (h *Host) CreateProgramAddress(seeds [][]byte, program quorum.Identity) (quorum.Identity, error) {
	return quorum.Deriver.CreateProgramAddress(seeds, program)
}

// Invoke implements quorum.Host.
func (h *Host) Invoke(ctx context.Context, in quorum.Instruction, accounts []*quorum.AccountInfo) error {
	return h.InvokeSigned(ctx, in, accounts, nil)
}

// InvokeSigned implements quorum.Host.
func (h *Host) InvokeSigned(ctx context.Context, in quorum.Instruction, accounts []*quorum.AccountInfo, signerSeeds [][][]byte) error {
	h.Invocations = append(h.Invocations, Invocation{
		Instruction: in,
		Accounts:    accounts,
		SignerSeeds: signerSeeds,
	})
	if h.Handler != nil {
		return h.Handler(in, accounts)
	}
	return nil
}
