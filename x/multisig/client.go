package multisig

import (
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/quorum"
)

func newInstruction(programID quorum.Identity, in *Instruction, accounts ...quorum.AccountMeta) (quorum.Instruction, error) {
	data, err := in.Marshal()
	if err != nil {
		return quorum.Instruction{}, err
	}
	return quorum.Instruction{
		Program:  programID,
		Accounts: accounts,
		Data:     data,
	}, nil
}

// AllocateRegistryInstruction returns an instruction creating the registry
// account of given program, paid by payer.
func AllocateRegistryInstruction(programID, payer quorum.Identity) (quorum.Instruction, error) {
	registry, err := RegistryAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	return newInstruction(programID, &Instruction{Op: OpAllocateRegistry},
		quorum.Meta(quorum.SystemProgramID, false, false),
		quorum.Meta(registry, true, false),
		quorum.Meta(payer, true, true),
	)
}

// InitializeRegistryInstruction returns an instruction setting the roster
// of the registry. Signers do not have to sign it.
func InitializeRegistryInstruction(programID quorum.Identity, threshold uint8, signers []quorum.Identity) (quorum.Instruction, error) {
	registry, err := RegistryAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	metas := []quorum.AccountMeta{quorum.Meta(registry, true, false)}
	for _, s := range signers {
		metas = append(metas, quorum.Meta(s, false, false))
	}
	return newInstruction(programID, &Instruction{Op: OpInitializeRegistry, Threshold: threshold}, metas...)
}

// CreateProposalAccountInstruction returns a system program instruction
// creating an account the program can write a proposal to. Both payer and
// proposal must sign it.
func CreateProposalAccountInstruction(programID, payer, proposal quorum.Identity, lamports uint64) (quorum.Instruction, error) {
	return quorum.NewInstruction(system.NewCreateAccountInstruction(
		lamports,
		ProposalLen+1,
		programID,
		payer,
		proposal,
	).Build())
}

// CreateProposalInstruction returns an instruction writing a proposal that
// calls the target program with given accounts and a single byte of data.
// The registry address may be given as a signing target, the program signs
// for it at execution.
func CreateProposalInstruction(programID, proposal, targetProgram quorum.Identity, targets [2]quorum.AccountMeta, payload uint8) (quorum.Instruction, error) {
	registry, err := RegistryAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	in := &Instruction{Op: OpCreateProposal, TargetProgram: targetProgram, Payload: payload}
	return newInstruction(programID, in,
		quorum.Meta(proposal, true, false),
		withoutSigner(targets[0], registry),
		withoutSigner(targets[1], registry),
	)
}

// ApproveInstruction returns an instruction approving the proposal by every
// given signer.
func ApproveInstruction(programID, proposal quorum.Identity, signers ...quorum.Identity) (quorum.Instruction, error) {
	registry, err := RegistryAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	metas := []quorum.AccountMeta{
		quorum.Meta(proposal, true, false),
		quorum.Meta(registry, false, false),
	}
	for _, s := range signers {
		metas = append(metas, quorum.Meta(s, false, true))
	}
	return newInstruction(programID, &Instruction{Op: OpApprove}, metas...)
}

// ExecuteInstruction returns an instruction executing the proposal. The
// target accounts are taken from the proposal itself.
func ExecuteInstruction(programID, proposal quorum.Identity, p *Proposal) (quorum.Instruction, error) {
	metas := []quorum.AccountMeta{
		quorum.Meta(proposal, true, false),
		quorum.Meta(p.Registry, false, false),
	}
	for _, t := range p.Targets {
		metas = append(metas, withoutSigner(t.Meta(), p.Registry))
	}
	return newInstruction(programID, &Instruction{Op: OpExecute}, metas...)
}

// withoutSigner drops the signer flag of the registry address, which
// cannot sign a transaction.
func withoutSigner(m quorum.AccountMeta, registry quorum.Identity) quorum.AccountMeta {
	if m.PublicKey.Equals(registry) {
		m.IsSigner = false
	}
	return m
}
