package door

import (
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/multisig"
)

func newInstruction(programID quorum.Identity, in Instruction, accounts ...quorum.AccountMeta) (quorum.Instruction, error) {
	data, err := in.Marshal()
	if err != nil {
		return quorum.Instruction{}, err
	}
	return quorum.Instruction{Program: programID, Accounts: accounts, Data: data}, nil
}

// CreateDoorInstruction returns a system program instruction creating a
// door account. Both payer and door must sign it.
func CreateDoorInstruction(programID, payer, door quorum.Identity, lamports uint64) (quorum.Instruction, error) {
	return quorum.NewInstruction(system.NewCreateAccountInstruction(lamports, StateLen, programID, payer, door).Build())
}

// CreateRosterInstruction returns a system program instruction creating an
// account that can be initialized as a roster. Both payer and roster must
// sign it.
func CreateRosterInstruction(programID, payer, roster quorum.Identity, lamports uint64) (quorum.Instruction, error) {
	return quorum.NewInstruction(system.NewCreateAccountInstruction(lamports, multisig.RegistryLen, programID, payer, roster).Build())
}

// InitializeDoorInstruction returns an instruction setting the door key.
func InitializeDoorInstruction(programID, door, key quorum.Identity) (quorum.Instruction, error) {
	return newInstruction(programID, Instruction{Op: OpInitializeDoor, Key: key},
		quorum.Meta(door, true, false))
}

// AllocateAccessInstruction returns an instruction creating the access
// account, paid by payer.
func AllocateAccessInstruction(programID, payer quorum.Identity) (quorum.Instruction, error) {
	access, err := AccessAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	return newInstruction(programID, Instruction{Op: OpAllocateAccess},
		quorum.Meta(quorum.SystemProgramID, false, false),
		quorum.Meta(access, true, false),
		quorum.Meta(payer, true, true),
	)
}

// InitializeAccessInstruction returns an instruction setting the admin of
// the access account. Access starts locked.
func InitializeAccessInstruction(programID, admin quorum.Identity) (quorum.Instruction, error) {
	access, err := AccessAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	return newInstruction(programID, Instruction{Op: OpInitializeAccess, Key: admin},
		quorum.Meta(access, true, false))
}

// InitializeRosterInstruction returns an instruction writing a roster
// into an account created with CreateRosterInstruction.
func InitializeRosterInstruction(programID, roster quorum.Identity, threshold uint8, signers []quorum.Identity) (quorum.Instruction, error) {
	metas := []quorum.AccountMeta{quorum.Meta(roster, true, false)}
	for _, s := range signers {
		metas = append(metas, quorum.Meta(s, false, false))
	}
	return newInstruction(programID, Instruction{Op: OpInitializeRoster, Threshold: threshold}, metas...)
}

// LockInstruction returns a Lock or Unlock instruction. When admin is a
// roster, signers are the roster members approving it. Otherwise admin
// signs and no signers are needed.
func LockInstruction(programID, admin quorum.Identity, lock bool, signers ...quorum.Identity) (quorum.Instruction, error) {
	access, err := AccessAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	op := OpUnlock
	if lock {
		op = OpLock
	}
	metas := []quorum.AccountMeta{
		quorum.Meta(access, true, false),
		quorum.Meta(admin, false, len(signers) == 0),
	}
	for _, s := range signers {
		metas = append(metas, quorum.Meta(s, false, true))
	}
	return newInstruction(programID, Instruction{Op: op}, metas...)
}

// OpenInstruction returns an Open or Close instruction signed by the key
// holder.
func OpenInstruction(programID, door, holder quorum.Identity, open bool) (quorum.Instruction, error) {
	access, err := AccessAddress(programID)
	if err != nil {
		return quorum.Instruction{}, err
	}
	op := OpClose
	if open {
		op = OpOpen
	}
	return newInstruction(programID, Instruction{Op: op},
		quorum.Meta(door, true, false),
		quorum.Meta(access, false, false),
		quorum.Meta(holder, false, true),
	)
}
