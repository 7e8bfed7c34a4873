package door

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Program is the door ledger program.
type Program struct {
	conf Config
}

var _ quorum.Program = (*Program)(nil)

// NewProgram returns the program with given configuration.
func NewProgram(conf Config) *Program {
	return &Program{conf: conf}
}

// Process implements quorum.Program.
func (p *Program) Process(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, data []byte) error {
	var in Instruction
	if err := in.Unmarshal(data); err != nil {
		return err
	}
	logger := quorum.GetLogger(ctx).With("module", "door")
	logger.Debug("instruction", "name", in.Op.Name())

	switch in.Op {
	case OpInitializeDoor:
		return initializeDoor(programID, accounts, in.Key)
	case OpInitializeAccess:
		return initializeAccess(host, programID, accounts, in.Key)
	case OpLock:
		return setLocked(host, programID, accounts, true)
	case OpUnlock:
		return setLocked(host, programID, accounts, false)
	case OpOpen:
		return setOpened(host, programID, accounts, true)
	case OpClose:
		return setOpened(host, programID, accounts, false)
	case OpAllocateAccess:
		return allocateAccess(ctx, host, programID, accounts, &p.conf)
	case OpInitializeRoster:
		return initializeRoster(programID, accounts, in.Threshold)
	}
	return errors.Wrapf(errors.ErrInput, "unknown opcode %d", in.Op)
}
