package multisig

import (
	"context"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Program is the multisig ledger program.
type Program struct {
	handlers map[Opcode]handler
}

var _ quorum.Program = (*Program)(nil)

// NewProgram returns the program with given configuration.
func NewProgram(conf Config) *Program {
	c := &conf
	return &Program{
		handlers: map[Opcode]handler{
			OpAllocateRegistry:   AllocateRegistryHandler{conf: c},
			OpInitializeRegistry: InitializeRegistryHandler{conf: c},
			OpCreateProposal:     CreateProposalHandler{},
			OpApprove:            ApproveHandler{},
			OpExecute:            ExecuteHandler{conf: c},
		},
	}
}

// Process implements quorum.Program.
func (p *Program) Process(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, data []byte) error {
	var in Instruction
	if err := in.Unmarshal(data); err != nil {
		return err
	}
	h, ok := p.handlers[in.Op]
	if !ok {
		return errors.Wrapf(errors.ErrInput, "unknown opcode %d", in.Op)
	}
	ctx = quorum.WithLogInfo(ctx, "module", "multisig")
	quorum.GetLogger(ctx).Debug("instruction", "name", in.Op.Name(), "accounts", len(accounts))
	return h.Handle(ctx, host, programID, accounts, &in)
}
