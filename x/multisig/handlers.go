package multisig

import (
	"context"

	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// handler processes a single decoded instruction.
type handler interface {
	Handle(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, in *Instruction) error
}

// AllocateRegistryHandler creates the registry account at the derived
// address, funded by the payer.
//
// Accounts: [system program, registry (w), payer (s, w)]
type AllocateRegistryHandler struct {
	conf *Config
}

var _ handler = AllocateRegistryHandler{}

// Handle creates the registry account. Errors of the system program are
// returned unchanged.
func (h AllocateRegistryHandler) Handle(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, in *Instruction) error {
	registry, payer, bump, err := h.validate(host, programID, accounts)
	if err != nil {
		return err
	}
	create, err := quorum.NewInstruction(system.NewCreateAccountInstruction(
		h.conf.RentLamports,
		h.conf.AccountSize,
		programID,
		payer.Key,
		registry.Key,
	).Build())
	if err != nil {
		return err
	}
	return host.InvokeSigned(ctx, create, accounts, registrySeeds(bump))
}

func (h AllocateRegistryHandler) validate(host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo) (*quorum.AccountInfo, *quorum.AccountInfo, uint8, error) {
	it := quorum.NewAccountIter(accounts)
	sys, err := it.Next()
	if err != nil {
		return nil, nil, 0, err
	}
	registry, err := it.Next()
	if err != nil {
		return nil, nil, 0, err
	}
	payer, err := it.Next()
	if err != nil {
		return nil, nil, 0, err
	}
	if !sys.Key.Equals(quorum.SystemProgramID) {
		return nil, nil, 0, errors.Wrapf(errors.ErrAddressMismatch, "system program: %s", sys.Key)
	}
	addr, bump, err := DeriveRegistry(host, programID)
	if err != nil {
		return nil, nil, 0, err
	}
	if !registry.Key.Equals(addr) {
		return nil, nil, 0, errors.Wrapf(errors.ErrAddressMismatch, "registry %s, want %s", registry.Key, addr)
	}
	return registry, payer, bump, nil
}

// InitializeRegistryHandler sets the roster and the threshold of an
// allocated registry. It can be done only once.
//
// Accounts: [registry (w), signer 1, ..., signer N]
type InitializeRegistryHandler struct {
	conf *Config
}

var _ handler = InitializeRegistryHandler{}

// Handle writes the roster.
func (h InitializeRegistryHandler) Handle(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, in *Instruction) error {
	acc, signers, err := h.validate(host, programID, accounts, in)
	if err != nil {
		return err
	}
	return NewRegistry(in.Threshold, signers).Store(acc.Data)
}

func (h InitializeRegistryHandler) validate(host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, in *Instruction) (*quorum.AccountInfo, []quorum.Identity, error) {
	it := quorum.NewAccountIter(accounts)
	acc, err := it.Next()
	if err != nil {
		return nil, nil, err
	}
	addr, _, err := DeriveRegistry(host, programID)
	if err != nil {
		return nil, nil, err
	}
	if !acc.Key.Equals(addr) {
		return nil, nil, errors.Wrapf(errors.ErrAddressMismatch, "registry %s, want %s", acc.Key, addr)
	}
	if err := quorum.RequireOwner(acc, programID); err != nil {
		return nil, nil, err
	}
	if err := quorum.RequireWritable(acc); err != nil {
		return nil, nil, err
	}

	var registry Registry
	if err := registry.Unmarshal(acc.Data); err != nil {
		return nil, nil, err
	}
	if registry.Initialized {
		return nil, nil, errors.Wrapf(errors.ErrAlreadyInitialized, "registry %s", acc.Key)
	}

	rest := it.Rest()
	signers := make([]quorum.Identity, len(rest))
	for i, s := range rest {
		signers[i] = s.Key
	}
	if err := ValidateRoster(in.Threshold, signers, h.conf.StrictThreshold); err != nil {
		return nil, nil, err
	}
	return acc, signers, nil
}

// CreateProposalHandler writes a new proposal into an account owned by the
// program.
//
// Accounts: [proposal (w), target 1, target 2]
type CreateProposalHandler struct{}

var _ handler = CreateProposalHandler{}

// Handle writes the proposal. The proposal is bound to the registry of this
// program and all its seats are unapproved.
func (h CreateProposalHandler) Handle(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, in *Instruction) error {
	registry, _, err := DeriveRegistry(host, programID)
	if err != nil {
		return err
	}
	acc, targets, err := h.validate(accounts, programID, registry)
	if err != nil {
		return err
	}

	p := Proposal{
		Registry:      registry,
		TargetProgram: in.TargetProgram,
		Payload:       in.Payload,
		Initialized:   true,
	}
	for i, t := range targets {
		p.Targets[i] = TargetAccount{
			Key:        t.Key,
			IsWritable: t.IsWritable,
			// The registry address is the only signature the program
			// can provide at execution.
			IsSigner: t.IsSigner || t.Key.Equals(registry),
		}
	}
	return p.Store(acc.Data)
}

func (h CreateProposalHandler) validate(accounts []*quorum.AccountInfo, programID, registry quorum.Identity) (*quorum.AccountInfo, [2]*quorum.AccountInfo, error) {
	var targets [2]*quorum.AccountInfo
	it := quorum.NewAccountIter(accounts)
	acc, err := it.Next()
	if err != nil {
		return nil, targets, err
	}
	for i := range targets {
		if targets[i], err = it.Next(); err != nil {
			return nil, targets, errors.Wrapf(err, "target %d", i)
		}
	}
	if acc.Key.Equals(registry) {
		return nil, targets, errors.Wrap(errors.ErrAddressMismatch, "the registry cannot hold a proposal")
	}
	if err := quorum.RequireOwner(acc, programID); err != nil {
		return nil, targets, err
	}
	if err := quorum.RequireWritable(acc); err != nil {
		return nil, targets, err
	}

	var p Proposal
	if err := p.Unmarshal(acc.Data); err != nil {
		return nil, targets, err
	}
	if p.Initialized {
		return nil, targets, errors.Wrapf(errors.ErrAlreadyInitialized, "proposal %s", acc.Key)
	}
	return acc, targets, nil
}

// ApproveHandler records the approval of every signing roster member.
// Accounts that hold no seat, or already approved, are ignored.
//
// Accounts: [proposal (w), registry, signer (s), ...]
type ApproveHandler struct{}

var _ handler = ApproveHandler{}

// Handle marks the seats and writes the proposal back, changed or not.
func (h ApproveHandler) Handle(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, in *Instruction) error {
	it := quorum.NewAccountIter(accounts)
	acc, p, registry, err := loadProposal(it, programID)
	if err != nil {
		return err
	}
	signers := it.Rest()
	if len(signers) == 0 {
		return errors.Wrap(errors.ErrNotEnoughAccounts, "signer")
	}

	marked, err := registry.Mark(&p.Approvals, signers...)
	if err != nil {
		return err
	}
	quorum.GetLogger(ctx).Debug("approve",
		"proposal", acc.Key.String(),
		"marked", marked,
		"approvals", p.Approvals.Count(registry.Size))
	return p.Store(acc.Data)
}

// ExecuteHandler calls the target program of a proposal that reached the
// threshold, signing as the registry address.
//
// Accounts: [proposal (w), registry, target accounts...]
type ExecuteHandler struct {
	conf *Config
}

var _ handler = ExecuteHandler{}

// Handle executes the proposal. An error of the target program is returned
// unchanged and the proposal is not marked executed.
func (h ExecuteHandler) Handle(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, in *Instruction) error {
	it := quorum.NewAccountIter(accounts)
	acc, p, registry, err := loadProposal(it, programID)
	if err != nil {
		return err
	}
	if p.Executed && !h.conf.AllowReexecution {
		return errors.Wrapf(errors.ErrAlreadyExecuted, "proposal %s", acc.Key)
	}
	if !registry.Reached(&p.Approvals) {
		return errors.Wrapf(errors.ErrMissingSignature, "%d of %d approvals",
			p.Approvals.Count(registry.Size), registry.Threshold)
	}
	addr, bump, err := DeriveRegistry(host, programID)
	if err != nil {
		return err
	}
	if !p.Registry.Equals(addr) {
		return errors.Wrapf(errors.ErrAddressMismatch, "registry %s, want %s", p.Registry, addr)
	}

	if err := host.InvokeSigned(ctx, p.Instruction(), accounts, registrySeeds(bump)); err != nil {
		return err
	}

	// The target may be this program, so the proposal is read again.
	if err := p.Unmarshal(acc.Data); err != nil {
		return err
	}
	p.Executed = true
	quorum.GetLogger(ctx).Info("proposal executed",
		"proposal", acc.Key.String(),
		"target", p.TargetProgram.String())
	return p.Store(acc.Data)
}

// loadProposal reads the proposal and the registry it is bound to from the
// first two accounts.
func loadProposal(it *quorum.AccountIter, programID quorum.Identity) (*quorum.AccountInfo, *Proposal, *Registry, error) {
	acc, err := it.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	regAcc, err := it.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := quorum.RequireOwner(acc, programID); err != nil {
		return nil, nil, nil, errors.Wrap(err, "proposal")
	}
	if err := quorum.RequireOwner(regAcc, programID); err != nil {
		return nil, nil, nil, errors.Wrap(err, "registry")
	}
	if err := quorum.RequireWritable(acc); err != nil {
		return nil, nil, nil, err
	}

	var p Proposal
	if err := p.Unmarshal(acc.Data); err != nil {
		return nil, nil, nil, errors.Wrap(err, "proposal")
	}
	if !p.Initialized {
		return nil, nil, nil, errors.Wrapf(errors.ErrUninitialized, "proposal %s", acc.Key)
	}
	var r Registry
	if err := r.Unmarshal(regAcc.Data); err != nil {
		return nil, nil, nil, errors.Wrap(err, "registry")
	}
	if !r.Initialized {
		return nil, nil, nil, errors.Wrapf(errors.ErrUninitialized, "registry %s", regAcc.Key)
	}
	if !p.Registry.Equals(regAcc.Key) {
		return nil, nil, nil, errors.Wrapf(errors.ErrAddressMismatch, "proposal is bound to registry %s, got %s", p.Registry, regAcc.Key)
	}
	return acc, &p, &r, nil
}
