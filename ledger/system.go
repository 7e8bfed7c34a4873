package ledger

import (
	"context"
	"math/bits"

	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// MaxAccountSize is the largest data size an account can be created with.
const MaxAccountSize = 10 * 1024 * 1024

// SystemProgram creates accounts and transfers lamports. It understands the
// system program instruction encoding of the solana-go builders.
type SystemProgram struct{}

var _ quorum.Program = SystemProgram{}

// Process implements quorum.Program.
func (SystemProgram) Process(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, data []byte) error {
	metas := make([]*quorum.AccountMeta, len(accounts))
	for i, a := range accounts {
		m := a.Meta()
		metas[i] = &m
	}
	inst, err := system.DecodeInstruction(metas, data)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "system instruction: %s", err)
	}

	logger := quorum.GetLogger(ctx).With("module", "system")
	switch impl := inst.Impl.(type) {
	case *system.CreateAccount:
		if impl.Lamports == nil || impl.Space == nil || impl.Owner == nil {
			return errors.Wrap(errors.ErrInput, "incomplete create account instruction")
		}
		logger.Debug("create account", "lamports", *impl.Lamports, "space", *impl.Space)
		return createAccount(accounts, *impl.Lamports, *impl.Space, *impl.Owner)
	case *system.Transfer:
		if impl.Lamports == nil {
			return errors.Wrap(errors.ErrInput, "incomplete transfer instruction")
		}
		logger.Debug("transfer", "lamports", *impl.Lamports)
		return transfer(accounts, *impl.Lamports)
	default:
		return errors.Wrapf(errors.ErrInput, "unsupported system instruction %q",
			system.InstructionIDToName(inst.TypeID.Uint32()))
	}
}

// accounts: [funder (s,w), new account (s,w)]
func createAccount(accounts []*quorum.AccountInfo, lamports, space uint64, owner quorum.Identity) error {
	it := quorum.NewAccountIter(accounts)
	from, err := it.Next()
	if err != nil {
		return err
	}
	to, err := it.Next()
	if err != nil {
		return err
	}
	if err := quorum.RequireSigner(from); err != nil {
		return errors.Wrap(err, "funder")
	}
	if err := quorum.RequireSigner(to); err != nil {
		return errors.Wrap(err, "new account")
	}
	if to.Lamports != 0 || len(to.Data) != 0 || !to.Owner.Equals(quorum.SystemProgramID) {
		return errors.Wrapf(errors.ErrAccountInUse, "address %s", to.Key)
	}
	if space > MaxAccountSize {
		return errors.Wrapf(errors.ErrInput, "space %d exceeds %d", space, MaxAccountSize)
	}
	if err := debit(from, lamports); err != nil {
		return err
	}
	to.Lamports = lamports
	to.Data = make([]byte, space)
	to.Owner = owner
	return nil
}

// accounts: [from (s,w), to (w)]
func transfer(accounts []*quorum.AccountInfo, lamports uint64) error {
	it := quorum.NewAccountIter(accounts)
	from, err := it.Next()
	if err != nil {
		return err
	}
	to, err := it.Next()
	if err != nil {
		return err
	}
	if err := quorum.RequireSigner(from); err != nil {
		return errors.Wrap(err, "sender")
	}
	if len(from.Data) != 0 {
		return errors.Wrapf(errors.ErrInput, "sender %s carries data", from.Key)
	}
	if _, err := addLamports(to.Lamports, lamports); err != nil {
		return errors.Wrapf(err, "recipient %s", to.Key)
	}
	if err := debit(from, lamports); err != nil {
		return err
	}
	to.Lamports += lamports
	return nil
}

// addLamports returns a + b, or ErrInput if the sum does not fit in an
// account balance.
func addLamports(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Wrapf(errors.ErrInput, "balance overflow: %d + %d", a, b)
	}
	return sum, nil
}

func debit(a *quorum.AccountInfo, lamports uint64) error {
	if a.Lamports < lamports {
		return errors.Wrapf(errors.ErrInsufficientAmount, "account %s holds %d, requires %d", a.Key, a.Lamports, lamports)
	}
	a.Lamports -= lamports
	return nil
}
