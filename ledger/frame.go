package ledger

import (
	"bytes"
	"context"
	"fmt"
	"math/bits"
	"strconv"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// MaxCallDepth is the deepest a chain of nested invocations can go. A top
// level instruction is executed at depth 1.
const MaxCallDepth = 4

// frame is a single program execution. It implements quorum.Host for the
// program it runs.
type frame struct {
	ledger   *Ledger
	program  quorum.Identity
	depth    int
	accounts []*quorum.AccountInfo

	// Privileges and snapshots are kept per account state, so an account
	// passed more than once is checked once, with the union of its
	// privileges.
	keys     map[*quorum.Account]quorum.Identity
	signer   map[*quorum.Account]bool
	writable map[*quorum.Account]bool
	snapshot map[*quorum.Account]*quorum.Account
}

var _ quorum.Host = (*frame)(nil)

func newFrame(l *Ledger, program quorum.Identity, depth int, accounts []*quorum.AccountInfo) *frame {
	f := &frame{
		ledger:   l,
		program:  program,
		depth:    depth,
		accounts: accounts,
		keys:     make(map[*quorum.Account]quorum.Identity, len(accounts)),
		signer:   make(map[*quorum.Account]bool, len(accounts)),
		writable: make(map[*quorum.Account]bool, len(accounts)),
	}
	for _, a := range accounts {
		f.keys[a.Account] = a.Key
		f.signer[a.Account] = f.signer[a.Account] || a.IsSigner
		f.writable[a.Account] = f.writable[a.Account] || a.IsWritable
	}
	return f
}

func (f *frame) run(ctx context.Context, data []byte) error {
	if f.depth > MaxCallDepth {
		return errors.Wrapf(errors.ErrCallDepth, "depth %d", f.depth)
	}
	prog, ok := f.ledger.programs[f.program]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownProgram, "program %s", f.program)
	}

	ctx = quorum.WithLogInfo(ctx, "program", f.program.String(), "depth", f.depth)
	f.takeSnapshot()
	if err := f.process(ctx, prog, data); err != nil {
		return err
	}
	return f.verify()
}

func (f *frame) process(ctx context.Context, prog quorum.Program, data []byte) (err error) {
	defer errors.Recover(&err)
	return prog.Process(ctx, f, f.program, f.accounts, data)
}

func (f *frame) takeSnapshot() {
	f.snapshot = make(map[*quorum.Account]*quorum.Account, len(f.keys))
	for acc := range f.keys {
		f.snapshot[acc] = acc.Clone()
	}
}

// verify compares the current state of all accounts with the snapshot and
// returns an error if the program changed anything it is not allowed to.
func (f *frame) verify() error {
	var before, after lamportSum
	for acc, snap := range f.snapshot {
		before.add(snap.Lamports)
		after.add(acc.Lamports)
		if acc.Equals(snap) {
			continue
		}

		key := f.keys[acc]
		owned := snap.Owner.Equals(f.program)
		switch {
		case !f.writable[acc]:
			return errors.Wrapf(errors.ErrExternalModification, "read only account %s modified", key)
		case acc.Executable != snap.Executable:
			return errors.Wrapf(errors.ErrExternalModification, "executable flag of %s changed", key)
		case !acc.Owner.Equals(snap.Owner) && !owned:
			return errors.Wrapf(errors.ErrExternalModification, "owner of %s changed by a non owner", key)
		case !acc.Owner.Equals(snap.Owner) && !isZero(acc.Data):
			return errors.Wrapf(errors.ErrExternalModification, "owner of %s changed with data present", key)
		case !bytes.Equal(acc.Data, snap.Data) && !owned:
			return errors.Wrapf(errors.ErrExternalModification, "data of %s modified by a non owner", key)
		case acc.Lamports < snap.Lamports && !owned:
			return errors.Wrapf(errors.ErrExternalModification, "lamports of %s debited by a non owner", key)
		}
	}
	if before != after {
		return errors.Wrapf(errors.ErrExternalModification, "unbalanced lamports: %s before, %s after", before, after)
	}
	return nil
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// FindProgramAddress implements quorum.AddressDeriver.
func (f *frame) FindProgramAddress(seeds [][]byte, program quorum.Identity) (quorum.Identity, uint8, error) {
	return quorum.Deriver.FindProgramAddress(seeds, program)
}

// CreateProgramAddress implements quorum.AddressDeriver.
func (f *frame) CreateProgramAddress(seeds [][]byte, program quorum.Identity) (quorum.Identity, error) {
	return quorum.Deriver.CreateProgramAddress(seeds, program)
}

// Invoke implements quorum.Host.
func (f *frame) Invoke(ctx context.Context, in quorum.Instruction, accounts []*quorum.AccountInfo) error {
	return f.InvokeSigned(ctx, in, accounts, nil)
}

// InvokeSigned implements quorum.Host.
func (f *frame) InvokeSigned(ctx context.Context, in quorum.Instruction, accounts []*quorum.AccountInfo, signerSeeds [][][]byte) error {
	if f.depth >= MaxCallDepth {
		return errors.Wrapf(errors.ErrCallDepth, "depth %d", f.depth+1)
	}

	signed := make(map[quorum.Identity]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := f.CreateProgramAddress(seeds, f.program)
		if err != nil {
			return errors.Wrap(errors.ErrPrivilegeEscalation, "invalid signer seeds")
		}
		signed[addr] = true
	}

	callee := make([]*quorum.AccountInfo, len(in.Accounts))
	for i, m := range in.Accounts {
		acc := findAccount(accounts, m.PublicKey)
		if acc == nil {
			return errors.Wrapf(errors.ErrNotEnoughAccounts, "account %s not passed to the invocation", m.PublicKey)
		}
		if _, ok := f.keys[acc]; !ok {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "account %s is not part of the call", m.PublicKey)
		}
		if m.IsWritable && !f.writable[acc] {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "account %s is not writable", m.PublicKey)
		}
		if m.IsSigner && !f.signer[acc] && !signed[m.PublicKey] {
			return errors.Wrapf(errors.ErrPrivilegeEscalation, "account %s did not sign", m.PublicKey)
		}
		callee[i] = &quorum.AccountInfo{
			Key:        m.PublicKey,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    acc,
		}
	}

	// Changes made so far belong to the caller.
	if err := f.verify(); err != nil {
		return err
	}

	quorum.GetLogger(ctx).Debug("invoke", "callee", in.Program.String(), "signed", len(signed))
	next := newFrame(f.ledger, in.Program, f.depth+1, callee)
	if err := next.run(ctx, in.Data); err != nil {
		return err
	}
	f.takeSnapshot()
	return nil
}

func findAccount(accounts []*quorum.AccountInfo, key quorum.Identity) *quorum.Account {
	for _, a := range accounts {
		if a.Key.Equals(key) {
			return a.Account
		}
	}
	return nil
}

// lamportSum is a 128 bit total, wide enough for any number of balances in
// a single call.
type lamportSum struct {
	hi, lo uint64
}

func (s *lamportSum) add(v uint64) {
	var carry uint64
	s.lo, carry = bits.Add64(s.lo, v, 0)
	s.hi += carry
}

func (s lamportSum) String() string {
	if s.hi == 0 {
		return strconv.FormatUint(s.lo, 10)
	}
	return fmt.Sprintf("%d*2^64+%d", s.hi, s.lo)
}
