package counter

import (
	"bytes"
	"context"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// AccountLen is the size of an encoded counter.
const AccountLen = quorum.IdentitySize + 8 + 1

// Counter is the state of a counter account.
type Counter struct {
	Authority   quorum.Identity
	Count       uint64
	Initialized bool
}

// Marshal returns the fixed width encoding of the counter.
func (c *Counter) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteBytes(c.Authority[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.Count, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(c.Initialized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the counter from account data.
func (c *Counter) Unmarshal(data []byte) error {
	if len(data) < AccountLen {
		return errors.Wrapf(errors.ErrCorruptData, "counter requires %d bytes, got %d", AccountLen, len(data))
	}
	dec := bin.NewBinDecoder(data[:AccountLen])
	raw, err := dec.ReadNBytes(quorum.IdentitySize)
	if err != nil {
		return errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	if c.Authority, err = quorum.IdentityFromBytes(raw); err != nil {
		return err
	}
	if c.Count, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	b, err := dec.ReadUint8()
	if err != nil {
		return errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	if b > 1 {
		return errors.Wrapf(errors.ErrCorruptData, "initialized: sentinel byte %d", b)
	}
	c.Initialized = b == 1
	return nil
}

// Instruction data is a single byte.
const (
	OpInitialize uint8 = iota
	OpIncrement
	OpReset
)

// Program is the counter ledger program.
type Program struct{}

var _ quorum.Program = Program{}

// Process implements quorum.Program.
//
// Accounts: [authority, counter (w)]. Initialize requires the counter to
// sign and records the authority. Increment and Reset require the
// authority to sign.
func (Program) Process(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, data []byte) error {
	if len(data) != 1 {
		return errors.Wrapf(errors.ErrInput, "instruction data must be 1 byte, got %d", len(data))
	}
	it := quorum.NewAccountIter(accounts)
	authority, err := it.Next()
	if err != nil {
		return err
	}
	acc, err := it.Next()
	if err != nil {
		return err
	}
	if err := quorum.RequireOwner(acc, programID); err != nil {
		return err
	}
	var c Counter
	if err := c.Unmarshal(acc.Data); err != nil {
		return err
	}

	logger := quorum.GetLogger(ctx).With("module", "counter")
	switch op := data[0]; op {
	case OpInitialize:
		if c.Initialized {
			return errors.Wrapf(errors.ErrAlreadyInitialized, "counter %s", acc.Key)
		}
		if err := quorum.RequireSigner(acc); err != nil {
			return err
		}
		c = Counter{Authority: authority.Key, Initialized: true}
	case OpIncrement, OpReset:
		if !c.Initialized {
			return errors.Wrapf(errors.ErrUninitialized, "counter %s", acc.Key)
		}
		if !c.Authority.Equals(authority.Key) {
			return errors.Wrapf(errors.ErrUnauthorized, "authority is %s", c.Authority)
		}
		if err := quorum.RequireSigner(authority); err != nil {
			return err
		}
		if op == OpIncrement {
			c.Count++
		} else {
			c.Count = 0
		}
	default:
		return errors.Wrapf(errors.ErrInput, "unknown instruction %d", op)
	}
	logger.Debug("counter updated", "op", data[0], "count", c.Count)

	raw, err := c.Marshal()
	if err != nil {
		return err
	}
	copy(acc.Data, raw)
	return nil
}

// CreateAccountInstruction returns a system program instruction creating
// a counter account. Both payer and counter must sign it.
func CreateAccountInstruction(programID, payer, counter quorum.Identity, lamports uint64) (quorum.Instruction, error) {
	return quorum.NewInstruction(system.NewCreateAccountInstruction(lamports, AccountLen, programID, payer, counter).Build())
}

// InitializeInstruction returns an instruction making authority the only
// account allowed to change the counter.
func InitializeInstruction(programID, authority, counter quorum.Identity) quorum.Instruction {
	return quorum.Instruction{
		Program: programID,
		Accounts: []quorum.AccountMeta{
			quorum.Meta(authority, false, false),
			quorum.Meta(counter, true, true),
		},
		Data: []byte{OpInitialize},
	}
}

// UpdateInstruction returns an Increment or Reset instruction signed by the
// authority.
func UpdateInstruction(programID, authority, counter quorum.Identity, op uint8) quorum.Instruction {
	return quorum.Instruction{
		Program: programID,
		Accounts: []quorum.AccountMeta{
			quorum.Meta(authority, false, true),
			quorum.Meta(counter, true, false),
		},
		Data: []byte{op},
	}
}
