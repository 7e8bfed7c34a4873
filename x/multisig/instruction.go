package multisig

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Opcode is the first byte of the instruction data.
type Opcode uint8

const (
	OpAllocateRegistry Opcode = iota
	OpInitializeRegistry
	OpCreateProposal
	OpApprove
	OpExecute
)

var opcodeNames = map[Opcode]string{
	OpAllocateRegistry:   "allocate_registry",
	OpInitializeRegistry: "initialize_registry",
	OpCreateProposal:     "create_proposal",
	OpApprove:            "approve",
	OpExecute:            "execute",
}

// Name returns the name used in logs.
func (op Opcode) Name() string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return fmt.Sprintf("opcode_%d", uint8(op))
}

// Instruction is the decoded instruction data of the program.
type Instruction struct {
	Op Opcode

	// Threshold is set by OpInitializeRegistry.
	Threshold uint8

	// TargetProgram and Payload are set by OpCreateProposal.
	TargetProgram quorum.Identity
	Payload       uint8
}

// Marshal encodes the instruction.
func (in *Instruction) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint8(uint8(in.Op)); err != nil {
		return nil, err
	}
	switch in.Op {
	case OpAllocateRegistry, OpApprove, OpExecute:
	case OpInitializeRegistry:
		if err := enc.WriteUint8(in.Threshold); err != nil {
			return nil, err
		}
	case OpCreateProposal:
		if err := enc.WriteBytes(in.TargetProgram[:], false); err != nil {
			return nil, err
		}
		if err := enc.WriteUint8(in.Payload); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown opcode %d", in.Op)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the instruction. Trailing bytes are rejected.
func (in *Instruction) Unmarshal(data []byte) error {
	dec := bin.NewBinDecoder(data)
	op, err := dec.ReadUint8()
	if err != nil {
		return errors.Wrap(errors.ErrInput, "empty instruction")
	}
	*in = Instruction{Op: Opcode(op)}
	switch in.Op {
	case OpAllocateRegistry, OpApprove, OpExecute:
	case OpInitializeRegistry:
		if in.Threshold, err = dec.ReadUint8(); err != nil {
			return errors.Wrap(errors.ErrInput, "threshold")
		}
	case OpCreateProposal:
		raw, err := dec.ReadNBytes(quorum.IdentitySize)
		if err != nil {
			return errors.Wrap(errors.ErrInput, "target program")
		}
		if in.TargetProgram, err = quorum.IdentityFromBytes(raw); err != nil {
			return err
		}
		if in.Payload, err = dec.ReadUint8(); err != nil {
			return errors.Wrap(errors.ErrInput, "payload")
		}
	default:
		return errors.Wrapf(errors.ErrInput, "unknown opcode %d", op)
	}
	if dec.Remaining() > 0 {
		return errors.Wrapf(errors.ErrInput, "%s: %d trailing bytes", in.Op.Name(), dec.Remaining())
	}
	return nil
}
