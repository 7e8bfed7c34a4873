package door

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
	OpInitializeDoor Opcode = iota
	OpInitializeAccess
	OpLock
	OpUnlock
	OpOpen
	OpClose
	OpAllocateAccess
	OpInitializeRoster
)

var opcodeNames = map[Opcode]string{
	OpInitializeDoor:   "initialize_door",
	OpInitializeAccess: "initialize_access",
	OpLock:             "lock",
	OpUnlock:           "unlock",
	OpOpen:             "open",
	OpClose:            "close",
	OpAllocateAccess:   "allocate_access",
	OpInitializeRoster: "initialize_roster",
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
	// Key is the door key or the access admin.
	Key quorum.Identity
	// Threshold is set by OpInitializeRoster.
	Threshold uint8
}

// Marshal encodes the instruction.
func (in *Instruction) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint8(uint8(in.Op)); err != nil {
		return nil, err
	}
	switch in.Op {
	case OpInitializeDoor, OpInitializeAccess:
		if err := enc.WriteBytes(in.Key[:], false); err != nil {
			return nil, err
		}
	case OpInitializeRoster:
		if err := enc.WriteUint8(in.Threshold); err != nil {
			return nil, err
		}
	case OpLock, OpUnlock, OpOpen, OpClose, OpAllocateAccess:
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
	case OpInitializeDoor, OpInitializeAccess:
		raw, err := dec.ReadNBytes(quorum.IdentitySize)
		if err != nil {
			return errors.Wrap(errors.ErrInput, "key")
		}
		if in.Key, err = quorum.IdentityFromBytes(raw); err != nil {
			return err
		}
	case OpInitializeRoster:
		if in.Threshold, err = dec.ReadUint8(); err != nil {
			return errors.Wrap(errors.ErrInput, "threshold")
		}
	case OpLock, OpUnlock, OpOpen, OpClose, OpAllocateAccess:
	default:
		return errors.Wrapf(errors.ErrInput, "unknown opcode %d", op)
	}
	if dec.Remaining() > 0 {
		return errors.Wrapf(errors.ErrInput, "%s: %d trailing bytes", in.Op.Name(), dec.Remaining())
	}
	return nil
}
