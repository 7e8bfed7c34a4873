package multisig

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/migration"
)

const (
	// MaxSigners is the number of seats of every roster.
	MaxSigners = 11

	// RegistryLen is the size of an encoded registry.
	RegistryLen = 3 + MaxSigners*quorum.IdentitySize

	targetLen = quorum.IdentitySize + 2

	// ProposalLen is the size of an encoded proposal.
	ProposalLen = 2*quorum.IdentitySize + 2*targetLen + 1 + MaxSigners + 2
)

func init() {
	migration.MustRegister(1, &Registry{}, migration.NoModification)
	migration.MustRegister(1, &Proposal{}, migration.NoModification)
}

// Registry is the roster of signers and the number of approvals a proposal
// requires.
//
// Only seats below Size are occupied, the rest hold zero identities.
type Registry struct {
	Threshold   uint8
	Size        uint8
	Initialized bool
	Signers     [MaxSigners]quorum.Identity
	Schema      uint8
}

var _ migration.Migratable = (*Registry)(nil)

// GetSchema implements migration.Migratable.
func (r *Registry) GetSchema() uint8 { return r.Schema }

// SetSchema implements migration.Migratable.
func (r *Registry) SetSchema(v uint8) { r.Schema = v }

// Roster returns the occupied seats.
func (r *Registry) Roster() []quorum.Identity {
	return r.Signers[:r.Size]
}

// Marshal returns the fixed width encoding of the registry.
func (r *Registry) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(RegistryLen)
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteUint8(r.Threshold); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(r.Size); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(r.Initialized); err != nil {
		return nil, err
	}
	for _, s := range r.Signers {
		if err := enc.WriteBytes(s[:], false); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the registry from account data. Zeroed data decodes to
// an uninitialized registry.
func (r *Registry) Unmarshal(data []byte) error {
	if len(data) < RegistryLen {
		return errors.Wrapf(errors.ErrCorruptData, "registry requires %d bytes, got %d", RegistryLen, len(data))
	}
	dec := bin.NewBinDecoder(data[:RegistryLen])
	var err error
	if r.Threshold, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	if r.Size, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	if r.Size > MaxSigners {
		return errors.Wrapf(errors.ErrCorruptData, "roster size %d", r.Size)
	}
	if r.Initialized, err = readBool(dec, "initialized"); err != nil {
		return err
	}
	for i := range r.Signers {
		if r.Signers[i], err = readIdentity(dec); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
	}
	return upgrade(r, data[RegistryLen:])
}

// Store writes the registry into account data.
func (r *Registry) Store(data []byte) error {
	raw, err := r.Marshal()
	if err != nil {
		return err
	}
	return writeEntity(r, raw, data)
}

// Seats holds one approval flag per roster seat.
type Seats [MaxSigners]bool

// Count returns the number of marked seats among the first n.
func (s *Seats) Count(n uint8) int {
	var cnt int
	for i := 0; i < int(n) && i < MaxSigners; i++ {
		if s[i] {
			cnt++
		}
	}
	return cnt
}

// TargetAccount is an account the proposal passes to the target program.
type TargetAccount struct {
	Key        quorum.Identity
	IsSigner   bool
	IsWritable bool
}

// Meta returns the account descriptor used to call the target.
func (t TargetAccount) Meta() quorum.AccountMeta {
	return quorum.Meta(t.Key, t.IsWritable, t.IsSigner)
}

// Proposal is a call to a target program that waits for approvals.
type Proposal struct {
	// Registry is the address of the registry whose roster approves.
	Registry      quorum.Identity
	TargetProgram quorum.Identity
	Targets       [2]TargetAccount
	Payload       uint8
	Approvals     Seats
	Executed      bool
	Initialized   bool
	Schema        uint8
}

var _ migration.Migratable = (*Proposal)(nil)

// GetSchema implements migration.Migratable.
func (p *Proposal) GetSchema() uint8 { return p.Schema }

// SetSchema implements migration.Migratable.
func (p *Proposal) SetSchema(v uint8) { p.Schema = v }

// Instruction returns the call the proposal executes.
func (p *Proposal) Instruction() quorum.Instruction {
	metas := make([]quorum.AccountMeta, len(p.Targets))
	for i, t := range p.Targets {
		metas[i] = t.Meta()
	}
	return quorum.Instruction{
		Program:  p.TargetProgram,
		Accounts: metas,
		Data:     []byte{p.Payload},
	}
}

// Marshal returns the fixed width encoding of the proposal.
func (p *Proposal) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(ProposalLen)
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteBytes(p.Registry[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(p.TargetProgram[:], false); err != nil {
		return nil, err
	}
	for _, t := range p.Targets {
		if err := enc.WriteBytes(t.Key[:], false); err != nil {
			return nil, err
		}
		if err := enc.WriteBool(t.IsSigner); err != nil {
			return nil, err
		}
		if err := enc.WriteBool(t.IsWritable); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteUint8(p.Payload); err != nil {
		return nil, err
	}
	for _, approved := range p.Approvals {
		if err := enc.WriteBool(approved); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteBool(p.Executed); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(p.Initialized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the proposal from account data. Zeroed data decodes to
// an uninitialized proposal.
func (p *Proposal) Unmarshal(data []byte) error {
	if len(data) < ProposalLen {
		return errors.Wrapf(errors.ErrCorruptData, "proposal requires %d bytes, got %d", ProposalLen, len(data))
	}
	dec := bin.NewBinDecoder(data[:ProposalLen])
	var err error
	if p.Registry, err = readIdentity(dec); err != nil {
		return errors.Wrap(err, "registry")
	}
	if p.TargetProgram, err = readIdentity(dec); err != nil {
		return errors.Wrap(err, "target program")
	}
	for i := range p.Targets {
		t := &p.Targets[i]
		if t.Key, err = readIdentity(dec); err != nil {
			return errors.Wrapf(err, "target %d", i)
		}
		if t.IsSigner, err = readBool(dec, "target signer"); err != nil {
			return err
		}
		if t.IsWritable, err = readBool(dec, "target writable"); err != nil {
			return err
		}
	}
	if p.Payload, err = dec.ReadUint8(); err != nil {
		return errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	for i := range p.Approvals {
		if p.Approvals[i], err = readBool(dec, "approval"); err != nil {
			return err
		}
	}
	if p.Executed, err = readBool(dec, "executed"); err != nil {
		return err
	}
	if p.Initialized, err = readBool(dec, "initialized"); err != nil {
		return err
	}
	return upgrade(p, data[ProposalLen:])
}

// Store writes the proposal into account data.
func (p *Proposal) Store(data []byte) error {
	raw, err := p.Marshal()
	if err != nil {
		return err
	}
	return writeEntity(p, raw, data)
}

func readBool(dec *bin.Decoder, field string) (bool, error) {
	b, err := dec.ReadUint8()
	if err != nil {
		return false, errors.Wrapf(errors.ErrCorruptData, "%s: %s", field, err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(errors.ErrCorruptData, "%s: sentinel byte %d", field, b)
	}
}

func readIdentity(dec *bin.Decoder) (quorum.Identity, error) {
	b, err := dec.ReadNBytes(quorum.IdentitySize)
	if err != nil {
		return quorum.Identity{}, errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	return quorum.IdentityFromBytes(b)
}

// upgrade reads the schema byte that follows the payload, if the account
// has room for one, and migrates the entity to the current schema.
func upgrade(m migration.Migratable, tail []byte) error {
	current, err := migration.CurrentSchema(m)
	if err != nil {
		return err
	}
	schema := uint8(1)
	if len(tail) > 0 && tail[0] != 0 {
		schema = tail[0]
	}
	m.SetSchema(schema)
	if schema == current {
		return nil
	}
	return migration.Apply(m, current)
}

// writeEntity copies the encoded payload into account data followed by the
// schema byte. The schema byte is omitted when the account is exactly as
// large as the payload.
func writeEntity(m migration.Migratable, raw, data []byte) error {
	if len(data) < len(raw) {
		return errors.Wrapf(errors.ErrInput, "account holds %d bytes, requires %d", len(data), len(raw))
	}
	current, err := migration.CurrentSchema(m)
	if err != nil {
		return err
	}
	copy(data, raw)
	if len(data) > len(raw) {
		data[len(raw)] = current
	}
	m.SetSchema(current)
	return nil
}
