package door

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// StateLen is the size of both encoded entities.
const StateLen = quorum.IdentitySize + 2

// Door can be opened by the holder of its key.
type Door struct {
	Key         quorum.Identity
	Initialized bool
	Opened      bool
}

// Marshal returns the fixed width encoding of the door.
func (d *Door) Marshal() ([]byte, error) {
	return encode(d.Key, d.Initialized, d.Opened)
}

// Unmarshal decodes the door from account data.
func (d *Door) Unmarshal(data []byte) error {
	var err error
	d.Key, d.Initialized, d.Opened, err = decode(data)
	return errors.Wrap(err, "door")
}

// Access decides whether doors can be used. Doors can be opened and closed
// only while it is unlocked.
type Access struct {
	Admin       quorum.Identity
	Locked      bool
	Initialized bool
}

// Marshal returns the fixed width encoding of the access configuration.
func (a *Access) Marshal() ([]byte, error) {
	return encode(a.Admin, a.Locked, a.Initialized)
}

// Unmarshal decodes the access configuration from account data.
func (a *Access) Unmarshal(data []byte) error {
	var err error
	a.Admin, a.Locked, a.Initialized, err = decode(data)
	return errors.Wrap(err, "access")
}

func encode(key quorum.Identity, first, second bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := enc.WriteBytes(key[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(first); err != nil {
		return nil, err
	}
	if err := enc.WriteBool(second); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (quorum.Identity, bool, bool, error) {
	if len(data) < StateLen {
		return quorum.Identity{}, false, false, errors.Wrapf(errors.ErrCorruptData, "requires %d bytes, got %d", StateLen, len(data))
	}
	dec := bin.NewBinDecoder(data[:StateLen])
	raw, err := dec.ReadNBytes(quorum.IdentitySize)
	if err != nil {
		return quorum.Identity{}, false, false, errors.Wrap(errors.ErrCorruptData, err.Error())
	}
	key, err := quorum.IdentityFromBytes(raw)
	if err != nil {
		return quorum.Identity{}, false, false, err
	}
	var flags [2]bool
	for i := range flags {
		b, err := dec.ReadUint8()
		if err != nil {
			return quorum.Identity{}, false, false, errors.Wrap(errors.ErrCorruptData, err.Error())
		}
		if b > 1 {
			return quorum.Identity{}, false, false, errors.Wrapf(errors.ErrCorruptData, "sentinel byte %d", b)
		}
		flags[i] = b == 1
	}
	return key, flags[0], flags[1], nil
}

func writeEntity(m interface{ Marshal() ([]byte, error) }, data []byte) error {
	raw, err := m.Marshal()
	if err != nil {
		return err
	}
	if len(data) < len(raw) {
		return errors.Wrapf(errors.ErrInput, "account holds %d bytes, requires %d", len(data), len(raw))
	}
	copy(data, raw)
	return nil
}
