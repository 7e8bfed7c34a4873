package ledger

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"io"
	"regexp"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"golang.org/x/crypto/ed25519"
)

// SignCodeV1 is the current way to prefix the bytes we use to build
// a signature
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// IsValidChainID is the RegExp to ensure valid chain IDs
var IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString

const (
	flagSigner   = 1 << 0
	flagWritable = 1 << 1
)

// Tx is a list of instructions executed atomically, together with the
// signatures that authorize them.
type Tx struct {
	Instructions []quorum.Instruction
	Signatures   []Signature
}

// Signature authorizes a transaction on behalf of Signer. Sequence must be
// equal to the number of transactions Signer has signed before.
type Signature struct {
	Signer    quorum.Identity
	Sequence  uint64
	Signature solana.Signature
}

// Signers returns the identities that signed the transaction.
func (tx *Tx) Signers() []quorum.Identity {
	res := make([]quorum.Identity, len(tx.Signatures))
	for i, s := range tx.Signatures {
		res[i] = s.Signer
	}
	return res
}

// Validate checks the transaction shape without verifying signatures.
func (tx *Tx) Validate() error {
	if len(tx.Instructions) == 0 {
		return errors.Wrap(errors.ErrInput, "no instructions")
	}
	if len(tx.Instructions) > 255 {
		return errors.Wrap(errors.ErrInput, "too many instructions")
	}
	if len(tx.Signatures) > 255 {
		return errors.Wrap(errors.ErrInput, "too many signatures")
	}
	for i, in := range tx.Instructions {
		if len(in.Accounts) > 255 {
			return errors.Wrapf(errors.ErrInput, "instruction %d: too many accounts", i)
		}
	}
	return nil
}

// GetSignBytes returns the canonical encoding of the instructions. It is
// what every signature signs, together with the chain ID and the sequence.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := encodeInstructions(bin.NewBinEncoder(&buf), tx.Instructions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal serializes the transaction with its signatures.
func (tx *Tx) Marshal() ([]byte, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	if err := encodeInstructions(enc, tx.Instructions); err != nil {
		return nil, err
	}
	if err := enc.WriteUint8(uint8(len(tx.Signatures))); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	for _, s := range tx.Signatures {
		if err := enc.WriteBytes(s.Signer[:], false); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if err := enc.WriteUint64(s.Sequence, binary.LittleEndian); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		if err := enc.WriteBytes(s.Signature[:], false); err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal loads the transaction from its serialized form.
func (tx *Tx) Unmarshal(raw []byte) error {
	dec := bin.NewBinDecoder(raw)
	ins, err := decodeInstructions(dec)
	if err != nil {
		return err
	}
	n, err := dec.ReadUint8()
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "signature count: %s", err)
	}
	sigs := make([]Signature, n)
	for i := range sigs {
		signer, err := dec.ReadNBytes(quorum.IdentitySize)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "signature %d signer: %s", i, err)
		}
		seq, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "signature %d sequence: %s", i, err)
		}
		sig, err := dec.ReadNBytes(ed25519.SignatureSize)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "signature %d: %s", i, err)
		}
		copy(sigs[i].Signer[:], signer)
		sigs[i].Sequence = seq
		copy(sigs[i].Signature[:], sig)
	}
	if dec.Remaining() > 0 {
		return errors.Wrap(errors.ErrInput, "trailing bytes")
	}
	tx.Instructions = ins
	tx.Signatures = sigs
	return nil
}

func encodeInstructions(enc *bin.Encoder, ins []quorum.Instruction) error {
	if err := enc.WriteUint8(uint8(len(ins))); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	for _, in := range ins {
		if err := enc.WriteBytes(in.Program[:], false); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		if err := enc.WriteUint8(uint8(len(in.Accounts))); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
		for _, m := range in.Accounts {
			if err := enc.WriteBytes(m.PublicKey[:], false); err != nil {
				return errors.Wrap(errors.ErrInput, err.Error())
			}
			var flags uint8
			if m.IsSigner {
				flags |= flagSigner
			}
			if m.IsWritable {
				flags |= flagWritable
			}
			if err := enc.WriteUint8(flags); err != nil {
				return errors.Wrap(errors.ErrInput, err.Error())
			}
		}
		if err := enc.WriteBytes(in.Data, true); err != nil {
			return errors.Wrap(errors.ErrInput, err.Error())
		}
	}
	return nil
}

func decodeInstructions(dec *bin.Decoder) ([]quorum.Instruction, error) {
	n, err := dec.ReadUint8()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "instruction count: %s", err)
	}
	ins := make([]quorum.Instruction, n)
	for i := range ins {
		program, err := dec.ReadNBytes(quorum.IdentitySize)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "instruction %d program: %s", i, err)
		}
		copy(ins[i].Program[:], program)

		count, err := dec.ReadUint8()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "instruction %d account count: %s", i, err)
		}
		if count > 0 {
			ins[i].Accounts = make([]quorum.AccountMeta, count)
		}
		for j := range ins[i].Accounts {
			key, err := dec.ReadNBytes(quorum.IdentitySize)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrInput, "instruction %d account %d: %s", i, j, err)
			}
			flags, err := dec.ReadUint8()
			if err != nil {
				return nil, errors.Wrapf(errors.ErrInput, "instruction %d account %d flags: %s", i, j, err)
			}
			if flags&^(flagSigner|flagWritable) != 0 {
				return nil, errors.Wrapf(errors.ErrInput, "instruction %d account %d: unknown flags %#x", i, j, flags)
			}
			m := &ins[i].Accounts[j]
			copy(m.PublicKey[:], key)
			m.IsSigner = flags&flagSigner != 0
			m.IsWritable = flags&flagWritable != 0
		}

		data, err := dec.ReadByteSlice()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "instruction %d data: %s", i, err)
		}
		ins[i].Data = append([]byte{}, data...)
	}
	return ins, nil
}

// BuildSignBytes combines all the information a signature commits to and
// returns its sha512 hash.
func BuildSignBytes(signBytes []byte, chainID string, seq uint64) ([]byte, error) {
	if !IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	// encode nonce as 8 byte, big-endian
	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, seq)

	output := make([]byte, 0, len(SignCodeV1)+1+len(chainID)+8+len(signBytes))
	output = append(output, SignCodeV1...)
	output = append(output, uint8(len(chainID)))
	output = append(output, []byte(chainID)...)
	output = append(output, nonce...)
	output = append(output, signBytes...)

	// now, we take the sha512 hash of the result,
	// so we have a constant length output to feed into eddsa
	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// SignTx returns a signature of the transaction made with given key.
func SignTx(key ed25519.PrivateKey, tx *Tx, chainID string, seq uint64) (Signature, error) {
	if len(key) != ed25519.PrivateKeySize {
		return Signature{}, errors.Wrap(errors.ErrInput, "invalid private key")
	}
	signBytes, err := tx.GetSignBytes()
	if err != nil {
		return Signature{}, err
	}
	toSign, err := BuildSignBytes(signBytes, chainID, seq)
	if err != nil {
		return Signature{}, err
	}
	sig := Signature{Sequence: seq}
	copy(sig.Signer[:], key.Public().(ed25519.PublicKey))
	copy(sig.Signature[:], ed25519.Sign(key, toSign))
	return sig, nil
}

// VerifySignature returns an error unless the signature was made by its
// signer over the transaction.
func VerifySignature(tx *Tx, sig Signature, chainID string) error {
	signBytes, err := tx.GetSignBytes()
	if err != nil {
		return err
	}
	toSign, err := BuildSignBytes(signBytes, chainID, sig.Sequence)
	if err != nil {
		return err
	}
	if !ed25519.Verify(ed25519.PublicKey(sig.Signer[:]), toSign, sig.Signature[:]) {
		return errors.Wrapf(errors.ErrUnauthorized, "invalid signature of %s", sig.Signer)
	}
	return nil
}

// TxHeaderSize is the length of the size header WriteTx writes before every
// transaction.
const TxHeaderSize = 4

// MaxTxSize is the largest encoded transaction WriteTx and ReadTx accept.
const MaxTxSize = 1 << 20

// WriteTx serialize the transaction. First bytes written contain the
// information how much space the transaction takes. Size information is
// required to be able to stream transactions.
func WriteTx(w io.Writer, tx *Tx) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}
	if len(b) > MaxTxSize {
		return 0, errors.Wrapf(errors.ErrInput, "transaction of %d bytes exceeds %d", len(b), MaxTxSize)
	}

	var size [TxHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + TxHeaderSize, err
	}
	return TxHeaderSize + len(b), nil
}

// ReadTx reads a single transaction written by WriteTx.
func ReadTx(r io.Reader) (*Tx, int, error) {
	// When serialized using WriteTx function, first bytes contain
	// information about the actual size of the transaction message.
	var size [TxHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	if msgSize > MaxTxSize {
		return nil, TxHeaderSize, errors.Wrapf(errors.ErrInput, "transaction of %d bytes exceeds %d", msgSize, MaxTxSize)
	}
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + TxHeaderSize, err
	}

	var tx Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, int(msgSize + TxHeaderSize), err
	}
	return &tx, int(msgSize + TxHeaderSize), nil
}
