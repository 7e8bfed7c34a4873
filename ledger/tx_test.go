package ledger

import (
	"bytes"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/require"
)

func TestTxStream(t *testing.T) {
	key := quorumtest.NewKey(t)
	tx := &Tx{
		Instructions: []quorum.Instruction{
			{
				Program: quorumtest.RandomIdentity(t),
				Accounts: []quorum.AccountMeta{
					quorum.Meta(quorumtest.RandomIdentity(t), true, false),
					quorum.Meta(quorumtest.KeyIdentity(key), false, true),
				},
				Data: []byte{4},
			},
			{
				Program: quorumtest.RandomIdentity(t),
				Data:    []byte{},
			},
		},
	}
	sig, err := SignTx(key, tx, testChainID, 3)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)

	var buf bytes.Buffer
	n, err := WriteTx(&buf, tx)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)

	got, m, err := ReadTx(&buf)
	require.NoError(t, err)
	require.Equal(t, n, m)
	require.Equal(t, tx, got)
	require.NoError(t, VerifySignature(got, got.Signatures[0], testChainID))
}

func TestSignatureIsBoundToChainAndSequence(t *testing.T) {
	key := quorumtest.NewKey(t)
	tx := &Tx{Instructions: []quorum.Instruction{{Program: quorumtest.RandomIdentity(t), Data: []byte{1}}}}

	sig, err := SignTx(key, tx, testChainID, 0)
	require.NoError(t, err)
	require.NoError(t, VerifySignature(tx, sig, testChainID))

	err = VerifySignature(tx, sig, "another-chain")
	require.True(t, errors.ErrUnauthorized.Is(err))

	sig.Sequence = 1
	err = VerifySignature(tx, sig, testChainID)
	require.True(t, errors.ErrUnauthorized.Is(err))

	_, err = SignTx(key, tx, "bad", 0)
	require.True(t, errors.ErrInput.Is(err))
}

func TestTxUnmarshalRejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"truncated":      {1, 2, 3},
		"unknown flags":  concat([]byte{1}, make([]byte, 32), []byte{1}, make([]byte, 32), []byte{0xAA}),
		"trailing bytes": concat([]byte{1}, make([]byte, 32), []byte{0, 0, 0, 9}),
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			var tx Tx
			err := tx.Unmarshal(raw)
			require.True(t, errors.ErrInput.Is(err), "%+v", err)
		})
	}
}

func TestReadTxRejectsOversizedHeader(t *testing.T) {
	cases := map[string][]byte{
		"just above the limit": {0x00, 0x10, 0x00, 0x01},
		"maximum header":       {0xFF, 0xFF, 0xFF, 0xFF},
	}
	for testName, header := range cases {
		t.Run(testName, func(t *testing.T) {
			_, n, err := ReadTx(bytes.NewReader(header))
			require.True(t, errors.ErrInput.Is(err), "%+v", err)
			require.Equal(t, TxHeaderSize, n)
		})
	}
}

func concat(parts ...[]byte) []byte {
	var res []byte
	for _, p := range parts {
		res = append(res, p...)
	}
	return res
}
