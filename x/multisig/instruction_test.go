package multisig

import (
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/require"
)

func TestInstructionEncoding(t *testing.T) {
	target := quorumtest.SequenceIdentity(7)
	cases := map[string]struct {
		In   Instruction
		Want []byte
	}{
		"allocate": {
			In:   Instruction{Op: OpAllocateRegistry},
			Want: []byte{0},
		},
		"initialize": {
			In:   Instruction{Op: OpInitializeRegistry, Threshold: 3},
			Want: []byte{1, 3},
		},
		"create proposal": {
			In:   Instruction{Op: OpCreateProposal, TargetProgram: target, Payload: 9},
			Want: append(append([]byte{2}, target[:]...), 9),
		},
		"approve": {
			In:   Instruction{Op: OpApprove},
			Want: []byte{3},
		},
		"execute": {
			In:   Instruction{Op: OpExecute},
			Want: []byte{4},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := tc.In.Marshal()
			require.NoError(t, err)
			require.Equal(t, tc.Want, raw)

			var got Instruction
			require.NoError(t, got.Unmarshal(raw))
			require.Equal(t, tc.In, got)
		})
	}
}

func TestInstructionDecodeErrors(t *testing.T) {
	cases := map[string][]byte{
		"empty":               nil,
		"unknown opcode":      {5},
		"missing threshold":   {1},
		"short target":        {2, 1, 2, 3},
		"missing payload":     append([]byte{2}, make([]byte, 32)...),
		"trailing bytes":      {3, 0},
		"initialize trailing": {1, 2, 3},
	}
	for testName, data := range cases {
		t.Run(testName, func(t *testing.T) {
			var in Instruction
			err := in.Unmarshal(data)
			require.True(t, errors.ErrInput.Is(err), "got %+v", err)
		})
	}

	_, err := (&Instruction{Op: 9}).Marshal()
	require.True(t, errors.ErrInput.Is(err), "got %+v", err)
}

func TestOpcodeName(t *testing.T) {
	require.Equal(t, "approve", OpApprove.Name())
	require.Equal(t, "opcode_200", Opcode(200).Name())
}
