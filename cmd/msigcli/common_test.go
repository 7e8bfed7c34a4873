package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/require"
)

func TestProgramsValidate(t *testing.T) {
	a, b, c := quorumtest.SequenceIdentity(1), quorumtest.SequenceIdentity(2), quorumtest.SequenceIdentity(3)

	cases := map[string]struct {
		programs Programs
		wantErr  bool
	}{
		"valid": {
			programs: Programs{Multisig: a, Door: b, Counter: c},
		},
		"missing program": {
			programs: Programs{Multisig: a, Door: b},
			wantErr:  true,
		},
		"shared identity": {
			programs: Programs{Multisig: a, Door: a, Counter: c},
			wantErr:  true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if err := tc.programs.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("unexpected validation result: %+v", err)
			}
		})
	}
}

func TestDecodePrivateKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	out := run(t, cmdKeygen, nil, "-key", path)

	key, err := decodePrivateKey(path)
	require.NoError(t, err)
	require.Equal(t, keyIdentity(key).String()+"\n", string(out))

	err = cmdKeygen(nil, ioutil.Discard, []string{"-key", path})
	require.Error(t, err, "existing key must not be overwritten")

	bad := filepath.Join(dir, "bad")
	require.NoError(t, ioutil.WriteFile(bad, []byte("3mJr7AoUXx2Wqd"), 0600))
	_, err = decodePrivateKey(bad)
	require.Error(t, err)
}
