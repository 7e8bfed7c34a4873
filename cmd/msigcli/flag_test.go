package main

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/stretchr/testify/require"
)

func TestMetaFlag(t *testing.T) {
	id := quorumtest.SequenceIdentity(7)

	cases := map[string]struct {
		raw     string
		want    quorum.AccountMeta
		wantErr bool
	}{
		"identity only": {
			raw:  id.String(),
			want: quorum.Meta(id, false, false),
		},
		"signer": {
			raw:  id.String() + ":s",
			want: quorum.Meta(id, false, true),
		},
		"writable signer": {
			raw:  id.String() + ":ws",
			want: quorum.Meta(id, true, true),
		},
		"unknown flag": {
			raw:     id.String() + ":x",
			wantErr: true,
		},
		"invalid identity": {
			raw:     "not-base58!",
			wantErr: true,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var m metaFlag
			err := m.Set(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, quorum.AccountMeta(m))

			var again metaFlag
			require.NoError(t, again.Set(m.String()))
			require.Equal(t, m, again)
		})
	}
}

func TestIdentitiesFlag(t *testing.T) {
	a, b := quorumtest.SequenceIdentity(1), quorumtest.SequenceIdentity(2)

	var ids identitiesFlag
	require.NoError(t, ids.Set(a.String()+", "+b.String()+","))
	require.Equal(t, identitiesFlag{a, b}, ids)
	require.Equal(t, a.String()+","+b.String(), ids.String())

	require.Error(t, ids.Set(a.String()+",xyz0"))
}
