package quorum

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/store"
)

func TestReadOptions(t *testing.T) {
	cases := map[string]struct {
		json    string
		want    struct{ Key int }
		wantErr *errors.Error
	}{
		"happy path": {
			json: `{"obj": {"key": 7}}`,
			want: struct{ Key int }{Key: 7},
		},
		"missing key is not an error": {
			json: `{}`,
		},
		"wrong value": {
			json:    `{"obj": {"key": "seven"}}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var o Options
			assert.Nil(t, json.Unmarshal([]byte(tc.json), &o))

			var got struct{ Key int }
			err := o.ReadOptions("obj", &got)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type recordingInitializer struct {
	name  string
	calls *[]string
	err   error
}

func (r recordingInitializer) FromGenesis(Options, store.KVStore) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestChainInitializers(t *testing.T) {
	var calls []string
	ini := ChainInitializers(
		recordingInitializer{name: "a", calls: &calls},
		recordingInitializer{name: "b", calls: &calls, err: errors.ErrState},
		recordingInitializer{name: "c", calls: &calls},
	)
	err := ini.FromGenesis(Options{}, store.MemStore())
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, []string{"a", "b"}, calls)
}
