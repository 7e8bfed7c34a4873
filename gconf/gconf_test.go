package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest/assert"
	"github.com/iov-one/quorum/store"
)

type MyConfig struct {
	Number int64  `json:"number"`
	Text   string `json:"text"`
}

func (c *MyConfig) Validate() error {
	if c.Number < 0 {
		return errors.Wrap(errors.ErrInput, "negative number")
	}
	return nil
}

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		Conf        *MyConfig
		WantSaveErr *errors.Error
	}{
		"valid": {
			Conf: &MyConfig{Number: 852151421, Text: "foobar"},
		},
		"zero value": {
			Conf: &MyConfig{},
		},
		"invalid configuration cannot be saved": {
			Conf:        &MyConfig{Number: -1},
			WantSaveErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "mypkg", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				return
			}

			var got MyConfig
			if err := Load(db, "mypkg", &got); err != nil {
				t.Fatalf("cannot load configuration: %s", err)
			}
			assert.Equal(t, *tc.Conf, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	var c MyConfig
	err := Load(store.MemStore(), "mypkg", &c)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestInitConfig(t *testing.T) {
	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
		want    MyConfig
	}{
		"configured": {
			genesis: `{"conf": {"mypkg": {"number": 7, "text": "seven"}}}`,
			want:    MyConfig{Number: 7, Text: "seven"},
		},
		"not configured": {
			genesis: `{"conf": {"otherpkg": {}}}`,
			wantErr: errors.ErrNotFound,
		},
		"invalid": {
			genesis: `{"conf": {"mypkg": {"number": -4}}}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts quorum.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.genesis), &opts))

			db := store.MemStore()
			var conf MyConfig
			err := InitConfig(db, opts, "mypkg", &conf)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				return
			}
			assert.Nil(t, err)

			var got MyConfig
			assert.Nil(t, Load(db, "mypkg", &got))
			assert.Equal(t, tc.want, got)
		})
	}
}
