package ledger

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenesis(t *testing.T) {
	Convey("Test initializer", t, func() {
		genesis := `
		{
			"ledger": {
				"chain_id": "local-chain",
				"accounts": [
					{"address": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", "lamports": 5000},
					{"address": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", "lamports": 7},
					{"address": "SysvarRent111111111111111111111111111111111", "lamports": 1}
				]
			}
		}`
		var o quorum.Options
		err := json.Unmarshal([]byte(genesis), &o)
		So(err, ShouldBeNil)

		db := store.MemStore()
		err = Initializer{}.FromGenesis(o, db)
		So(err, ShouldBeNil)

		Convey("Chain ID is stored", func() {
			conf, err := LoadConfig(db)
			So(err, ShouldBeNil)
			So(conf.ChainID, ShouldEqual, "local-chain")
		})

		Convey("Accounts are funded", func() {
			bucket := NewAccountBucket(db)
			first, err := quorum.ParseIdentity("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
			So(err, ShouldBeNil)
			acc, err := bucket.Get(first)
			So(err, ShouldBeNil)
			So(acc.Lamports, ShouldEqual, 5007)
			So(acc.Owner, ShouldResemble, quorum.SystemProgramID)
		})
	})

	Convey("Duplicated entries cannot overflow a balance", t, func() {
		genesis := `
		{
			"ledger": {
				"chain_id": "local-chain",
				"accounts": [
					{"address": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", "lamports": 18446744073709551615},
					{"address": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", "lamports": 1}
				]
			}
		}`
		var o quorum.Options
		err := json.Unmarshal([]byte(genesis), &o)
		So(err, ShouldBeNil)

		err = Initializer{}.FromGenesis(o, store.MemStore())
		So(errors.ErrInput.Is(err), ShouldBeTrue)
	})

	Convey("Invalid chain ID is rejected", t, func() {
		var o quorum.Options
		err := json.Unmarshal([]byte(`{"ledger": {"chain_id": "x"}}`), &o)
		So(err, ShouldBeNil)

		err = Initializer{}.FromGenesis(o, store.MemStore())
		So(errors.ErrInput.Is(err), ShouldBeTrue)
	})
}
