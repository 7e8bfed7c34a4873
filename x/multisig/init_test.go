package multisig

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/ledger"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/store"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenesis(t *testing.T) {
	programID := quorumtest.RandomIdentity(t)
	a := quorumtest.RandomIdentity(t)
	b := quorumtest.RandomIdentity(t)

	load := func(raw string) quorum.Options {
		var o quorum.Options
		So(json.Unmarshal([]byte(raw), &o), ShouldBeNil)
		return o
	}

	Convey("Without a multisig section", t, func() {
		db := store.MemStore()
		err := (&Initializer{ProgramID: programID}).FromGenesis(load(`{}`), db)
		So(err, ShouldBeNil)

		Convey("Default configuration is stored", func() {
			conf, err := LoadConfig(db)
			So(err, ShouldBeNil)
			So(conf, ShouldResemble, DefaultConfig())
		})

		Convey("No registry is written", func() {
			addr, err := RegistryAddress(programID)
			So(err, ShouldBeNil)
			acc, err := ledger.NewAccountBucket(db).Get(addr)
			So(err, ShouldBeNil)
			So(acc.IsEmpty(), ShouldBeTrue)
		})
	})

	Convey("With configuration and registry", t, func() {
		genesis := fmt.Sprintf(`
		{
			"conf": {
				"multisig": {"account_size": 512, "allow_reexecution": true}
			},
			"multisig": {
				"registry": {"threshold": 2, "signers": [%q, %q]}
			}
		}`, a, b)
		db := store.MemStore()
		err := (&Initializer{ProgramID: programID}).FromGenesis(load(genesis), db)
		So(err, ShouldBeNil)

		Convey("Omitted fields keep their defaults", func() {
			conf, err := LoadConfig(db)
			So(err, ShouldBeNil)
			So(conf.AccountSize, ShouldEqual, 512)
			So(conf.AllowReexecution, ShouldBeTrue)
			So(conf.StrictThreshold, ShouldBeTrue)
			So(conf.RentLamports, ShouldEqual, DefaultRentLamports)
		})

		Convey("Registry is written at the derived address", func() {
			addr, err := RegistryAddress(programID)
			So(err, ShouldBeNil)
			acc, err := ledger.NewAccountBucket(db).Get(addr)
			So(err, ShouldBeNil)
			So(acc.Owner, ShouldResemble, programID)
			So(acc.Lamports, ShouldEqual, DefaultRentLamports)
			So(len(acc.Data), ShouldEqual, 512)

			var r Registry
			So(r.Unmarshal(acc.Data), ShouldBeNil)
			So(r.Initialized, ShouldBeTrue)
			So(r.Threshold, ShouldEqual, 2)
			So(r.Roster(), ShouldResemble, []quorum.Identity{a, b})
		})
	})

	Convey("Invalid registry is rejected", t, func() {
		genesis := fmt.Sprintf(`{"multisig": {"registry": {"threshold": 3, "signers": [%q, %q]}}}`, a, b)
		err := (&Initializer{ProgramID: programID}).FromGenesis(load(genesis), store.MemStore())
		So(errors.ErrInvalidThreshold.Is(err), ShouldBeTrue)
	})

	Convey("Invalid configuration is rejected", t, func() {
		err := (&Initializer{ProgramID: programID}).FromGenesis(load(`{"conf": {"multisig": {"account_size": 10}}}`), store.MemStore())
		So(errors.ErrInput.Is(err), ShouldBeTrue)
	})
}
