package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/gconf"
	"github.com/iov-one/quorum/store"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a home ledger from a genesis file. The genesis file is read from the
standard input unless a path is given.

A genesis file declares the chain ID and funded accounts under "ledger", the
program identities under "programs", program configurations under "conf" and
an optional multisig registry under "multisig":

  {
    "ledger": {"chain_id": "local-chain", "accounts": [{"address": "...", "lamports": 1000000000}]},
    "programs": {"multisig": "...", "door": "...", "counter": "..."},
    "conf": {"multisig": {"account_size": 1024, "rent_lamports": 80179200, "strict_threshold": true}},
    "multisig": {"registry": {"threshold": 2, "signers": ["...", "...", "..."]}}
  }
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		genesisFl = fl.String("genesis", "",
			"Path to the genesis file. Standard input is read if not provided.")
	)
	fl.Parse(args)

	var (
		raw []byte
		err error
	)
	if *genesisFl == "" {
		raw, err = ioutil.ReadAll(input)
	} else {
		raw, err = ioutil.ReadFile(*genesisFl)
	}
	if err != nil {
		return fmt.Errorf("cannot read genesis: %s", err)
	}
	var opts quorum.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("cannot decode genesis: %s", err)
	}
	ini, err := genesisInitializer(opts)
	if err != nil {
		return err
	}

	db, err := store.OpenLevelDB(*homeFl)
	if err != nil {
		return fmt.Errorf("cannot open home %q: %s", *homeFl, err)
	}
	defer db.Close()

	if raw, err := db.Get(gconf.Key("programs")); err != nil {
		return err
	} else if raw != nil {
		return fmt.Errorf("home %q is already initialized", *homeFl)
	}

	cache := db.CacheWrap()
	if err := ini.FromGenesis(opts, cache); err != nil {
		cache.Discard()
		return fmt.Errorf("cannot apply genesis: %s", err)
	}
	if err := cache.Write(); err != nil {
		return fmt.Errorf("cannot write genesis: %s", err)
	}
	return db.Close()
}
