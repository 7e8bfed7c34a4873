package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum/x/counter"
	"github.com/iov-one/quorum/x/multisig"
)

func cmdCounterInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction allocating and initializing a counter account. Both the
payer and the counter account must sign the transaction.

By default the multisig registry becomes the counter authority, so that the
counter can only be changed by executing a proposal.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when payer is not given.")
		payerFl     = flIdentity(fl, "payer", "", "Identity of the account funding the counter account.")
		counterFl   = flIdentity(fl, "counter", "", "Identity of the new counter account. Required.")
		authorityFl = flIdentity(fl, "authority", "", "Identity allowed to change the counter. Multisig registry if not given.")
		lamportsFl  = fl.Uint64("lamports", 1000, "Amount the counter account is funded with.")
	)
	fl.Parse(args)

	if counterFl.IsZero() {
		flagDie("counter account is required")
	}
	payer, err := signerOrKey(payerFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	authority := *authorityFl
	if authority.IsZero() {
		if authority, err = multisig.RegistryAddress(programs.Multisig); err != nil {
			return fmt.Errorf("cannot derive registry: %s", err)
		}
	}
	create, err := counter.CreateAccountInstruction(programs.Counter, payer, *counterFl, *lamportsFl)
	if err != nil {
		return fmt.Errorf("cannot create account instruction: %s", err)
	}
	return writeInstructions(output, create, counter.InitializeInstruction(programs.Counter, authority, *counterFl))
}
