package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum/x/door"
	"github.com/iov-one/quorum/x/multisig"
)

func cmdAccessInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction allocating and initializing the door access account. The
access account starts locked. The payer must sign the transaction.

The admin can be a single account or a roster created with roster-init.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when payer or admin is not given.")
		payerFl = flIdentity(fl, "payer", "", "Identity of the account funding the access account.")
		adminFl = flIdentity(fl, "admin", "", "Identity allowed to lock and unlock.")
	)
	fl.Parse(args)

	payer, err := signerOrKey(payerFl, *keyPathFl)
	if err != nil {
		return err
	}
	admin, err := signerOrKey(adminFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	alloc, err := door.AllocateAccessInstruction(programs.Door, payer)
	if err != nil {
		return fmt.Errorf("cannot create allocate instruction: %s", err)
	}
	initIns, err := door.InitializeAccessInstruction(programs.Door, admin)
	if err != nil {
		return fmt.Errorf("cannot create initialize instruction: %s", err)
	}
	return writeInstructions(output, alloc, initIns)
}

func cmdRosterInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction allocating a door roster account and writing the roster to
it. Both the payer and the roster account must sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when payer is not given.")
		payerFl     = flIdentity(fl, "payer", "", "Identity of the account funding the roster account.")
		rosterFl    = flIdentity(fl, "roster", "", "Identity of the new roster account. Required.")
		lamportsFl  = fl.Uint64("lamports", 5000, "Amount the roster account is funded with.")
		thresholdFl = fl.Uint("threshold", 0, "Number of roster members required to lock or unlock.")
		signersFl   = flIdentities(fl, "signers", "", "Comma separated list of roster members.")
	)
	fl.Parse(args)

	if rosterFl.IsZero() {
		flagDie("roster account is required")
	}
	if *thresholdFl == 0 || *thresholdFl > multisig.MaxSigners {
		flagDie("threshold must be between 1 and %d", multisig.MaxSigners)
	}
	if len(*signersFl) == 0 {
		flagDie("at least one signer is required")
	}

	payer, err := signerOrKey(payerFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	create, err := door.CreateRosterInstruction(programs.Door, payer, *rosterFl, *lamportsFl)
	if err != nil {
		return fmt.Errorf("cannot create account instruction: %s", err)
	}
	initIns, err := door.InitializeRosterInstruction(programs.Door, *rosterFl, uint8(*thresholdFl), *signersFl)
	if err != nil {
		return fmt.Errorf("cannot create roster instruction: %s", err)
	}
	return writeInstructions(output, create, initIns)
}

func cmdDoorInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction allocating a door account and setting its key holder.
Both the payer and the door account must sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when payer or holder is not given.")
		payerFl    = flIdentity(fl, "payer", "", "Identity of the account funding the door account.")
		doorFl     = flIdentity(fl, "door", "", "Identity of the new door account. Required.")
		holderFl   = flIdentity(fl, "holder", "", "Identity allowed to open and close the door.")
		lamportsFl = fl.Uint64("lamports", 5000, "Amount the door account is funded with.")
	)
	fl.Parse(args)

	if doorFl.IsZero() {
		flagDie("door account is required")
	}
	payer, err := signerOrKey(payerFl, *keyPathFl)
	if err != nil {
		return err
	}
	holder, err := signerOrKey(holderFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	create, err := door.CreateDoorInstruction(programs.Door, payer, *doorFl, *lamportsFl)
	if err != nil {
		return fmt.Errorf("cannot create account instruction: %s", err)
	}
	initIns, err := door.InitializeDoorInstruction(programs.Door, *doorFl, holder)
	if err != nil {
		return fmt.Errorf("cannot create door instruction: %s", err)
	}
	return writeInstructions(output, create, initIns)
}

func cmdLock(input io.Reader, output io.Writer, args []string) error {
	return lockCmd(output, args, true)
}

func cmdUnlock(input io.Reader, output io.Writer, args []string) error {
	return lockCmd(output, args, false)
}

func lockCmd(output io.Writer, args []string, lock bool) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction locking or unlocking the door access account.

When the admin is a roster, list the approving roster members. They must all
sign the transaction. Otherwise the admin signs.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when admin is not given.")
		adminFl   = flIdentity(fl, "admin", "", "Identity of the access admin.")
		signersFl = flIdentities(fl, "signers", "", "Comma separated list of approving roster members.")
	)
	fl.Parse(args)

	admin, err := signerOrKey(adminFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	in, err := door.LockInstruction(programs.Door, admin, lock, *signersFl...)
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeInstructions(output, in)
}

func cmdOpen(input io.Reader, output io.Writer, args []string) error {
	return openCmd(output, args, true)
}

func cmdClose(input io.Reader, output io.Writer, args []string) error {
	return openCmd(output, args, false)
}

func openCmd(output io.Writer, args []string, open bool) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction opening or closing a door. The access account must be
unlocked and the key holder must sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when holder is not given.")
		doorFl   = flIdentity(fl, "door", "", "Identity of the door account. Required.")
		holderFl = flIdentity(fl, "holder", "", "Identity of the key holder.")
	)
	fl.Parse(args)

	if doorFl.IsZero() {
		flagDie("door account is required")
	}
	holder, err := signerOrKey(holderFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	in, err := door.OpenInstruction(programs.Door, *doorFl, holder, open)
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeInstructions(output, in)
}
