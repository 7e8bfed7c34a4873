package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/multisig"
)

// signerOrKey returns the identity if set, or the identity of the key file.
func signerOrKey(id *quorum.Identity, keyPath string) (quorum.Identity, error) {
	if !id.IsZero() {
		return *id, nil
	}
	key, err := decodePrivateKey(keyPath)
	if err != nil {
		return quorum.Identity{}, fmt.Errorf("cannot load private key: %s", err)
	}
	return keyIdentity(key), nil
}

func homePrograms(home string) (*Programs, error) {
	var p *Programs
	err := withHome(home, func(h *homeDB) error {
		p = h.programs
		return nil
	})
	return p, err
}

func cmdAllocateRegistry(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction allocating the multisig registry account. The payer funds
the account and must sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when payer is not given.")
		payerFl = flIdentity(fl, "payer", "", "Identity of the account funding the registry.")
	)
	fl.Parse(args)

	payer, err := signerOrKey(payerFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	in, err := multisig.AllocateRegistryInstruction(programs.Multisig, payer)
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeInstructions(output, in)
}

func cmdInitRegistry(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction setting the roster and the threshold of the multisig
registry. The registry must be allocated first. Roster members do not have to
sign the transaction, but any signature is required for it to be accepted.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		thresholdFl = fl.Uint("threshold", 0, "Number of approvals required to execute a proposal.")
		signersFl   = flIdentities(fl, "signers", "", "Comma separated list of roster members.")
	)
	fl.Parse(args)

	if *thresholdFl == 0 || *thresholdFl > multisig.MaxSigners {
		flagDie("threshold must be between 1 and %d", multisig.MaxSigners)
	}
	if len(*signersFl) == 0 {
		flagDie("at least one signer is required")
	}

	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	in, err := multisig.InitializeRegistryInstruction(programs.Multisig, uint8(*thresholdFl), *signersFl)
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeInstructions(output, in)
}

func cmdCreateProposal(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction allocating a proposal account and writing a proposal to
it. Both the payer and the proposal account must sign the transaction. Use
keygen to create a key for the proposal account.

A proposal calls the target program with two accounts and a single byte of
data. Use the registry address as a signing target account to act as the
registry when the proposal is executed.

By default a counter increment proposal is created, calling the counter
program with the registry as the authority.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when payer is not given.")
		payerFl    = flIdentity(fl, "payer", "", "Identity of the account funding the proposal account.")
		proposalFl = flIdentity(fl, "proposal", "", "Identity of the new proposal account. Required.")
		lamportsFl = fl.Uint64("lamports", 5000, "Amount the proposal account is funded with.")
		targetFl   = flIdentity(fl, "target", "", "Target program identity. Counter program if not given.")
		counterFl  = flIdentity(fl, "counter", "", "Counter account. Used when no target accounts are given.")
		firstFl    = flMeta(fl, "account0", "First target account, as IDENTITY[:sw].")
		secondFl   = flMeta(fl, "account1", "Second target account, as IDENTITY[:sw].")
		payloadFl  = fl.Uint("payload", 1, "Single byte of instruction data the target program is called with.")
	)
	fl.Parse(args)

	if proposalFl.IsZero() {
		flagDie("proposal account is required")
	}
	if *payloadFl > 255 {
		flagDie("payload must fit in a single byte")
	}

	payer, err := signerOrKey(payerFl, *keyPathFl)
	if err != nil {
		return err
	}
	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	registry, err := multisig.RegistryAddress(programs.Multisig)
	if err != nil {
		return fmt.Errorf("cannot derive registry: %s", err)
	}

	target := *targetFl
	if target.IsZero() {
		target = programs.Counter
	}
	targets := [2]quorum.AccountMeta{*firstFl, *secondFl}
	if targets[0].PublicKey.IsZero() && targets[1].PublicKey.IsZero() {
		if counterFl.IsZero() {
			flagDie("either target accounts or a counter account is required")
		}
		targets[0] = quorum.Meta(registry, false, true)
		targets[1] = quorum.Meta(*counterFl, true, false)
	}

	create, err := multisig.CreateProposalAccountInstruction(programs.Multisig, payer, *proposalFl, *lamportsFl)
	if err != nil {
		return fmt.Errorf("cannot create account instruction: %s", err)
	}
	write, err := multisig.CreateProposalInstruction(programs.Multisig, *proposalFl, target, targets, uint8(*payloadFl))
	if err != nil {
		return fmt.Errorf("cannot create proposal instruction: %s", err)
	}
	return writeInstructions(output, create, write)
}

func cmdApprove(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction approving a proposal. Every approving roster member must
sign the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file used when no signers are given.")
		proposalFl = flIdentity(fl, "proposal", "", "Identity of the proposal account. Required.")
		signersFl  = flIdentities(fl, "signers", "", "Comma separated list of approving roster members.")
	)
	fl.Parse(args)

	if proposalFl.IsZero() {
		flagDie("proposal account is required")
	}
	signers := *signersFl
	if len(signers) == 0 {
		id, err := signerOrKey(&quorum.Identity{}, *keyPathFl)
		if err != nil {
			return err
		}
		signers = []quorum.Identity{id}
	}

	programs, err := homePrograms(*homeFl)
	if err != nil {
		return err
	}
	in, err := multisig.ApproveInstruction(programs.Multisig, *proposalFl, signers...)
	if err != nil {
		return fmt.Errorf("cannot create instruction: %s", err)
	}
	return writeInstructions(output, in)
}

func cmdExecute(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction executing an approved proposal. Target accounts are read
from the proposal stored in the home ledger. Anyone can submit it.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		proposalFl = flIdentity(fl, "proposal", "", "Identity of the proposal account. Required.")
	)
	fl.Parse(args)

	if proposalFl.IsZero() {
		flagDie("proposal account is required")
	}

	var in quorum.Instruction
	err := withHome(*homeFl, func(h *homeDB) error {
		l, err := h.Ledger()
		if err != nil {
			return err
		}
		acc, err := l.Account(*proposalFl)
		if err != nil {
			return err
		}
		var p multisig.Proposal
		if err := p.Unmarshal(acc.Data); err != nil {
			return fmt.Errorf("cannot decode proposal: %s", err)
		}
		if !p.Initialized {
			return fmt.Errorf("proposal %s is not initialized", *proposalFl)
		}
		in, err = multisig.ExecuteInstruction(h.programs.Multisig, *proposalFl, &p)
		return err
	})
	if err != nil {
		return err
	}
	return writeInstructions(output, in)
}
