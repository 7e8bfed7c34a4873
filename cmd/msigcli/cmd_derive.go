package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/door"
	"github.com/iov-one/quorum/x/multisig"
)

func cmdDerive(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the program derived addresses together with their bump seeds: the
multisig registry and the door access account.

Program identities are read from the home ledger unless provided.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		multisigFl = flIdentity(fl, "multisig", "", "Multisig program identity.")
		doorFl     = flIdentity(fl, "door", "", "Door program identity.")
	)
	fl.Parse(args)

	if multisigFl.IsZero() || doorFl.IsZero() {
		err := withHome(*homeFl, func(h *homeDB) error {
			if multisigFl.IsZero() {
				*multisigFl = h.programs.Multisig
			}
			if doorFl.IsZero() {
				*doorFl = h.programs.Door
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	registry, rbump, err := multisig.DeriveRegistry(quorum.Deriver, *multisigFl)
	if err != nil {
		return fmt.Errorf("cannot derive registry: %s", err)
	}
	access, abump, err := door.DeriveAccess(quorum.Deriver, *doorFl)
	if err != nil {
		return fmt.Errorf("cannot derive access: %s", err)
	}
	fmt.Fprintf(output, "registry\t%s\t%d\n", registry, rbump)
	_, err = fmt.Fprintf(output, "access\t%s\t%d\n", access, abump)
	return err
}
