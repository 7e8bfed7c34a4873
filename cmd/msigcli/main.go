package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/quorum"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// except the program name and the command name. It is the responsibility of
// the command function to parse the arguments using the flag package. A
// command function is expected to read and write only to provided input and
// output. In a special case of an invalid argument a message to os.Stderr and
// os.Exit(2) call are allowed.
//
// Keep a command simple. A unix pipe can be used to construct a pipeline.
// For example, creating, signing and submitting an approval:
//
//	$ msigcli approve -proposal 7Ke...3xA \
//	    | msigcli sign \
//	    | msigcli submit
//
// Commands that use the home database open it only after their input was
// read and close it before writing any output. This allows a pipeline to
// share a single home directory.
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"access-init":       cmdAccessInit,
	"account":           cmdAccount,
	"allocate-registry": cmdAllocateRegistry,
	"approve":           cmdApprove,
	"as-batch":          cmdAsBatch,
	"close":             cmdClose,
	"counter-init":      cmdCounterInit,
	"create-proposal":   cmdCreateProposal,
	"derive":            cmdDerive,
	"door-init":         cmdDoorInit,
	"execute":           cmdExecute,
	"init":              cmdInit,
	"init-registry":     cmdInitRegistry,
	"keyaddr":           cmdKeyaddr,
	"keygen":            cmdKeygen,
	"lock":              cmdLock,
	"open":              cmdOpen,
	"roster-init":       cmdRosterInit,
	"sign":              cmdSignTransaction,
	"submit":            cmdSubmitTransaction,
	"unlock":            cmdUnlock,
	"version":           cmdVersion,
	"view":              cmdTransactionView,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the multisig ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the release and the source revision this program was built from.
`)
		fl.PrintDefaults()
	}
	asJSON := fl.Bool("json", false, "Print the build information as a JSON object.")
	fl.Parse(args)

	info := quorum.ReadBuildInfo()
	if !*asJSON {
		_, err := fmt.Fprintln(out, info)
		return err
	}
	raw, err := json.MarshalIndent(info, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(out, string(raw))
	return err
}
