package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/ledger"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and execute it on the
home ledger. Either all instructions of the transaction are applied or none.

Make sure to collect enough signatures before submitting the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		logLevelFl = fl.String("log", env("MSIGCLI_LOG_LEVEL", "info"),
			"Log level written to stderr: debug, info, error or none.")
	)
	fl.Parse(args)

	logger, err := newLogger(*logLevelFl)
	if err != nil {
		flagDie("invalid log level: %s", err)
	}

	tx, _, err := ledger.ReadTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	ctx := quorum.WithLogger(context.Background(), logger)
	err = withHome(*homeFl, func(h *homeDB) error {
		l, err := h.Ledger()
		if err != nil {
			return err
		}
		if err := l.Submit(ctx, tx); err != nil {
			return fmt.Errorf("cannot submit transaction: %s", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "committed %d instructions\n", len(tx.Instructions))
	return err
}
