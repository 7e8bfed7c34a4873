package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum/ledger"
)

func cmdAsBatch(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read any number of transactions from the stdin and create a single transaction
containing all their instructions, in order. Signatures of the original
transactions are dropped.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	var batch ledger.Tx
	for {
		tx, _, err := ledger.ReadTx(input)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("cannot read transaction: %s", err)
		}
		batch.Instructions = append(batch.Instructions, tx.Instructions...)
	}
	if len(batch.Instructions) == 0 {
		return fmt.Errorf("no instructions")
	}
	_, err := ledger.WriteTx(output, &batch)
	return err
}
