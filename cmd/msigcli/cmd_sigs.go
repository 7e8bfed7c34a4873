package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum/ledger"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

The chain ID and the next sequence of the signer are read from the home ledger
unless provided.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use MSIGCLI_PRIV_KEY environment variable to set it.")
		chainIDFl = fl.String("chain", "", "Chain ID the signature is made for.")
		seqFl     = fl.Int64("seq", -1, "Sequence of the signature. Negative value reads the sequence from the home ledger.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}

	tx, _, err := ledger.ReadTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	chainID, seq := *chainIDFl, uint64(*seqFl)
	if chainID == "" || *seqFl < 0 {
		err := withHome(*homeFl, func(h *homeDB) error {
			if chainID == "" {
				conf, err := ledger.LoadConfig(h)
				if err != nil {
					return fmt.Errorf("cannot load chain ID: %s", err)
				}
				chainID = conf.ChainID
			}
			if *seqFl < 0 {
				n, err := ledger.NewSequenceBucket(h).Get(keyIdentity(key))
				if err != nil {
					return fmt.Errorf("cannot get the next sequence number: %s", err)
				}
				seq = n
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	sig, err := ledger.SignTx(key, tx, chainID, seq)
	if err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signatures = append(tx.Signatures, sig)

	_, err = ledger.WriteTx(output, tx)
	return err
}
