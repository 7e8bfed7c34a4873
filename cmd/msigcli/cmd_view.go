package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/ledger"
)

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display transaction summary. This command is helpful when receiving
a binary representation of a transaction. Before signing you should check what
kind of operation are you authorizing.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	tx, _, err := ledger.ReadTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	pretty, err := json.MarshalIndent(newTxView(tx), "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

type txView struct {
	Instructions []instructionView `json:"instructions"`
	Signatures   []signatureView   `json:"signatures"`
}

type instructionView struct {
	Program  quorum.Identity `json:"program"`
	Accounts []accountView   `json:"accounts"`
	Data     string          `json:"data"`
}

type accountView struct {
	Key      quorum.Identity `json:"key"`
	Signer   bool            `json:"signer,omitempty"`
	Writable bool            `json:"writable,omitempty"`
}

type signatureView struct {
	Signer   quorum.Identity `json:"signer"`
	Sequence uint64          `json:"sequence"`
}

func newTxView(tx *ledger.Tx) txView {
	v := txView{
		Instructions: make([]instructionView, len(tx.Instructions)),
		Signatures:   make([]signatureView, len(tx.Signatures)),
	}
	for i, in := range tx.Instructions {
		iv := instructionView{
			Program:  in.Program,
			Accounts: make([]accountView, len(in.Accounts)),
			Data:     hex.EncodeToString(in.Data),
		}
		for j, m := range in.Accounts {
			iv.Accounts[j] = accountView{Key: m.PublicKey, Signer: m.IsSigner, Writable: m.IsWritable}
		}
		v.Instructions[i] = iv
	}
	for i, s := range tx.Signatures {
		v.Signatures[i] = signatureView{Signer: s.Signer, Sequence: s.Sequence}
	}
	return v
}
