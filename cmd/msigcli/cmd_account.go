package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/x/counter"
	"github.com/iov-one/quorum/x/door"
	"github.com/iov-one/quorum/x/multisig"
)

func cmdAccount(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Display the state of an account kept in the home ledger. Data of accounts
owned by a known program is decoded.
`)
		fl.PrintDefaults()
	}
	var (
		homeFl = fl.String("home", defaultHome(),
			"Home directory of the ledger. You can use MSIGCLI_HOME environment variable to set it.")
		addressFl = flIdentity(fl, "address", "", "Identity of the account. Required.")
	)
	fl.Parse(args)

	if addressFl.IsZero() {
		flagDie("address is required")
	}

	var view accountStateView
	err := withHome(*homeFl, func(h *homeDB) error {
		l, err := h.Ledger()
		if err != nil {
			return err
		}
		acc, err := l.Account(*addressFl)
		if err != nil {
			return err
		}
		view = accountStateView{
			Address:    *addressFl,
			Owner:      acc.Owner,
			Lamports:   acc.Lamports,
			Executable: acc.Executable,
			Size:       len(acc.Data),
		}
		view.State, err = decodeState(h.programs, *addressFl, acc)
		return err
	})
	if err != nil {
		return err
	}

	pretty, err := json.MarshalIndent(view, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

type accountStateView struct {
	Address    quorum.Identity `json:"address"`
	Owner      quorum.Identity `json:"owner"`
	Lamports   uint64          `json:"lamports"`
	Executable bool            `json:"executable,omitempty"`
	Size       int             `json:"size"`
	State      interface{}     `json:"state,omitempty"`
}

// decodeState returns the decoded data of an account owned by one of the
// programs, or nil.
func decodeState(p *Programs, key quorum.Identity, acc *quorum.Account) (interface{}, error) {
	type unmarshaler interface {
		Unmarshal([]byte) error
	}
	var state unmarshaler
	switch {
	case acc.Owner.Equals(p.Multisig):
		registry, err := multisig.RegistryAddress(p.Multisig)
		if err != nil {
			return nil, err
		}
		if key.Equals(registry) {
			state = &multisig.Registry{}
		} else {
			state = &multisig.Proposal{}
		}
	case acc.Owner.Equals(p.Door):
		access, err := door.AccessAddress(p.Door)
		if err != nil {
			return nil, err
		}
		switch {
		case key.Equals(access):
			state = &door.Access{}
		case len(acc.Data) == multisig.RegistryLen:
			state = &multisig.Registry{}
		default:
			state = &door.Door{}
		}
	case acc.Owner.Equals(p.Counter):
		state = &counter.Counter{}
	default:
		return nil, nil
	}
	if err := state.Unmarshal(acc.Data); err != nil {
		return nil, fmt.Errorf("cannot decode account data: %s", err)
	}
	return state, nil
}
