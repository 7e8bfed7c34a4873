package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iov-one/quorum"
)

// flIdentity returns a value that is being initialized with given default
// value and optionally overwritten by a command line argument if provided.
// This function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flIdentity(fl *flag.FlagSet, name, defaultVal, usage string) *quorum.Identity {
	var id identityFlag
	if defaultVal != "" {
		if err := id.Set(defaultVal); err != nil {
			flagDie("Cannot parse %q identity flag value. %s", name, err)
		}
	}
	fl.Var(&id, name, usage)
	return (*quorum.Identity)(&id)
}

type identityFlag quorum.Identity

func (i identityFlag) String() string {
	if quorum.Identity(i).IsZero() {
		return ""
	}
	return quorum.Identity(i).String()
}

func (i *identityFlag) Set(raw string) error {
	id, err := quorum.ParseIdentity(raw)
	if err != nil {
		return err
	}
	*i = identityFlag(id)
	return nil
}

// flIdentities returns a comma separated list of identities. It follows the
// same convention as flIdentity.
func flIdentities(fl *flag.FlagSet, name, defaultVal, usage string) *[]quorum.Identity {
	var ids identitiesFlag
	if defaultVal != "" {
		if err := ids.Set(defaultVal); err != nil {
			flagDie("Cannot parse %q identity list flag value. %s", name, err)
		}
	}
	fl.Var(&ids, name, usage)
	return (*[]quorum.Identity)(&ids)
}

type identitiesFlag []quorum.Identity

func (ids identitiesFlag) String() string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	return strings.Join(s, ",")
}

func (ids *identitiesFlag) Set(raw string) error {
	var res []quorum.Identity
	for _, chunk := range strings.Split(raw, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		id, err := quorum.ParseIdentity(chunk)
		if err != nil {
			return fmt.Errorf("%q: %s", chunk, err)
		}
		res = append(res, id)
	}
	*ids = res
	return nil
}

// flagDie terminates the program when a flag is invalid.
func flagDie(description string, args ...interface{}) {
	if !strings.HasSuffix(description, "\n") {
		description += "\n"
	}
	fmt.Fprintf(os.Stderr, description, args...)
	os.Exit(2)
}

// flMeta returns an account meta flag. The value is an identity optionally
// followed by a colon and the flags of the account: "s" for a signer and
// "w" for a writable account, for example "7Ke...3xA:sw".
func flMeta(fl *flag.FlagSet, name, usage string) *quorum.AccountMeta {
	var m metaFlag
	fl.Var(&m, name, usage)
	return (*quorum.AccountMeta)(&m)
}

type metaFlag quorum.AccountMeta

func (m metaFlag) String() string {
	if m.PublicKey.IsZero() {
		return ""
	}
	s := m.PublicKey.String()
	if !m.IsSigner && !m.IsWritable {
		return s
	}
	s += ":"
	if m.IsSigner {
		s += "s"
	}
	if m.IsWritable {
		s += "w"
	}
	return s
}

func (m *metaFlag) Set(raw string) error {
	chunks := strings.SplitN(raw, ":", 2)
	id, err := quorum.ParseIdentity(chunks[0])
	if err != nil {
		return err
	}
	res := metaFlag{PublicKey: id}
	if len(chunks) == 2 {
		for _, c := range chunks[1] {
			switch c {
			case 's':
				res.IsSigner = true
			case 'w':
				res.IsWritable = true
			default:
				return fmt.Errorf("unknown account flag %q", c)
			}
		}
	}
	*m = res
	return nil
}
