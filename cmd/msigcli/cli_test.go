package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/stretchr/testify/require"
)

type command func(input io.Reader, output io.Writer, args []string) error

func run(t testing.TB, cmd command, input []byte, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	if err := cmd(bytes.NewReader(input), &out, args); err != nil {
		t.Fatalf("command failed: %s", err)
	}
	return out.Bytes()
}

// cli is a home ledger together with the keys used in tests.
type cli struct {
	home     string
	dir      string
	programs Programs
}

func newCLI(t *testing.T, genesis map[string]interface{}) *cli {
	t.Helper()
	dir := t.TempDir()
	c := &cli{
		home: filepath.Join(dir, "home"),
		dir:  dir,
		programs: Programs{
			Multisig: quorumtest.RandomIdentity(t),
			Door:     quorumtest.RandomIdentity(t),
			Counter:  quorumtest.RandomIdentity(t),
		},
	}
	genesis["programs"] = c.programs
	raw, err := json.Marshal(genesis)
	require.NoError(t, err)
	run(t, cmdInit, raw, "-home", c.home)
	return c
}

// keygen creates a key file and returns its path and identity.
func (c *cli) keygen(t *testing.T, name string) (string, quorum.Identity) {
	t.Helper()
	path := filepath.Join(c.dir, name+".key")
	out := run(t, cmdKeygen, nil, "-key", path)
	id, err := quorum.ParseIdentity(strings.TrimSpace(string(out)))
	require.NoError(t, err)
	addr := run(t, cmdKeyaddr, nil, "-key", path)
	require.Equal(t, string(out), string(addr))
	return path, id
}

// submit signs the transaction with every key and submits it.
func (c *cli) submit(t *testing.T, tx []byte, keys ...string) error {
	t.Helper()
	for _, k := range keys {
		tx = run(t, cmdSignTransaction, tx, "-home", c.home, "-key", k)
	}
	var out bytes.Buffer
	return cmdSubmitTransaction(bytes.NewReader(tx), &out, []string{"-home", c.home, "-log", "none"})
}

func (c *cli) mustSubmit(t *testing.T, tx []byte, keys ...string) {
	t.Helper()
	require.NoError(t, c.submit(t, tx, keys...))
}

func (c *cli) state(t *testing.T, addr quorum.Identity, dst interface{}) {
	t.Helper()
	raw := run(t, cmdAccount, nil, "-home", c.home, "-address", addr.String())
	var view struct {
		State json.RawMessage `json:"state"`
	}
	require.NoError(t, json.Unmarshal(raw, &view))
	require.NoError(t, json.Unmarshal(view.State, dst))
}

func fundedGenesis(ids ...quorum.Identity) map[string]interface{} {
	type account struct {
		Address  quorum.Identity `json:"address"`
		Lamports uint64          `json:"lamports"`
	}
	var accounts []account
	for _, id := range ids {
		accounts = append(accounts, account{Address: id, Lamports: 10000000000})
	}
	return map[string]interface{}{
		"ledger": map[string]interface{}{
			"chain_id": "local-chain",
			"accounts": accounts,
		},
	}
}

func TestProposalLifecycle(t *testing.T) {
	keys := &cli{dir: t.TempDir()}
	payerKey, payer := keys.keygen(t, "payer")
	s1Key, s1 := keys.keygen(t, "s1")
	s2Key, s2 := keys.keygen(t, "s2")
	_, s3 := keys.keygen(t, "s3")
	counterKey, counterID := keys.keygen(t, "counter")
	proposalKey, proposalID := keys.keygen(t, "proposal")

	c := newCLI(t, fundedGenesis(payer))
	home := []string{"-home", c.home}

	c.mustSubmit(t, run(t, cmdAllocateRegistry, nil, append(home, "-key", payerKey)...), payerKey)
	c.mustSubmit(t, run(t, cmdInitRegistry, nil, append(home,
		"-threshold", "2",
		"-signers", strings.Join([]string{s1.String(), s2.String(), s3.String()}, ","))...), payerKey)

	registry, err := multisig.RegistryAddress(c.programs.Multisig)
	require.NoError(t, err)
	var r multisig.Registry
	c.state(t, registry, &r)
	require.True(t, r.Initialized)
	require.EqualValues(t, 2, r.Threshold)
	require.Equal(t, []quorum.Identity{s1, s2, s3}, r.Roster())

	c.mustSubmit(t, run(t, cmdCounterInit, nil, append(home,
		"-key", payerKey, "-counter", counterID.String())...), payerKey, counterKey)
	c.mustSubmit(t, run(t, cmdCreateProposal, nil, append(home,
		"-key", payerKey, "-proposal", proposalID.String(), "-counter", counterID.String())...), payerKey, proposalKey)

	execute := func() []byte {
		return run(t, cmdExecute, nil, append(home, "-proposal", proposalID.String())...)
	}

	c.mustSubmit(t, run(t, cmdApprove, nil, append(home, "-key", s1Key, "-proposal", proposalID.String())...), s1Key)
	err = c.submit(t, execute(), payerKey)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required signature")

	c.mustSubmit(t, run(t, cmdApprove, nil, append(home, "-key", s2Key, "-proposal", proposalID.String())...), s2Key)
	c.mustSubmit(t, execute(), payerKey)

	var counter struct {
		Authority quorum.Identity
		Count     uint64
	}
	c.state(t, counterID, &counter)
	require.Equal(t, registry, counter.Authority)
	require.EqualValues(t, 1, counter.Count)

	var p multisig.Proposal
	c.state(t, proposalID, &p)
	require.True(t, p.Executed)
	require.Equal(t, 2, p.Approvals.Count(r.Size))

	err = c.submit(t, execute(), payerKey)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already executed")
}

func TestGenesisRegistry(t *testing.T) {
	keys := &cli{dir: t.TempDir()}
	_, payer := keys.keygen(t, "payer")
	_, s1 := keys.keygen(t, "s1")
	_, s2 := keys.keygen(t, "s2")

	genesis := fundedGenesis(payer)
	genesis["multisig"] = map[string]interface{}{
		"registry": map[string]interface{}{
			"threshold": 1,
			"signers":   []quorum.Identity{s1, s2},
		},
	}
	c := newCLI(t, genesis)

	out := run(t, cmdDerive, nil, "-home", c.home)
	registry, err := multisig.RegistryAddress(c.programs.Multisig)
	require.NoError(t, err)
	require.Contains(t, string(out), "registry\t"+registry.String())

	var r multisig.Registry
	c.state(t, registry, &r)
	require.True(t, r.Initialized)
	require.EqualValues(t, 1, r.Threshold)
	require.Equal(t, []quorum.Identity{s1, s2}, r.Roster())
}

func TestInitTwice(t *testing.T) {
	keys := &cli{dir: t.TempDir()}
	_, payer := keys.keygen(t, "payer")
	c := newCLI(t, fundedGenesis(payer))

	genesis := fundedGenesis(payer)
	genesis["programs"] = c.programs
	raw, err := json.Marshal(genesis)
	require.NoError(t, err)
	var out bytes.Buffer
	err = cmdInit(bytes.NewReader(raw), &out, []string{"-home", c.home})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already initialized")
}

func TestDoorWithRosterAdmin(t *testing.T) {
	keys := &cli{dir: t.TempDir()}
	payerKey, payer := keys.keygen(t, "payer")
	s1Key, s1 := keys.keygen(t, "s1")
	s2Key, s2 := keys.keygen(t, "s2")
	rosterKey, rosterID := keys.keygen(t, "roster")
	doorKey, doorID := keys.keygen(t, "door")

	c := newCLI(t, fundedGenesis(payer))
	home := []string{"-home", c.home, "-key", payerKey}

	c.mustSubmit(t, run(t, cmdRosterInit, nil, append(home,
		"-roster", rosterID.String(),
		"-threshold", "2",
		"-signers", s1.String()+","+s2.String())...), payerKey, rosterKey)
	c.mustSubmit(t, run(t, cmdAccessInit, nil, append(home, "-admin", rosterID.String())...), payerKey)
	c.mustSubmit(t, run(t, cmdDoorInit, nil, append(home, "-door", doorID.String())...), payerKey, doorKey)

	open := run(t, cmdOpen, nil, append(home, "-door", doorID.String())...)
	err := c.submit(t, open, payerKey)
	require.Error(t, err)
	require.Contains(t, err.Error(), "access is locked")

	unlock := func(signers ...quorum.Identity) []byte {
		var ids []string
		for _, s := range signers {
			ids = append(ids, s.String())
		}
		return run(t, cmdUnlock, nil, append(home, "-admin", rosterID.String(), "-signers", strings.Join(ids, ","))...)
	}
	err = c.submit(t, unlock(s1), s1Key)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing required signature")

	c.mustSubmit(t, unlock(s1, s2), s1Key, s2Key)
	c.mustSubmit(t, run(t, cmdOpen, nil, append(home, "-door", doorID.String())...), payerKey)

	var d struct{ Opened bool }
	c.state(t, doorID, &d)
	require.True(t, d.Opened)

	c.mustSubmit(t, run(t, cmdClose, nil, append(home, "-door", doorID.String())...), payerKey)
	c.state(t, doorID, &d)
	require.False(t, d.Opened)
}

func TestAsBatch(t *testing.T) {
	keys := &cli{dir: t.TempDir()}
	payerKey, payer := keys.keygen(t, "payer")
	_, s1 := keys.keygen(t, "s1")
	c := newCLI(t, fundedGenesis(payer))
	home := []string{"-home", c.home}

	var txs []byte
	txs = append(txs, run(t, cmdAllocateRegistry, nil, append(home, "-key", payerKey)...)...)
	txs = append(txs, run(t, cmdInitRegistry, nil, append(home, "-threshold", "1", "-signers", s1.String())...)...)
	batch := run(t, cmdAsBatch, txs)

	view := run(t, cmdTransactionView, batch)
	var v struct {
		Instructions []struct {
			Program quorum.Identity `json:"program"`
		} `json:"instructions"`
	}
	require.NoError(t, json.Unmarshal(view, &v))
	require.Len(t, v.Instructions, 2)
	for _, in := range v.Instructions {
		require.Equal(t, c.programs.Multisig, in.Program)
	}

	c.mustSubmit(t, batch, payerKey)

	registry, err := multisig.RegistryAddress(c.programs.Multisig)
	require.NoError(t, err)
	var r multisig.Registry
	c.state(t, registry, &r)
	require.True(t, r.Initialized)
}

func TestVersion(t *testing.T) {
	plain := run(t, cmdVersion, nil)
	require.Equal(t, quorum.Version()+"\n", string(plain))

	var info quorum.BuildInfo
	require.NoError(t, json.Unmarshal(run(t, cmdVersion, nil, "-json"), &info))
	require.Equal(t, quorum.ReadBuildInfo(), info)
}
