package door

import (
	"context"

	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/multisig"
)

// AccessSeed is the seed the access address is derived from.
var AccessSeed = []byte("You pass butter")

// DeriveAccess returns the access address of given program and the bump
// seed required to sign as that address.
func DeriveAccess(d quorum.AddressDeriver, programID quorum.Identity) (quorum.Identity, uint8, error) {
	return d.FindProgramAddress([][]byte{AccessSeed}, programID)
}

// AccessAddress is DeriveAccess for clients.
func AccessAddress(programID quorum.Identity) (quorum.Identity, error) {
	addr, _, err := DeriveAccess(quorum.Deriver, programID)
	return addr, err
}

func requireAccessAddress(host quorum.AddressDeriver, programID quorum.Identity, acc *quorum.AccountInfo) (uint8, error) {
	addr, bump, err := DeriveAccess(host, programID)
	if err != nil {
		return 0, err
	}
	if !acc.Key.Equals(addr) {
		return 0, errors.Wrapf(errors.ErrAddressMismatch, "access %s, want %s", acc.Key, addr)
	}
	return bump, nil
}

// initializeDoor accounts: [door (w)]
func initializeDoor(programID quorum.Identity, accounts []*quorum.AccountInfo, key quorum.Identity) error {
	acc, err := quorum.NewAccountIter(accounts).Next()
	if err != nil {
		return err
	}
	if err := quorum.RequireOwner(acc, programID); err != nil {
		return err
	}
	var d Door
	if err := d.Unmarshal(acc.Data); err != nil {
		return err
	}
	if d.Initialized {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "door %s", acc.Key)
	}
	return writeEntity(&Door{Key: key, Initialized: true}, acc.Data)
}

// initializeAccess accounts: [access (w)]
func initializeAccess(host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, admin quorum.Identity) error {
	acc, err := quorum.NewAccountIter(accounts).Next()
	if err != nil {
		return err
	}
	if _, err := requireAccessAddress(host, programID, acc); err != nil {
		return err
	}
	if err := quorum.RequireOwner(acc, programID); err != nil {
		return err
	}
	var a Access
	if err := a.Unmarshal(acc.Data); err != nil {
		return err
	}
	if a.Initialized {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "access %s", acc.Key)
	}
	return writeEntity(&Access{Admin: admin, Locked: true, Initialized: true}, acc.Data)
}

// setLocked accounts: [access (w), admin, roster signers...]
func setLocked(host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, locked bool) error {
	it := quorum.NewAccountIter(accounts)
	acc, err := it.Next()
	if err != nil {
		return err
	}
	admin, err := it.Next()
	if err != nil {
		return err
	}
	if _, err := requireAccessAddress(host, programID, acc); err != nil {
		return err
	}
	if err := quorum.RequireOwner(acc, programID); err != nil {
		return err
	}
	var a Access
	if err := a.Unmarshal(acc.Data); err != nil {
		return err
	}
	if !a.Initialized {
		return errors.Wrapf(errors.ErrUninitialized, "access %s", acc.Key)
	}
	if !admin.Key.Equals(a.Admin) {
		return errors.Wrapf(errors.ErrUnauthorized, "admin is %s", a.Admin)
	}
	if err := authorize(programID, admin, it.Rest()); err != nil {
		return err
	}
	if a.Locked == locked {
		return errors.Wrapf(errors.ErrState, "access is already %s", lockState(locked))
	}
	a.Locked = locked
	return writeEntity(&a, acc.Data)
}

func lockState(locked bool) string {
	if locked {
		return "locked"
	}
	return "unlocked"
}

// authorize checks that the admin approved the call. An admin that is a
// roster of this program approves when enough of the signers hold a seat.
// Any other admin must sign.
func authorize(programID quorum.Identity, admin *quorum.AccountInfo, signers []*quorum.AccountInfo) error {
	if !IsRoster(programID, admin) {
		return quorum.RequireSigner(admin)
	}
	var r multisig.Registry
	if err := r.Unmarshal(admin.Data); err != nil {
		return errors.Wrap(err, "roster")
	}
	if !r.Initialized {
		return errors.Wrapf(errors.ErrUninitialized, "roster %s", admin.Key)
	}
	var seats multisig.Seats
	if _, err := r.Mark(&seats, signers...); err != nil {
		return err
	}
	if !r.Reached(&seats) {
		return errors.Wrapf(errors.ErrMissingSignature, "%d of %d roster signatures",
			seats.Count(r.Size), r.Threshold)
	}
	return nil
}

// IsRoster returns true if the account is a roster of given door program.
func IsRoster(programID quorum.Identity, acc *quorum.AccountInfo) bool {
	return acc.Owner.Equals(programID) && len(acc.Data) == multisig.RegistryLen
}

// setOpened accounts: [door (w), access, key holder (s)]
func setOpened(host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, opened bool) error {
	it := quorum.NewAccountIter(accounts)
	doorAcc, err := it.Next()
	if err != nil {
		return err
	}
	accessAcc, err := it.Next()
	if err != nil {
		return err
	}
	holder, err := it.Next()
	if err != nil {
		return err
	}
	if err := quorum.RequireOwner(doorAcc, programID); err != nil {
		return errors.Wrap(err, "door")
	}
	if err := quorum.RequireOwner(accessAcc, programID); err != nil {
		return errors.Wrap(err, "access")
	}
	if _, err := requireAccessAddress(host, programID, accessAcc); err != nil {
		return err
	}

	var a Access
	if err := a.Unmarshal(accessAcc.Data); err != nil {
		return err
	}
	if !a.Initialized {
		return errors.Wrapf(errors.ErrUninitialized, "access %s", accessAcc.Key)
	}
	if a.Locked {
		return errors.Wrap(errors.ErrState, "access is locked")
	}

	var d Door
	if err := d.Unmarshal(doorAcc.Data); err != nil {
		return err
	}
	if !d.Initialized {
		return errors.Wrapf(errors.ErrUninitialized, "door %s", doorAcc.Key)
	}
	if !holder.Key.Equals(d.Key) {
		return errors.Wrapf(errors.ErrUnauthorized, "door key is %s", d.Key)
	}
	if err := quorum.RequireSigner(holder); err != nil {
		return err
	}
	if d.Opened == opened {
		if opened {
			return errors.Wrap(errors.ErrState, "door is already open")
		}
		return errors.Wrap(errors.ErrState, "door is already closed")
	}
	d.Opened = opened
	return writeEntity(&d, doorAcc.Data)
}

// allocateAccess accounts: [system program, access (w), payer (s, w)]
func allocateAccess(ctx context.Context, host quorum.Host, programID quorum.Identity, accounts []*quorum.AccountInfo, conf *Config) error {
	it := quorum.NewAccountIter(accounts)
	sys, err := it.Next()
	if err != nil {
		return err
	}
	acc, err := it.Next()
	if err != nil {
		return err
	}
	payer, err := it.Next()
	if err != nil {
		return err
	}
	if !sys.Key.Equals(quorum.SystemProgramID) {
		return errors.Wrapf(errors.ErrAddressMismatch, "system program: %s", sys.Key)
	}
	bump, err := requireAccessAddress(host, programID, acc)
	if err != nil {
		return err
	}
	create, err := quorum.NewInstruction(system.NewCreateAccountInstruction(
		conf.RentLamports, conf.AccountSize, programID, payer.Key, acc.Key).Build())
	if err != nil {
		return err
	}
	return host.InvokeSigned(ctx, create, accounts, [][][]byte{{AccessSeed, {bump}}})
}

// initializeRoster accounts: [roster (w), signer 1, ..., signer N]
func initializeRoster(programID quorum.Identity, accounts []*quorum.AccountInfo, threshold uint8) error {
	it := quorum.NewAccountIter(accounts)
	acc, err := it.Next()
	if err != nil {
		return err
	}
	if !IsRoster(programID, acc) {
		return errors.Wrapf(errors.ErrIncorrectOwner, "roster %s must be a %d byte account of the program", acc.Key, multisig.RegistryLen)
	}
	var r multisig.Registry
	if err := r.Unmarshal(acc.Data); err != nil {
		return err
	}
	if r.Initialized {
		return errors.Wrapf(errors.ErrAlreadyInitialized, "roster %s", acc.Key)
	}
	rest := it.Rest()
	signers := make([]quorum.Identity, len(rest))
	for i, s := range rest {
		signers[i] = s.Key
	}
	if err := multisig.ValidateRoster(threshold, signers, true); err != nil {
		return err
	}
	return multisig.NewRegistry(threshold, signers).Store(acc.Data)
}
