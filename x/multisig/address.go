package multisig

import (
	"github.com/iov-one/quorum"
)

// RegistrySeed is the seed the registry address is derived from. The same
// address is the authority the program signs nested calls with.
var RegistrySeed = []byte("you-pass-butter")

// DeriveRegistry returns the registry address of given program and the bump
// seed required to sign as that address.
func DeriveRegistry(d quorum.AddressDeriver, programID quorum.Identity) (quorum.Identity, uint8, error) {
	return d.FindProgramAddress([][]byte{RegistrySeed}, programID)
}

// RegistryAddress is DeriveRegistry for clients.
func RegistryAddress(programID quorum.Identity) (quorum.Identity, error) {
	addr, _, err := DeriveRegistry(quorum.Deriver, programID)
	return addr, err
}

func registrySeeds(bump uint8) [][][]byte {
	return [][][]byte{{RegistrySeed, {bump}}}
}
