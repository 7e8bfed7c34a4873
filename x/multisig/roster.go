package multisig

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Mark sets the seat of every given account that holds an unmarked seat of
// the roster. Such an account must have signed the call. Accounts without a
// seat, or whose seat is already marked, are ignored.
//
// Mark returns the number of seats it marked. On error seats may be
// partially updated.
func (r *Registry) Mark(seats *Seats, accounts ...*quorum.AccountInfo) (int, error) {
	var marked int
	for _, a := range accounts {
		for i, s := range r.Roster() {
			if seats[i] || !s.Equals(a.Key) {
				continue
			}
			if err := quorum.RequireSigner(a); err != nil {
				return marked, errors.Wrapf(err, "seat %d", i)
			}
			seats[i] = true
			marked++
		}
	}
	return marked, nil
}

// Reached returns true if the marked seats meet the threshold.
func (r *Registry) Reached(seats *Seats) bool {
	return seats.Count(r.Size) >= int(r.Threshold)
}

// ValidateRoster checks the threshold and the signers a registry is
// initialized with. In strict mode the threshold cannot exceed the roster
// size and a signer cannot hold two seats.
func ValidateRoster(threshold uint8, signers []quorum.Identity, strict bool) error {
	if len(signers) < 1 || len(signers) > MaxSigners {
		return errors.Wrapf(errors.ErrInvalidThreshold, "roster size %d not in [1, %d]", len(signers), MaxSigners)
	}
	if threshold < 1 || threshold > MaxSigners {
		return errors.Wrapf(errors.ErrInvalidThreshold, "threshold %d not in [1, %d]", threshold, MaxSigners)
	}
	if !strict {
		return nil
	}
	if int(threshold) > len(signers) {
		return errors.Wrapf(errors.ErrInvalidThreshold, "threshold %d exceeds roster size %d", threshold, len(signers))
	}
	seen := make(map[quorum.Identity]struct{}, len(signers))
	for _, s := range signers {
		if _, ok := seen[s]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "signer %s", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// NewRegistry returns an initialized registry. It does not validate the
// roster.
func NewRegistry(threshold uint8, signers []quorum.Identity) *Registry {
	r := &Registry{
		Threshold:   threshold,
		Size:        uint8(len(signers)),
		Initialized: true,
	}
	copy(r.Signers[:], signers)
	return r
}
