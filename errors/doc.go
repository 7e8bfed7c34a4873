/*
Package errors implements the error kinds shared by the engine, its programs
and the host ledger.

Every failure a caller may want to react to is a registered root error. Create
instances by wrapping a root error at the point of failure:

	return errors.Wrapf(errors.ErrAddressMismatch, "registry %s", key)

and test for a kind with the Is method of the root error:

	if errors.ErrMissingSignature.Is(err) { ... }

Wrapping records a stack trace once, at the innermost wrap. Use %+v to print it.
Codes are stable and may be shown to clients; use Code to extract the code of
the root cause.
*/
package errors
