/*
Package multisig implements an M-of-N approval engine as a ledger program.

A registry, kept at an address derived from the program identity, holds a
roster of up to eleven signers and the number of approvals required. Anyone
can create a proposal that names a target program, two target accounts and a
single byte of instruction data. Roster members approve the proposal one by
one, and once the threshold is reached anyone can execute it. The program
then calls the target, signing as the registry address.
*/
package multisig
