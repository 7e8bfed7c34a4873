/*
Package quorum defines the common types shared by the host ledger and the
programs that run on it: identities, accounts, instructions and the Program
and Host interfaces, as well as genesis options and the context helpers used
to carry a logger between the ledger and the programs.

A program is executed by the ledger with the accounts an instruction names.
Programs never load or store accounts themselves. They change the account
values they are given and the ledger decides, once the program returns,
whether the change was allowed and should be persisted.

A program may call another program through the Host it was given. A nested
call may only keep or reduce the privileges the caller holds, except for
signatures of addresses derived from the caller's own identity, which the
caller may produce by supplying the seeds of the derivation.
*/
package quorum
