/*
Package ledger implements the host runtime programs are executed by.

A Ledger keeps accounts in a key-value store and executes signed
transactions. Each transaction is a list of instructions run in order inside
a single cache wrap of the store: either every change the transaction makes
is committed, or none is.

Programs are executed in frames. Before a program runs the ledger takes a
snapshot of every account the frame can see and, once the program returns,
compares the accounts with the snapshot. A program may change data and debit
lamports only of accounts it owns, may credit only writable accounts and can
never change an account it was given read only. The same check is made
before a program calls another program, after which the snapshot is
refreshed, so every change is attributed to the program that made it.

The system program is always deployed at the all zero identity. It creates
accounts and moves lamports between system owned accounts.
*/
package ledger
