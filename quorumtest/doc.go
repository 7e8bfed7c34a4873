/*
Package quorumtest provides helpers for testing programs and the ledger:
keys and identities, account fixtures and a Host that records nested
invocations instead of executing them.
*/
package quorumtest
