/*
Package counter implements a program keeping a number that only its
authority can change. It is the simplest program the multisig engine can be
pointed at, and the tests use it as one.
*/
package counter
