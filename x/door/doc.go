/*
Package door implements a door that only its key holder can open or close,
and only while the access configuration is unlocked.

The access configuration lives at an address derived from the program
identity. Its admin locks and unlocks it. The admin is either a single key
or a roster account of the door program, in which case enough roster
members must sign every lock and unlock.
*/
package door
