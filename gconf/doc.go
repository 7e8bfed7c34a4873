/*
Package gconf implements a configuration store intended to be used as a
per-package, in-database configuration.

Configuration is loaded from the "conf" section of a genesis file, validated
and stored under a key derived from the package name. Programs load it back
on every call, so a ledger started from the same genesis always runs its
programs with the same settings.
*/
package gconf
