package main

import (
	"os"
	"path/filepath"
)

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultHome() string {
	return env("MSIGCLI_HOME", filepath.Join(os.Getenv("HOME"), ".msigcli"))
}

func defaultKeyPath() string {
	return env("MSIGCLI_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".msigcli.priv.key"))
}
