package quorum

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Release numbers of the ledger and the programs built with it. Account
// layouts of the programs change only together with Maj.
const (
	Maj = 0
	Min = 1
	Fix = 0
)

// Suffix marks a build that is not a tagged release.
const Suffix = "-dev"

// GitCommit can be set at link time:
//
//	go build -ldflags "-X github.com/iov-one/quorum.GitCommit=$(git rev-parse --short HEAD)"
//
// When empty, the revision stamped by the Go toolchain is used.
var GitCommit = ""

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
	GoVersion string `json:"go_version"`
}

// ReadBuildInfo returns the release and the source revision of this binary.
func ReadBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   fmt.Sprintf("v%d.%d.%d%s", Maj, Min, Fix, Suffix),
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
	}
	if info.GitCommit != "" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = shortRevision(s.Value)
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}

// String returns the release followed by the revision, if known.
func (b BuildInfo) String() string {
	v := b.Version
	if b.GitCommit != "" {
		v += " " + b.GitCommit
		if b.Dirty {
			v += "+dirty"
		}
	}
	return v
}

// Version returns the release string of this binary.
func Version() string {
	return ReadBuildInfo().String()
}
