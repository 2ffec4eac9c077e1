// Package version reports build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Name is the program name printed in front of the version.
const Name = "recite"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies recite to the scoring service.
func UserAgent() string {
	return Name + "/" + Version
}

func String() string {
	return fmt.Sprintf("%s %s (commit=%s, date=%s, go=%s)", Name, Version, Commit, Date, runtime.Version())
}
