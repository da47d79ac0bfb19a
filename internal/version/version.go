// Package version holds build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata with the Go runtime it was built with.
func String() string {
	return fmt.Sprintf("hammersynth version %s\ncommit: %s\nbuilt: %s\nGo version: %s\nOS/Arch: %s/%s\n",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
