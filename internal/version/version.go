// Package version exposes the build identity stamped in by the linker.
package version

import (
	"runtime"
	"time"
)

// Set with -ldflags "-X bookmarkd/internal/version.Version=v0.1.0 ...".
var (
	Version   = "dev"                           // release tag, "dev" outside CI
	Commit    = "none"                          // short git sha
	BuildDate = time.Now().Format(time.RFC3339) // falls back to process start
	GoVersion = runtime.Version()
)
