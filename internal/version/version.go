package version

import (
	"runtime"
	"time"
)

// Set through -ldflags "-X github.com/MrSnakeDoc/bindery/internal/version.Version=..." at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = time.Now().Format(time.RFC3339)
	GoVersion = runtime.Version()
)
