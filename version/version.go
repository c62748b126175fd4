package version

import "fmt"

// set via ldflags by goreleaser
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var FullVersion = fmt.Sprintf("%s Build %s Commit %s", Version, BuildDate, GitCommit)
