// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/gtrends/gtrends-go/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/gtrends/gtrends-go/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/gtrends/gtrends-go/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// SDKName identifies the client library in the User-Agent header.
const SDKName = "gtrends-go-sdk"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	// Set via ldflags: -X github.com/gtrends/gtrends-go/pkg/buildinfo.Version=...
	Version = "1.0.0"

	// Commit is the git commit SHA.
	// Set via ldflags: -X github.com/gtrends/gtrends-go/pkg/buildinfo.Commit=...
	Commit = "none"

	// Date is the build timestamp.
	// Set via ldflags: -X github.com/gtrends/gtrends-go/pkg/buildinfo.Date=...
	Date = "unknown"
)

// UserAgent returns the User-Agent value sent with every request,
// e.g. "gtrends-go-sdk/1.0.0".
func UserAgent() string {
	return SDKName + "/" + Version
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
