// SPDX-License-Identifier: MIT
package build

// Flags holds build-time information injected during compilation, e.g.:
//
//	go build -ldflags "-X audiolize/internal/build.name=audiolize -X audiolize/internal/build.version=0.2.0"
type Flags struct {
	Name    string
	Version string
	Commit  string
}

var (
	name    string
	version string
	commit  string
)

// Get returns the build flags, falling back to development defaults when
// a flag was not injected.
func Get() Flags {
	f := Flags{Name: name, Version: version, Commit: commit}
	if f.Name == "" {
		f.Name = "audiolize"
	}
	if f.Version == "" {
		f.Version = "dev"
	}
	if f.Commit == "" {
		f.Commit = "unknown"
	}
	return f
}
