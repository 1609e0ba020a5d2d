package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set the version at build time with something like:
// go build -ldflags "-X github.com/chiptrack/chiptrack/version.Version=$(git describe --dirty)"

var Version string

// Hash is the short vcs revision the binary was built from, with a -dirty
// suffix if the working tree had changes, or empty if unknown.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return revision(info.Settings)
}()

func revision(settings []debug.BuildSetting) string {
	var rev string
	modified := false
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			rev = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && modified {
		rev += "-dirty"
	}
	return rev
}

var VersionOrHash = func() string {
	if Version != "" {
		return Version
	}
	if Hash != "" {
		return Hash
	}
	return "(devel)"
}()

// Describe returns the program name, version and the Go version used to
// build it, for the -v flag of the command line tools.
func Describe(program string) string {
	return fmt.Sprintf("%v %v (%v)", program, VersionOrHash, runtime.Version())
}
