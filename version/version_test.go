package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestRevision(t *testing.T) {
	for _, c := range []struct {
		settings []debug.BuildSetting
		expected string
	}{
		{nil, ""},
		{[]debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}}, "0123456"},
		{[]debug.BuildSetting{{Key: "vcs.modified", Value: "true"}, {Key: "vcs.revision", Value: "0123456789abcdef"}}, "0123456-dirty"},
		{[]debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}, {Key: "vcs.modified", Value: "false"}}, "abc"},
	} {
		if got := revision(c.settings); got != c.expected {
			t.Fatalf("got %q, expected %q", got, c.expected)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe("chiptrack-compile"); !strings.HasPrefix(got, "chiptrack-compile "+VersionOrHash+" (go") {
		t.Fatalf("unexpected description %q", got)
	}
}
