package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Latest returns the highest semantic version among the given tag names.
// Tags that do not parse as versions (with or without a leading "v") are
// ignored. Returns nil when no tag parses.
func Latest(tagNames []string) *semver.Version {
	var latest *semver.Version
	for _, name := range tagNames {
		v, err := semver.NewVersion(name)
		if err != nil {
			continue
		}
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	return latest
}

// TagName formats a version as a release tag ("v1.2.3")
func TagName(v *semver.Version) string {
	return "v" + v.String()
}

// ModuleTagName formats a version as a nested-module release tag
// ("sub/dir/v1.2.3"). An empty dir yields the plain tag.
func ModuleTagName(dir string, v *semver.Version) string {
	if dir == "" || dir == "." {
		return TagName(v)
	}
	return strings.TrimSuffix(dir, "/") + "/" + TagName(v)
}
