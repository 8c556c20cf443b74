// Package version implements semantic version bumping for releases.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Bump is the kind of version increment to perform
type Bump int

const (
	// BumpPatch increments the patch component (x.y.Z -> x.y.Z+1)
	BumpPatch Bump = iota
	// BumpMinor increments the minor component (x.Y.z -> x.Y+1.0)
	BumpMinor
	// BumpMajor increments the major component (X.y.z -> X+1.0.0)
	BumpMajor
	// BumpExact sets an explicit version
	BumpExact
)

func (b Bump) String() string {
	switch b {
	case BumpMajor:
		return "major"
	case BumpMinor:
		return "minor"
	case BumpExact:
		return "exact"
	default:
		return "patch"
	}
}

// ParseBump parses a bump name ("major", "minor", "patch")
func ParseBump(s string) (Bump, error) {
	switch s {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	default:
		return BumpPatch, fmt.Errorf("unknown bump type %q (want major, minor, or patch)", s)
	}
}

// Bumper computes the next version from a current one.
// Increments clear any prerelease and build metadata.
type Bumper struct {
	current *semver.Version
}

// NewBumper creates a bumper from a version string. A leading "v" is accepted.
func NewBumper(current string) (*Bumper, error) {
	v, err := semver.NewVersion(current)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", current, err)
	}
	return &Bumper{current: v}, nil
}

// FromVersion creates a bumper from an already-parsed version
func FromVersion(v *semver.Version) *Bumper {
	return &Bumper{current: v}
}

// Current returns the version the bumper starts from
func (b *Bumper) Current() *semver.Version {
	return b.current
}

// Next computes the bumped version. For BumpExact use NextExact.
func (b *Bumper) Next(bump Bump) (*semver.Version, error) {
	switch bump {
	case BumpMajor:
		next := b.current.IncMajor()
		return &next, nil
	case BumpMinor:
		next := b.current.IncMinor()
		return &next, nil
	case BumpPatch:
		next := b.current.IncPatch()
		return &next, nil
	case BumpExact:
		return nil, fmt.Errorf("exact bump requires an explicit version")
	default:
		return nil, fmt.Errorf("unknown bump type %d", bump)
	}
}

// NextExact validates that an explicit version is a strict progression from
// the current version and returns it.
func (b *Bumper) NextExact(target string) (*semver.Version, error) {
	v, err := semver.NewVersion(target)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", target, err)
	}
	if !v.GreaterThan(b.current) {
		return nil, fmt.Errorf("version %s is not greater than current version %s", v, b.current)
	}
	return v, nil
}
