package entities

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// VersionChange is the largest version jump an update may make.
type VersionChange string

const (
	VersionChangeMajor VersionChange = "major"
	VersionChangeMinor VersionChange = "minor"
	VersionChangePatch VersionChange = "patch"
	VersionChangeNone  VersionChange = "none"
)

// ParseVersionChange accepts the names above, case-insensitively. Empty means major.
func ParseVersionChange(raw string) (VersionChange, error) {
	switch VersionChange(strings.ToLower(strings.TrimSpace(raw))) {
	case "", VersionChangeMajor:
		return VersionChangeMajor, nil
	case VersionChangeMinor:
		return VersionChangeMinor, nil
	case VersionChangePatch:
		return VersionChangePatch, nil
	case VersionChangeNone:
		return VersionChangeNone, nil
	default:
		return "", fmt.Errorf("unknown version change %q (expected major, minor, patch or none)", raw)
	}
}

// ClassifyVersionChange reports how far candidate moves away from current.
// Non-semver versions that differ are classified as major.
func ClassifyVersionChange(current, candidate string) VersionChange {
	c := NormalizeVersion(current)
	n := NormalizeVersion(candidate)
	if !semver.IsValid(c) || !semver.IsValid(n) {
		if current == candidate {
			return VersionChangeNone
		}
		return VersionChangeMajor
	}

	switch {
	case semver.Compare(c, n) == 0:
		return VersionChangeNone
	case semver.Major(c) != semver.Major(n):
		return VersionChangeMajor
	case semver.MajorMinor(c) != semver.MajorMinor(n):
		return VersionChangeMinor
	default:
		return VersionChangePatch
	}
}

// Allows reports whether moving from current to candidate is an upgrade
// within this change policy.
func (v VersionChange) Allows(current, candidate string) bool {
	if !IsNewerVersion(current, candidate) {
		return false
	}
	return v.rank() >= ClassifyVersionChange(current, candidate).rank()
}

func (v VersionChange) rank() int {
	switch v {
	case VersionChangeMajor:
		return 3 //nolint:mnd // ordering
	case VersionChangeMinor:
		return 2 //nolint:mnd // ordering
	case VersionChangePatch:
		return 1
	default:
		return 0
	}
}

// IsNewerVersion returns true if candidate is strictly newer than current.
// Pre-releases are never considered newer than a stable current version.
func IsNewerVersion(current, candidate string) bool {
	c := NormalizeVersion(current)
	n := NormalizeVersion(candidate)

	if semver.IsValid(c) && semver.IsValid(n) {
		if semver.Prerelease(n) != "" && semver.Prerelease(c) == "" {
			return false
		}
		return semver.Compare(n, c) > 0
	}

	return candidate > current
}

// NormalizeVersion ensures the "v" prefix semver expects.
func NormalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
