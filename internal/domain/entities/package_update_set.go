package entities

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoCurrentPackages is returned when an update set is built without occurrences.
	ErrNoCurrentPackages = errors.New("an update set needs at least one current package")

	// ErrMismatchedPackage is returned when an occurrence does not belong to the selected package.
	ErrMismatchedPackage = errors.New("current package does not match the selected package")
)

// PackageIdentity names one version of one package.
type PackageIdentity struct {
	ID      string
	Version string
}

func (p PackageIdentity) String() string {
	return p.ID + "@" + p.Version
}

// PackagePath locates the project file that references a package.
type PackagePath struct {
	BaseDirectory string // Directory the scan started from
	RelativePath  string // Project file path relative to BaseDirectory
	Kind          string // Manifest kind, e.g. "go.mod" or "terraform"
}

// PackageInProject is one occurrence of a package in a project file.
type PackageInProject struct {
	Identity PackageIdentity
	Path     PackagePath
	Line     int
}

// PackageSearchMetadata describes a published package version.
type PackageSearchMetadata struct {
	Identity  PackageIdentity
	Source    string
	Published time.Time
}

// PackageUpdateSet is a proposed change of one package to one target version,
// covering every place the package is currently referenced. It is built once
// by a finder and never mutated afterwards.
type PackageUpdateSet struct {
	ecosystem string
	selected  PackageSearchMetadata
	current   []PackageInProject
}

// NewPackageUpdateSet validates and builds an update set.
func NewPackageUpdateSet(
	ecosystem string,
	selected PackageSearchMetadata,
	current []PackageInProject,
) (PackageUpdateSet, error) {
	if selected.Identity.ID == "" || selected.Identity.Version == "" {
		return PackageUpdateSet{}, errors.New("selected package needs an id and a version")
	}
	if len(current) == 0 {
		return PackageUpdateSet{}, ErrNoCurrentPackages
	}
	for _, pip := range current {
		if pip.Identity.ID != selected.Identity.ID {
			return PackageUpdateSet{}, fmt.Errorf(
				"%w: %q in %s", ErrMismatchedPackage, pip.Identity.ID, pip.Path.RelativePath,
			)
		}
	}

	owned := make([]PackageInProject, len(current))
	copy(owned, current)

	return PackageUpdateSet{
		ecosystem: ecosystem,
		selected:  selected,
		current:   owned,
	}, nil
}

// Ecosystem returns the name of the ecosystem that found this update.
func (s PackageUpdateSet) Ecosystem() string { return s.ecosystem }

// Selected returns the metadata of the target version.
func (s PackageUpdateSet) Selected() PackageSearchMetadata { return s.selected }

func (s PackageUpdateSet) SelectedID() string      { return s.selected.Identity.ID }
func (s PackageUpdateSet) SelectedVersion() string { return s.selected.Identity.Version }
func (s PackageUpdateSet) Source() string          { return s.selected.Source }
func (s PackageUpdateSet) Published() time.Time    { return s.selected.Published }

// CurrentPackages returns a copy of the occurrences being updated.
func (s PackageUpdateSet) CurrentPackages() []PackageInProject {
	result := make([]PackageInProject, len(s.current))
	copy(result, s.current)
	return result
}

// CurrentVersions returns the distinct versions currently in use, in first-seen order.
func (s PackageUpdateSet) CurrentVersions() []string {
	seen := make(map[string]bool)
	var versions []string
	for _, pip := range s.current {
		if seen[pip.Identity.Version] {
			continue
		}
		seen[pip.Identity.Version] = true
		versions = append(versions, pip.Identity.Version)
	}
	return versions
}

// CountCurrentVersions returns how many distinct versions are currently in use.
func (s PackageUpdateSet) CountCurrentVersions() int {
	return len(s.CurrentVersions())
}

// HighestChange is the largest jump from any current version to the target.
func (s PackageUpdateSet) HighestChange() VersionChange {
	highest := VersionChangeNone
	for _, current := range s.CurrentVersions() {
		change := ClassifyVersionChange(current, s.SelectedVersion())
		if change.rank() > highest.rank() {
			highest = change
		}
	}
	return highest
}

func (s PackageUpdateSet) String() string {
	return fmt.Sprintf(
		"%s to %s in %d place(s)", s.SelectedID(), s.SelectedVersion(), len(s.current),
	)
}

// PackageSources is the ordered list of package feeds a finder queries.
type PackageSources struct {
	items []string
}

// NewPackageSources keeps the first occurrence of each non-empty source.
func NewPackageSources(items ...string) PackageSources {
	seen := make(map[string]bool)
	var kept []string
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		kept = append(kept, item)
	}
	return PackageSources{items: kept}
}

// Items returns a copy of the sources in priority order.
func (s PackageSources) Items() []string {
	result := make([]string, len(s.items))
	copy(result, s.items)
	return result
}

func (s PackageSources) Len() int { return len(s.items) }
