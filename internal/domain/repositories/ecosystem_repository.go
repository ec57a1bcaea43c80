package repositories

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// EcosystemRepository abstracts one dependency ecosystem (Go modules, Terraform modules, etc.).
// Each implementation finds outdated packages in a working tree, edits the
// project files that reference them and restores the result.
type EcosystemRepository interface {
	// Name returns the ecosystem identifier (e.g. "golang", "terraform").
	Name() string

	// Detect returns true if folder contains project files of this ecosystem.
	Detect(folder string) bool

	// FindUpdates returns one update set per outdated package, in scan order.
	FindUpdates(
		ctx context.Context,
		folder string,
		sources entities.PackageSources,
		allowed entities.VersionChange,
	) ([]entities.PackageUpdateSet, error)

	// Apply rewrites every project file referencing the update's package.
	Apply(ctx context.Context, folder string, update entities.PackageUpdateSet) error

	// Restore brings derived files (checksums, lock files) in line with the edit.
	Restore(ctx context.Context, folder string, update entities.PackageUpdateSet, sources entities.PackageSources) error
}
