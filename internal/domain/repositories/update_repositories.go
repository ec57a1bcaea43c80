package repositories

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// SourcesReader resolves the ordered package sources of a run.
type SourcesReader interface {
	Read(folder string, settings entities.Settings) entities.PackageSources
}

// UpdateFinder scans a project tree against package sources.
type UpdateFinder interface {
	// FindUpdates returns candidates in discovery order. An empty result is not an error.
	FindUpdates(
		ctx context.Context,
		folder string,
		sources entities.PackageSources,
		allowed entities.VersionChange,
	) ([]entities.PackageUpdateSet, error)
}

// UpdateSelection filters candidates for one repository. The result is always
// a subsequence of candidates: nothing is reordered or added. consolidate
// tells it the selection will be proposed on a single shared branch.
type UpdateSelection interface {
	SelectTargets(
		ctx context.Context,
		host PullRequestHost,
		repository entities.RepositoryData,
		candidates []entities.PackageUpdateSet,
		filters entities.FilterSettings,
		consolidate bool,
	) ([]entities.PackageUpdateSet, error)
}

// UpdateRunner applies one update to the working tree.
type UpdateRunner interface {
	Update(ctx context.Context, folder string, update entities.PackageUpdateSet) error
}

// SolutionRestore runs once per applied update, before it is committed.
type SolutionRestore interface {
	Restore(
		ctx context.Context,
		folder string,
		update entities.PackageUpdateSet,
		sources entities.PackageSources,
	) error
}

// AvailableUpdatesReporter renders available updates for humans. It never
// affects what gets applied.
type AvailableUpdatesReporter interface {
	Report(name string, updates []entities.PackageUpdateSet, user entities.UserSettings) error
}
