//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// SpyEcosystemRepository implements repositories.EcosystemRepository as a configurable spy.
type SpyEcosystemRepository struct {
	EcosystemName string
	DetectResult  bool

	Updates []entities.PackageUpdateSet
	FindErr error

	ApplyErr   error
	Applied    []string
	RestoreErr error
	Restored   []string
}

var _ repositories.EcosystemRepository = (*SpyEcosystemRepository)(nil)

func (e *SpyEcosystemRepository) Name() string { return e.EcosystemName }

func (e *SpyEcosystemRepository) Detect(string) bool { return e.DetectResult }

func (e *SpyEcosystemRepository) FindUpdates(
	context.Context, string, entities.PackageSources, entities.VersionChange,
) ([]entities.PackageUpdateSet, error) {
	return e.Updates, e.FindErr
}

func (e *SpyEcosystemRepository) Apply(_ context.Context, _ string, update entities.PackageUpdateSet) error {
	e.Applied = append(e.Applied, update.SelectedID())
	return e.ApplyErr
}

func (e *SpyEcosystemRepository) Restore(
	_ context.Context, _ string, update entities.PackageUpdateSet, _ entities.PackageSources,
) error {
	e.Restored = append(e.Restored, update.SelectedID())
	return e.RestoreErr
}
