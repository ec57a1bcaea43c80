//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// StubSourcesReader returns fixed sources.
type StubSourcesReader struct {
	Sources entities.PackageSources
	Calls   int
}

var _ repositories.SourcesReader = (*StubSourcesReader)(nil)

func (s *StubSourcesReader) Read(_ string, _ entities.Settings) entities.PackageSources {
	s.Calls++
	return s.Sources
}

// StubUpdateFinder returns fixed candidates.
type StubUpdateFinder struct {
	Updates       []entities.PackageUpdateSet
	Err           error
	Calls         int
	LastFolder    string
	LastAllowed   entities.VersionChange
	LastSourceSet entities.PackageSources
}

var _ repositories.UpdateFinder = (*StubUpdateFinder)(nil)

func (s *StubUpdateFinder) FindUpdates(
	_ context.Context,
	folder string,
	sources entities.PackageSources,
	allowed entities.VersionChange,
) ([]entities.PackageUpdateSet, error) {
	s.Calls++
	s.LastFolder = folder
	s.LastSourceSet = sources
	s.LastAllowed = allowed
	return s.Updates, s.Err
}

// StubUpdateSelection returns every candidate unless RejectAll is set or
// Selected overrides the result.
type StubUpdateSelection struct {
	RejectAll       bool
	Selected        []entities.PackageUpdateSet
	Err             error
	Calls           int
	LastRepository  entities.RepositoryData
	LastCandidates  []entities.PackageUpdateSet
	LastConsolidate bool
}

var _ repositories.UpdateSelection = (*StubUpdateSelection)(nil)

func (s *StubUpdateSelection) SelectTargets(
	_ context.Context,
	_ repositories.PullRequestHost,
	repository entities.RepositoryData,
	candidates []entities.PackageUpdateSet,
	_ entities.FilterSettings,
	consolidate bool,
) ([]entities.PackageUpdateSet, error) {
	s.Calls++
	s.LastRepository = repository
	s.LastCandidates = candidates
	s.LastConsolidate = consolidate
	switch {
	case s.Err != nil:
		return nil, s.Err
	case s.RejectAll:
		return nil, nil
	case s.Selected != nil:
		return s.Selected, nil
	default:
		return candidates, nil
	}
}

// SpyUpdateRunner records updates and fails for the ids listed in FailFor.
type SpyUpdateRunner struct {
	FailFor map[string]error
	Updated []string
}

var _ repositories.UpdateRunner = (*SpyUpdateRunner)(nil)

func (s *SpyUpdateRunner) Update(_ context.Context, _ string, update entities.PackageUpdateSet) error {
	s.Updated = append(s.Updated, update.SelectedID())
	return s.FailFor[update.SelectedID()]
}

// SpySolutionRestore records restores and fails for the ids listed in FailFor.
type SpySolutionRestore struct {
	FailFor  map[string]error
	Restored []string
}

var _ repositories.SolutionRestore = (*SpySolutionRestore)(nil)

func (s *SpySolutionRestore) Restore(
	_ context.Context, _ string, update entities.PackageUpdateSet, _ entities.PackageSources,
) error {
	s.Restored = append(s.Restored, update.SelectedID())
	return s.FailFor[update.SelectedID()]
}

// SpyReporter records every report.
type SpyReporter struct {
	Err     error
	Reports [][]entities.PackageUpdateSet
}

var _ repositories.AvailableUpdatesReporter = (*SpyReporter)(nil)

func (s *SpyReporter) Report(_ string, updates []entities.PackageUpdateSet, _ entities.UserSettings) error {
	s.Reports = append(s.Reports, updates)
	return s.Err
}
