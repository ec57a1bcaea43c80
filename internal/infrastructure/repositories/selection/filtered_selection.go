package selection

import (
	"context"
	"fmt"
	"regexp"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// FilteredSelection keeps candidates that pass the name filters and the
// minimum age, that have no open pull request yet, up to the update limit.
// When updates are consolidated, the shared branch of the whole selection is
// checked as well and an already proposed selection yields nothing.
type FilteredSelection struct {
	now func() time.Time
}

// NewFilteredSelection creates a selection measuring ages against the wall clock.
func NewFilteredSelection() *FilteredSelection {
	return &FilteredSelection{now: time.Now}
}

// NewFilteredSelectionAt creates a selection measuring ages against now.
func NewFilteredSelectionAt(now func() time.Time) *FilteredSelection {
	return &FilteredSelection{now: now}
}

func (it *FilteredSelection) SelectTargets(
	ctx context.Context,
	host repositories.PullRequestHost,
	repository entities.RepositoryData,
	candidates []entities.PackageUpdateSet,
	filters entities.FilterSettings,
	consolidate bool,
) ([]entities.PackageUpdateSet, error) {
	includes, excludes, err := compileFilters(filters)
	if err != nil {
		return nil, err
	}
	minAge, err := entities.ParsePackageAge(filters.MinPackageAge)
	if err != nil {
		return nil, fmt.Errorf("invalid minimum package age: %w", err)
	}

	var selected []entities.PackageUpdateSet
	for _, candidate := range candidates {
		if filters.MaxPackageUpdates > 0 && len(selected) >= filters.MaxPackageUpdates {
			logger.Infof("[selection] Reached the limit of %d updates", filters.MaxPackageUpdates)
			break
		}

		id := candidate.SelectedID()
		if includes != nil && !includes.MatchString(id) {
			logger.Debugf("[selection] %s does not match the include filter", id)
			continue
		}
		if excludes != nil && excludes.MatchString(id) {
			logger.Debugf("[selection] %s matches the exclude filter", id)
			continue
		}
		if !it.oldEnough(candidate, minAge) {
			logger.Infof("[selection] %s is younger than %s", candidate.Selected().Identity, minAge)
			continue
		}
		if hasOpenPullRequest(ctx, host, repository, entities.BranchName(candidate)) {
			logger.Infof(
				"[selection] %s already has an open pull request on %s", candidate.Selected().Identity, repository.Pull,
			)
			continue
		}

		selected = append(selected, candidate)
	}

	if consolidate && len(selected) > 0 {
		branch := entities.ConsolidatedBranchName(selected)
		if hasOpenPullRequest(ctx, host, repository, branch) {
			logger.Infof("[selection] %s already has an open pull request on %s", branch, repository.Pull)
			return nil, nil
		}
	}

	logger.Infof("[selection] Selected %d of %d candidates", len(selected), len(candidates))
	return selected, nil
}

// oldEnough accepts versions without a publish date.
func (it *FilteredSelection) oldEnough(candidate entities.PackageUpdateSet, minAge time.Duration) bool {
	if minAge == 0 || candidate.Published().IsZero() {
		return true
	}
	return it.now().Sub(candidate.Published()) >= minAge
}

func hasOpenPullRequest(
	ctx context.Context,
	host repositories.PullRequestHost,
	repository entities.RepositoryData,
	branch string,
) bool {
	if host == nil {
		return false
	}
	exists, err := host.PullRequestExists(ctx, repository, branch)
	if err != nil {
		logger.Warnf("[selection] Failed to check existing pull requests for %s: %v", branch, err)
		return false
	}
	return exists
}

func compileFilters(filters entities.FilterSettings) (*regexp.Regexp, *regexp.Regexp, error) {
	var includes, excludes *regexp.Regexp
	var err error
	if filters.Includes != "" {
		if includes, err = regexp.Compile(filters.Includes); err != nil {
			return nil, nil, fmt.Errorf("invalid include filter: %w", err)
		}
	}
	if filters.Excludes != "" {
		if excludes, err = regexp.Compile(filters.Excludes); err != nil {
			return nil, nil, fmt.Errorf("invalid exclude filter: %w", err)
		}
	}
	return includes, excludes, nil
}
