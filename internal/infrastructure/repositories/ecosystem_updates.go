package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

const changelogFileMode = 0o644

// ErrUnknownEcosystem is returned when an update names an ecosystem that is not registered.
var ErrUnknownEcosystem = errors.New("unknown ecosystem")

// EcosystemUpdateFinder runs every detected ecosystem against a folder and
// concatenates their candidates in ecosystem name order.
type EcosystemUpdateFinder struct {
	registry *EcosystemRegistry
}

// NewEcosystemUpdateFinder creates a finder over the registered ecosystems.
func NewEcosystemUpdateFinder(registry *EcosystemRegistry) *EcosystemUpdateFinder {
	return &EcosystemUpdateFinder{registry: registry}
}

// FindUpdates never fails because of one ecosystem: its error is logged and
// the others still run.
func (it *EcosystemUpdateFinder) FindUpdates(
	ctx context.Context,
	folder string,
	sources entities.PackageSources,
	allowed entities.VersionChange,
) ([]entities.PackageUpdateSet, error) {
	var candidates []entities.PackageUpdateSet
	for _, ecosystem := range it.registry.All() {
		if !ecosystem.Detect(folder) {
			continue
		}
		logger.Infof("[%s] Detected in %s", ecosystem.Name(), folder)

		found, err := ecosystem.FindUpdates(ctx, folder, sources, allowed)
		if err != nil {
			logger.Warnf("[%s] Failed to find updates: %v", ecosystem.Name(), err)
			continue
		}
		candidates = append(candidates, found...)
	}
	return candidates, nil
}

// EcosystemUpdateRunner applies an update through its ecosystem and records it
// in CHANGELOG.md when the folder has one.
type EcosystemUpdateRunner struct {
	registry *EcosystemRegistry
}

// NewEcosystemUpdateRunner creates a runner over the registered ecosystems.
func NewEcosystemUpdateRunner(registry *EcosystemRegistry) *EcosystemUpdateRunner {
	return &EcosystemUpdateRunner{registry: registry}
}

func (it *EcosystemUpdateRunner) Update(ctx context.Context, folder string, update entities.PackageUpdateSet) error {
	ecosystem := it.registry.Get(update.Ecosystem())
	if ecosystem == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEcosystem, update.Ecosystem())
	}

	if err := ecosystem.Apply(ctx, folder, update); err != nil {
		return fmt.Errorf("failed to apply %s: %w", update, err)
	}
	return recordInChangelog(folder, update)
}

func recordInChangelog(folder string, update entities.PackageUpdateSet) error {
	path := filepath.Join(folder, entities.ChangelogFile)
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", entities.ChangelogFile, err)
	}

	updated, changed := entities.AddChangelogEntries(string(content), []string{entities.ChangelogEntry(update)})
	if !changed {
		logger.Debugf("[changelog] Nothing to record for %s", update.SelectedID())
		return nil
	}
	if err = os.WriteFile(path, []byte(updated), changelogFileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", entities.ChangelogFile, err)
	}
	return nil
}

// EcosystemSolutionRestore restores through the update's ecosystem.
type EcosystemSolutionRestore struct {
	registry *EcosystemRegistry
}

// NewEcosystemSolutionRestore creates a restore over the registered ecosystems.
func NewEcosystemSolutionRestore(registry *EcosystemRegistry) *EcosystemSolutionRestore {
	return &EcosystemSolutionRestore{registry: registry}
}

func (it *EcosystemSolutionRestore) Restore(
	ctx context.Context,
	folder string,
	update entities.PackageUpdateSet,
	sources entities.PackageSources,
) error {
	ecosystem := it.registry.Get(update.Ecosystem())
	if ecosystem == nil {
		return fmt.Errorf("%w: %q", ErrUnknownEcosystem, update.Ecosystem())
	}
	if err := ecosystem.Restore(ctx, folder, update, sources); err != nil {
		return fmt.Errorf("failed to restore after %s: %w", update, err)
	}
	return nil
}
