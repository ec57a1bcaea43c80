package commands

import (
	"context"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories"
)

// RepositoryUpdate runs one update pass over a checked-out repository.
type RepositoryUpdate interface {
	Run(
		ctx context.Context,
		git repositories.GitDriver,
		repository entities.RepositoryData,
		settings entities.Settings,
	) int
}

// RepositoryUpdateCommand is the per-repository orchestrator: it finds
// candidates, reports them, selects targets and hands them to the composer.
type RepositoryUpdateCommand struct {
	sourcesReader    repositories.SourcesReader
	finder           repositories.UpdateFinder
	selection        repositories.UpdateSelection
	reporter         repositories.AvailableUpdatesReporter
	providerRegistry *infraRepos.ProviderRegistry
	packageUpdate    PackageUpdate
}

// NewRepositoryUpdateCommand creates a new RepositoryUpdateCommand.
func NewRepositoryUpdateCommand(
	sourcesReader repositories.SourcesReader,
	finder repositories.UpdateFinder,
	selection repositories.UpdateSelection,
	reporter repositories.AvailableUpdatesReporter,
	providerRegistry *infraRepos.ProviderRegistry,
	packageUpdate PackageUpdate,
) *RepositoryUpdateCommand {
	return &RepositoryUpdateCommand{
		sourcesReader:    sourcesReader,
		finder:           finder,
		selection:        selection,
		reporter:         reporter,
		providerRegistry: providerRegistry,
		packageUpdate:    packageUpdate,
	}
}

// Run returns how many updates were committed. It never fails: every problem
// before the composer is logged and yields 0.
func (it *RepositoryUpdateCommand) Run(
	ctx context.Context,
	git repositories.GitDriver,
	repository entities.RepositoryData,
	settings entities.Settings,
) int {
	log := logger.WithFields(logger.Fields{
		"run":        uuid.NewString(),
		"repository": repository.Pull.String(),
	})

	folder := updateFolder(git, settings)
	sources := it.sourcesReader.Read(folder, settings)
	log.Debugf("[orchestrator] Using sources %v", sources.Items())

	candidates, err := it.finder.FindUpdates(ctx, folder, sources, settings.User.AllowedChange)
	if err != nil {
		log.Warnf("[orchestrator] Failed to find updates: %v", err)
		return 0
	}
	log.Infof("[orchestrator] Found %d candidate update(s)", len(candidates))

	if settings.ShouldReport() {
		if reportErr := it.reporter.Report(repository.Pull.String(), candidates, settings.User); reportErr != nil {
			log.Warnf("[orchestrator] Failed to report available updates: %v", reportErr)
		}
	}
	if settings.IsReportOnly() || len(candidates) == 0 {
		return 0
	}

	host, err := it.providerRegistry.Get(settings.SourceControl.Provider, settings.SourceControl.Token)
	if err != nil {
		log.Errorf("[orchestrator] Cannot open pull requests: %v", err)
		return 0
	}

	targets, err := it.selection.SelectTargets(
		ctx, host, repository, candidates, settings.Filters, settings.User.ConsolidateUpdates,
	)
	if err != nil {
		log.Warnf("[orchestrator] Failed to select updates: %v", err)
		return 0
	}
	if len(targets) == 0 {
		log.Info("[orchestrator] No updates selected")
		return 0
	}
	log.Infof("[orchestrator] Selected %d update(s)", len(targets))

	count := it.packageUpdate.MakeUpdatePullRequests(ctx, git, host, repository, targets, sources, settings)
	log.Infof("[orchestrator] Committed %d update(s)", count)
	return count
}
