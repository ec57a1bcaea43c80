package repositories

import (
	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/autokeeper/internal/domain/repositories"
	adoRepo "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/azuredevops"
	ghRepo "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/github"
	glRepo "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/gitlab"
	goRepo "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/golang"
	pyRepo "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/python"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/reporting"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/selection"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/sources"
	tfRepo "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/terraform"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register provider registry with all pull-request host factories
	if err := container.Provide(func() *ProviderRegistry {
		reg := NewProviderRegistry()
		reg.Register("github", ghRepo.NewPullRequestHost)
		reg.Register("gitlab", glRepo.NewPullRequestHost)
		reg.Register("azuredevops", adoRepo.NewPullRequestHost)
		return reg
	}); err != nil {
		return err
	}

	// Register ecosystem registry with all ecosystem implementations
	if err := container.Provide(func() *EcosystemRegistry {
		return NewEcosystemRegistry(
			goRepo.NewEcosystemRepository(),
			pyRepo.NewEcosystemRepository(),
			tfRepo.NewEcosystemRepository(),
		)
	}); err != nil {
		return err
	}

	constructors := []interface{}{
		NewEcosystemUpdateFinder,
		NewEcosystemUpdateRunner,
		NewEcosystemSolutionRestore,
		selection.NewFilteredSelection,
		sources.NewEnvReader,
		reporting.NewTableReporter,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	bindings := []interface{}{
		func(impl *EcosystemUpdateFinder) domainRepos.UpdateFinder { return impl },
		func(impl *EcosystemUpdateRunner) domainRepos.UpdateRunner { return impl },
		func(impl *EcosystemSolutionRestore) domainRepos.SolutionRestore { return impl },
		func(impl *selection.FilteredSelection) domainRepos.UpdateSelection { return impl },
		func(impl *sources.EnvReader) domainRepos.SourcesReader { return impl },
		func(impl *reporting.TableReporter) domainRepos.AvailableUpdatesReporter { return impl },
	}
	for _, binding := range bindings {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
