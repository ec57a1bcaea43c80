package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	constructors := []interface{}{
		NewPackageUpdateCommand,
		NewRepositoryUpdateCommand,
		NewLocalCommand,
		NewRemoteCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	bindings := []interface{}{
		func(impl *PackageUpdateCommand) PackageUpdate { return impl },
		func(impl *RepositoryUpdateCommand) RepositoryUpdate { return impl },
		func(impl *LocalCommand) Local { return impl },
		func(impl *RemoteCommand) Remote { return impl },
	}
	for _, binding := range bindings {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
