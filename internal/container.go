package internal

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/controllers"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories"
)

type layer struct {
	name     string
	register func(*dig.Container) error
}

// RegisterProviders registers every layer bottom-up, then the application itself.
// Entities need no providers: settings are built per invocation from flags.
func RegisterProviders(container *dig.Container) error {
	layers := []layer{
		{name: "repositories", register: repositories.RegisterProviders},
		{name: "commands", register: commands.RegisterProviders},
		{name: "controllers", register: controllers.RegisterProviders},
	}
	for _, l := range layers {
		if err := l.register(container); err != nil {
			return fmt.Errorf("failed to register %s providers: %w", l.name, err)
		}
	}

	if err := container.Provide(NewAppInternal); err != nil {
		return fmt.Errorf("failed to register application: %w", err)
	}
	return nil
}
