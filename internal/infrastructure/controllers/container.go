package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	constructors := []interface{}{
		NewLocalController,
		NewInspectController,
		NewRepositoryController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	localController *LocalController,
	inspectController *InspectController,
	repositoryController *RepositoryController,
) *[]entities.Controller {
	return &[]entities.Controller{
		localController,
		inspectController,
		repositoryController,
	}
}
