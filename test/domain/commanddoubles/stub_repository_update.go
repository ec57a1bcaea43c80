//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// StubRepositoryUpdate is a stub implementation of commands.RepositoryUpdate.
type StubRepositoryUpdate struct {
	Count          int
	RunCallCount   int
	LastGit        repositories.GitDriver
	LastRepository entities.RepositoryData
	LastSettings   entities.Settings
}

var _ commands.RepositoryUpdate = (*StubRepositoryUpdate)(nil)

func (s *StubRepositoryUpdate) Run(
	_ context.Context,
	git repositories.GitDriver,
	repository entities.RepositoryData,
	settings entities.Settings,
) int {
	s.RunCallCount++
	s.LastGit = git
	s.LastRepository = repository
	s.LastSettings = settings
	return s.Count
}
