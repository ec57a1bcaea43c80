//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
)

// StubLocalCommand is a stub implementation of commands.Local.
type StubLocalCommand struct {
	Count            int
	ExecuteCallCount int
	ExecuteErr       error
	LastOpts         commands.LocalOptions
}

var _ commands.Local = (*StubLocalCommand)(nil)

func (s *StubLocalCommand) Execute(
	_ context.Context,
	opts commands.LocalOptions,
) (int, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Count, s.ExecuteErr
}

// StubRemoteCommand is a stub implementation of commands.Remote.
type StubRemoteCommand struct {
	Count            int
	ExecuteCallCount int
	ExecuteErr       error
	LastOpts         commands.RemoteOptions
}

var _ commands.Remote = (*StubRemoteCommand)(nil)

func (s *StubRemoteCommand) Execute(
	_ context.Context,
	opts commands.RemoteOptions,
) (int, error) {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.Count, s.ExecuteErr
}
