//go:build unit

package commands_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/gitdriver"
	"github.com/rios0rios0/autokeeper/test/domain/commanddoubles"
	doubles "github.com/rios0rios0/autokeeper/test/infrastructure/repositorydoubles"
)

// fakeClone records its arguments and initializes a repository in dir.
type fakeClone struct {
	url         string
	dir         string
	credentials gitdriver.Credentials
	err         error
}

func (f *fakeClone) clone(
	_ context.Context,
	url, dir string,
	author gitdriver.Author,
	credentials gitdriver.Credentials,
) (*gitdriver.GoGitDriver, error) {
	f.url = url
	f.dir = dir
	f.credentials = credentials
	if f.err != nil {
		return nil, f.err
	}

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, err
	}
	if err = os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n"), 0o600); err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	if _, err = wt.Add("go.mod"); err != nil {
		return nil, err
	}
	if _, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	}); err != nil {
		return nil, err
	}
	return gitdriver.Open(dir, author, credentials)
}

func TestRemoteCommand_Execute(t *testing.T) {
	t.Parallel()

	t.Run("should clone over HTTPS and run on the clone", func(t *testing.T) {
		t.Parallel()

		// given
		cloner := &fakeClone{}
		run := &commanddoubles.StubRepositoryUpdate{Count: 2}
		command := commands.NewRemoteCommandWith(
			newRegistry(&doubles.SpyPullRequestHost{Username: "x-access-token"}), run, cloner.clone,
		)
		settings := entities.DefaultSettings()
		settings.User.Directory = "services/api"

		// when
		count, err := command.Execute(context.Background(), commands.RemoteOptions{
			URL:      "git@github.com:acme/app.git",
			Token:    "token",
			Settings: settings,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Equal(t, "https://github.com/acme/app.git", cloner.url)
		assert.Equal(t, gitdriver.Credentials{Username: "x-access-token", Token: "token"}, cloner.credentials)
		assert.Equal(t, filepath.Join(cloner.dir, "services/api"), run.LastSettings.User.Directory)
		assert.Equal(t, "acme", run.LastRepository.Pull.Owner)
		_, statErr := os.Stat(cloner.dir)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("should clone anonymously in report-only mode without a token", func(t *testing.T) {
		t.Parallel()

		// given
		cloner := &fakeClone{}
		run := &commanddoubles.StubRepositoryUpdate{}
		command := commands.NewRemoteCommandWith(newRegistry(&doubles.SpyPullRequestHost{}), run, cloner.clone)
		settings := entities.DefaultSettings()
		settings.User.ReportMode = entities.ReportModeReportOnly
		settings.SourceControl.Provider = "unlisted"

		// when
		_, err := command.Execute(context.Background(), commands.RemoteOptions{
			URL:      "https://gitlab.com/group/project",
			Settings: settings,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, gitdriver.Credentials{}, cloner.credentials)
		assert.Equal(t, 1, run.RunCallCount)
	})

	t.Run("should fail for an unsupported URL", func(t *testing.T) {
		t.Parallel()

		// given
		cloner := &fakeClone{}
		run := &commanddoubles.StubRepositoryUpdate{}
		command := commands.NewRemoteCommandWith(newRegistry(&doubles.SpyPullRequestHost{}), run, cloner.clone)

		// when
		_, err := command.Execute(context.Background(), commands.RemoteOptions{
			URL:      "https://example.com/acme/app.git",
			Token:    "token",
			Settings: entities.DefaultSettings(),
		})

		// then
		require.Error(t, err)
		assert.Empty(t, cloner.url)
		assert.Equal(t, 0, run.RunCallCount)
	})

	t.Run("should return the clone error", func(t *testing.T) {
		t.Parallel()

		// given
		cloner := &fakeClone{err: errors.New("authentication required")}
		run := &commanddoubles.StubRepositoryUpdate{}
		command := commands.NewRemoteCommandWith(newRegistry(&doubles.SpyPullRequestHost{}), run, cloner.clone)

		// when
		_, err := command.Execute(context.Background(), commands.RemoteOptions{
			URL:      "https://github.com/acme/app",
			Token:    "token",
			Settings: entities.DefaultSettings(),
		})

		// then
		require.Error(t, err)
		assert.Equal(t, 0, run.RunCallCount)
	})
}
