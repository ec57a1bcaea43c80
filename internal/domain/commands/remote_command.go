package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	infraRepos "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/gitdriver"
)

// Remote is the interface for the command that updates a repository by URL.
type Remote interface {
	Execute(ctx context.Context, opts RemoteOptions) (int, error)
}

// RemoteOptions holds runtime options for the remote mode.
type RemoteOptions struct {
	URL      string
	Token    string
	Settings entities.Settings
}

// Cloner clones a repository into dir.
type Cloner func(
	ctx context.Context,
	url, dir string,
	author gitdriver.Author,
	credentials gitdriver.Credentials,
) (*gitdriver.GoGitDriver, error)

// RemoteCommand clones one repository into a temporary folder and runs the
// orchestrator on it. The folder is removed afterwards.
type RemoteCommand struct {
	providerRegistry *infraRepos.ProviderRegistry
	repositoryUpdate RepositoryUpdate
	clone            Cloner
}

// NewRemoteCommand creates a new RemoteCommand.
func NewRemoteCommand(
	providerRegistry *infraRepos.ProviderRegistry,
	repositoryUpdate RepositoryUpdate,
) *RemoteCommand {
	return NewRemoteCommandWith(providerRegistry, repositoryUpdate, gitdriver.Clone)
}

// NewRemoteCommandWith creates a RemoteCommand with a custom clone function.
func NewRemoteCommandWith(
	providerRegistry *infraRepos.ProviderRegistry,
	repositoryUpdate RepositoryUpdate,
	clone Cloner,
) *RemoteCommand {
	return &RemoteCommand{
		providerRegistry: providerRegistry,
		repositoryUpdate: repositoryUpdate,
		clone:            clone,
	}
}

func (it *RemoteCommand) Execute(ctx context.Context, opts RemoteOptions) (int, error) {
	remote, err := parseRemoteURL(opts.URL)
	if err != nil {
		return 0, err
	}

	settings, host, err := resolveSourceControl(it.providerRegistry, opts.Settings, remote, opts.Token)
	if err != nil {
		return 0, err
	}
	credentials := gitdriver.Credentials{}
	if host != nil {
		credentials = gitdriver.Credentials{Username: host.GitUsername(), Token: settings.SourceControl.Token}
	}

	dir, err := os.MkdirTemp("", "autokeeper-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create a working folder: %w", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			logger.Warnf("Failed to remove %s: %v", dir, removeErr)
		}
	}()

	driver, err := it.clone(
		ctx,
		remote.httpsURL(),
		dir,
		gitdriver.Author{Name: settings.SourceControl.AuthorName, Email: settings.SourceControl.AuthorEmail},
		credentials,
	)
	if err != nil {
		return 0, err
	}

	// a configured directory is relative to the repository root
	settings.User.Directory = filepath.Join(driver.WorkingFolder(), settings.User.Directory)

	defaultBranch, err := driver.GetCurrentHead()
	if err != nil {
		return 0, fmt.Errorf("failed to detect default branch: %w", err)
	}

	repository, err := entities.NewRepositoryData(remote.fork(), remote.fork(), defaultBranch)
	if err != nil {
		return 0, err
	}

	return it.repositoryUpdate.Run(ctx, driver, repository, settings), nil
}
