package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	infraRepos "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/gitdriver"
)

const originRemote = "origin"

var (
	// ErrPathNotFound is returned when the target path does not exist.
	ErrPathNotFound = errors.New("path was not found")

	// ErrDirtyWorkingTree is returned when updates would mix with uncommitted changes.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
)

// Local is the interface for the local command (standalone mode).
type Local interface {
	Execute(ctx context.Context, opts LocalOptions) (int, error)
}

// LocalOptions holds runtime options for the local mode.
type LocalOptions struct {
	Path     string // Project file or directory; defaults to settings.User.Directory, then "."
	Token    string
	Settings entities.Settings
}

// LocalCommand runs the orchestrator against the repository containing a local path.
type LocalCommand struct {
	providerRegistry *infraRepos.ProviderRegistry
	repositoryUpdate RepositoryUpdate
}

// NewLocalCommand creates a new LocalCommand.
func NewLocalCommand(
	providerRegistry *infraRepos.ProviderRegistry,
	repositoryUpdate RepositoryUpdate,
) *LocalCommand {
	return &LocalCommand{
		providerRegistry: providerRegistry,
		repositoryUpdate: repositoryUpdate,
	}
}

// Execute returns the orchestrator's count. Errors only come from an
// unusable target or configuration, before any update is attempted.
func (it *LocalCommand) Execute(ctx context.Context, opts LocalOptions) (int, error) {
	settings := opts.Settings

	path := opts.Path
	if path == "" {
		path = settings.User.Directory
	}
	folder, err := resolveTarget(path)
	if err != nil {
		return 0, err
	}
	settings.User.Directory = folder

	driver, err := gitdriver.Open(
		folder,
		gitdriver.Author{Name: settings.SourceControl.AuthorName, Email: settings.SourceControl.AuthorEmail},
		gitdriver.Credentials{},
	)
	if err != nil {
		return 0, err
	}

	if !settings.IsReportOnly() {
		clean, cleanErr := driver.IsClean()
		if cleanErr != nil {
			return 0, cleanErr
		}
		if !clean {
			return 0, fmt.Errorf("%w in %s; commit or stash them first", ErrDirtyWorkingTree, driver.WorkingFolder())
		}
	}

	remote, err := localRemote(driver, settings)
	if err != nil {
		return 0, err
	}
	logger.Infof("Detected provider: %s, org: %s, repo: %s", remote.ProviderType, remote.Org, remote.RepoName)

	settings, host, err := resolveSourceControl(it.providerRegistry, settings, remote, opts.Token)
	if err != nil {
		return 0, err
	}
	if host != nil {
		driver.UseCredentials(gitdriver.Credentials{
			Username: host.GitUsername(),
			Token:    settings.SourceControl.Token,
		})
	}

	defaultBranch, err := driver.GetCurrentHead()
	if err != nil {
		return 0, fmt.Errorf("failed to detect current branch: %w", err)
	}
	logger.Infof("Default branch: %s", defaultBranch)

	repository, err := entities.NewRepositoryData(remote.fork(), remote.fork(), defaultBranch)
	if err != nil {
		return 0, err
	}

	return it.repositoryUpdate.Run(ctx, driver, repository, settings), nil
}

// resolveTarget turns a project file or directory into an absolute folder.
func resolveTarget(path string) (string, error) {
	if path == "" {
		path = "."
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrPathNotFound, path)
	}

	folder, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if !info.IsDir() {
		folder = filepath.Dir(folder)
	}
	return folder, nil
}

// localRemote parses origin. A report-only run on a repository without a
// recognizable origin is still allowed, named after its folder.
func localRemote(driver *gitdriver.GoGitDriver, settings entities.Settings) (*remoteInfo, error) {
	url, err := driver.RemoteURL(originRemote)
	if err == nil {
		var remote *remoteInfo
		if remote, err = parseRemoteURL(url); err == nil {
			return remote, nil
		}
	}

	if !settings.IsReportOnly() {
		return nil, fmt.Errorf("failed to detect git provider: %w", err)
	}
	logger.Debugf("No usable origin remote (%v), reporting as a local repository", err)
	return &remoteInfo{
		ProviderType: providerGitHub,
		Org:          "local",
		RepoName:     filepath.Base(driver.WorkingFolder()),
	}, nil
}
