package gitdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"
)

// Author is the identity commits are made with.
type Author struct {
	Name  string
	Email string
}

// Credentials authenticate HTTPS pushes and clones. A zero value means anonymous.
type Credentials struct {
	Username string
	Token    string
}

func (c Credentials) auth() transport.AuthMethod {
	if c.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: c.Username, Password: c.Token}
}

// GoGitDriver implements repositories.GitDriver on top of go-git.
type GoGitDriver struct {
	repo        *git.Repository
	worktree    *git.Worktree
	author      Author
	credentials Credentials
}

// Open opens the repository containing path, walking up to find ".git".
func Open(path string, author Author, credentials Credentials) (*GoGitDriver, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}
	return newDriver(repo, author, credentials)
}

// Clone clones url into dir, checking out the remote's default branch.
func Clone(ctx context.Context, url, dir string, author Author, credentials Credentials) (*GoGitDriver, error) {
	logger.Infof("[git] Cloning %s into %s", url, dir)
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Auth: credentials.auth(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return newDriver(repo, author, credentials)
}

func newDriver(repo *git.Repository, author Author, credentials Credentials) (*GoGitDriver, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	return &GoGitDriver{
		repo:        repo,
		worktree:    worktree,
		author:      author,
		credentials: credentials,
	}, nil
}

// UseCredentials replaces the credentials used for pushes.
func (it *GoGitDriver) UseCredentials(credentials Credentials) {
	it.credentials = credentials
}

func (it *GoGitDriver) WorkingFolder() string {
	return it.worktree.Filesystem.Root()
}

func (it *GoGitDriver) GetCurrentHead() (string, error) {
	head, err := it.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String(), nil
}

func (it *GoGitDriver) IsClean() (bool, error) {
	status, err := it.worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	return status.IsClean(), nil
}

// Checkout switches to a local branch, or to a commit when branch is a hash.
func (it *GoGitDriver) Checkout(branch string) error {
	opts := &git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch), Force: true}
	if _, err := it.repo.Reference(opts.Branch, true); err != nil {
		if !plumbing.IsHash(branch) {
			return fmt.Errorf("failed to checkout %s: %w", branch, err)
		}
		opts = &git.CheckoutOptions{Hash: plumbing.NewHash(branch), Force: true}
	}

	if err := it.worktree.Checkout(opts); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

func (it *GoGitDriver) CheckoutNewBranch(branch string) error {
	head, err := it.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	name := plumbing.NewBranchReferenceName(branch)
	if head.Name() == name {
		return nil
	}
	if _, refErr := it.repo.Reference(name, false); refErr == nil {
		logger.Debugf("[git] Replacing existing branch %s", branch)
		if removeErr := it.repo.Storer.RemoveReference(name); removeErr != nil {
			return fmt.Errorf("failed to remove branch %s: %w", branch, removeErr)
		}
	}

	if err = it.worktree.Checkout(&git.CheckoutOptions{
		Branch: name,
		Hash:   head.Hash(),
		Create: true,
	}); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branch, err)
	}
	return nil
}

func (it *GoGitDriver) Commit(message string) error {
	if err := it.worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	hash, err := it.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  it.author.Name,
			Email: it.author.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	logger.Debugf("[git] Committed %s", hash)
	return nil
}

func (it *GoGitDriver) AddRemote(name, url string) error {
	remoteConfig := &config.RemoteConfig{Name: name, URLs: []string{url}}
	_, err := it.repo.CreateRemote(remoteConfig)
	if errors.Is(err, git.ErrRemoteExists) {
		if err = it.repo.DeleteRemote(name); err != nil {
			return fmt.Errorf("failed to replace remote %s: %w", name, err)
		}
		_, err = it.repo.CreateRemote(remoteConfig)
	}
	if err != nil {
		return fmt.Errorf("failed to add remote %s: %w", name, err)
	}
	return nil
}

func (it *GoGitDriver) Push(ctx context.Context, remote, branch string) error {
	refSpec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/heads/%s", branch, branch))
	err := it.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{refSpec},
		Auth:       it.credentials.auth(),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to push %s to %s: %w", branch, remote, err)
	}
	logger.Infof("[git] Pushed %s to %s", branch, remote)
	return nil
}

// RemoteURL returns the first URL configured for the named remote.
func (it *GoGitDriver) RemoteURL(name string) (string, error) {
	remote, err := it.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("failed to read remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", name)
	}
	return urls[0], nil
}
