//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// SpyGitDriver implements repositories.GitDriver in memory, recording every call.
type SpyGitDriver struct {
	Folder string
	Head   string
	Clean  bool

	HeadErr      error
	CommitErr    error
	CommitErrAt  int // 1-based commit call that fails; 0 means CommitErr applies to all
	PushErr      error
	CheckoutErr  error
	AddRemoteErr error

	// Calls lists operations in order, e.g. "checkout-new:chore/x".
	Calls          []string
	CommitMessages []string
	CreatedBranch  []string
	PushedBranches []string
	Remotes        map[string]string
}

var _ repositories.GitDriver = (*SpyGitDriver)(nil)

func (g *SpyGitDriver) WorkingFolder() string { return g.Folder }

func (g *SpyGitDriver) GetCurrentHead() (string, error) {
	g.Calls = append(g.Calls, "head")
	if g.Head == "" {
		return "main", g.HeadErr
	}
	return g.Head, g.HeadErr
}

func (g *SpyGitDriver) IsClean() (bool, error) { return g.Clean, nil }

func (g *SpyGitDriver) Checkout(branch string) error {
	g.Calls = append(g.Calls, "checkout:"+branch)
	return g.CheckoutErr
}

func (g *SpyGitDriver) CheckoutNewBranch(branch string) error {
	g.Calls = append(g.Calls, "checkout-new:"+branch)
	g.CreatedBranch = append(g.CreatedBranch, branch)
	return nil
}

// Commit records the attempt, then fails when configured to.
func (g *SpyGitDriver) Commit(message string) error {
	g.Calls = append(g.Calls, "commit")
	g.CommitMessages = append(g.CommitMessages, message)
	if g.CommitErr != nil && (g.CommitErrAt == 0 || g.CommitErrAt == len(g.CommitMessages)) {
		return g.CommitErr
	}
	return nil
}

func (g *SpyGitDriver) AddRemote(name, url string) error {
	g.Calls = append(g.Calls, "remote:"+name)
	if g.Remotes == nil {
		g.Remotes = make(map[string]string)
	}
	g.Remotes[name] = url
	return g.AddRemoteErr
}

func (g *SpyGitDriver) Push(_ context.Context, remote, branch string) error {
	g.Calls = append(g.Calls, "push:"+remote+"/"+branch)
	g.PushedBranches = append(g.PushedBranches, branch)
	return g.PushErr
}

// SuccessfulCommits counts commit calls that did not fail.
func (g *SpyGitDriver) SuccessfulCommits() int {
	if g.CommitErr == nil {
		return len(g.CommitMessages)
	}
	if g.CommitErrAt == 0 {
		return 0
	}
	if len(g.CommitMessages) >= g.CommitErrAt {
		return len(g.CommitMessages) - 1
	}
	return len(g.CommitMessages)
}
