package repositories

import "context"

// GitDriver operates on one local checkout. Implementations are not safe for
// concurrent use; a checkout belongs to a single run.
type GitDriver interface {
	// WorkingFolder returns the absolute root of the working tree.
	WorkingFolder() string

	// GetCurrentHead returns the checked out branch name, or the commit hash when detached.
	GetCurrentHead() (string, error)

	// IsClean reports whether the working tree has no uncommitted changes.
	IsClean() (bool, error)

	Checkout(branch string) error

	// CheckoutNewBranch creates branch from the current head, replacing any
	// local branch with the same name, and checks it out.
	CheckoutNewBranch(branch string) error

	// Commit stages every change in the working tree and commits it.
	Commit(message string) error

	// AddRemote adds or replaces a remote.
	AddRemote(name, url string) error

	// Push force-pushes branch to the named remote.
	Push(ctx context.Context, remote, branch string) error
}
