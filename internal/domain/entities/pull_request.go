package entities

import (
	gitforgeEntities "github.com/rios0rios0/gitforge/pkg/global/domain/entities"
)

// PullRequestInput is re-exported from gitforge.
type PullRequestInput = gitforgeEntities.PullRequestInput

// PullRequest is re-exported from gitforge.
type PullRequest = gitforgeEntities.PullRequest

// NewPullRequest is the payload handed to a pull-request host.
type NewPullRequest struct {
	PullRequestInput

	// HeadOwner is the owner of the fork holding SourceBranch, when it differs
	// from the repository the pull request is opened against.
	HeadOwner string
	Labels    []string
}
