package repositories

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// PullRequestHost abstracts a Git hosting service (GitHub, GitLab, Azure DevOps)
// that pull requests are opened against.
type PullRequestHost interface {
	// Name returns the provider identifier (e.g. "github").
	Name() string

	// GitUsername is the user name paired with the token for HTTPS pushes.
	GitUsername() string

	// OpenPullRequest opens request against fork and asks reviewers to review it.
	OpenPullRequest(
		ctx context.Context,
		fork entities.ForkData,
		request entities.NewPullRequest,
		reviewers []string,
	) (*entities.PullRequest, error)

	// PullRequestExists reports whether the pull repository already has an open
	// pull request whose head is sourceBranch on the push repository.
	PullRequestExists(ctx context.Context, repository entities.RepositoryData, sourceBranch string) (bool, error)
}
