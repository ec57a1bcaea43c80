package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

const (
	providerName = "github"
	gitUsername  = "x-access-token"
)

// GitHubPullRequestHost implements repositories.PullRequestHost for GitHub.
type GitHubPullRequestHost struct {
	client *gh.Client
}

// NewPullRequestHost creates a GitHub host authenticated with token.
func NewPullRequestHost(token string) repositories.PullRequestHost {
	return NewGitHubPullRequestHost(gh.NewClient(nil).WithAuthToken(token))
}

// NewGitHubPullRequestHost creates a GitHub host over an existing client.
func NewGitHubPullRequestHost(client *gh.Client) *GitHubPullRequestHost {
	return &GitHubPullRequestHost{client: client}
}

func (p *GitHubPullRequestHost) Name() string        { return providerName }
func (p *GitHubPullRequestHost) GitUsername() string { return gitUsername }

// OpenPullRequest opens the pull request, then applies labels and reviewers.
// Label and reviewer failures are logged; the pull request still counts as opened.
func (p *GitHubPullRequestHost) OpenPullRequest(
	ctx context.Context,
	fork entities.ForkData,
	request entities.NewPullRequest,
	reviewers []string,
) (*entities.PullRequest, error) {
	head := strings.TrimPrefix(request.SourceBranch, "refs/heads/")
	if request.HeadOwner != "" && request.HeadOwner != fork.Owner {
		head = request.HeadOwner + ":" + head
	}
	base := strings.TrimPrefix(request.TargetBranch, "refs/heads/")

	maintainerCanModify := true
	pr, _, err := p.client.PullRequests.Create(
		ctx, fork.Owner, fork.Name,
		&gh.NewPullRequest{
			Title:               &request.Title,
			Head:                &head,
			Base:                &base,
			Body:                &request.Description,
			MaintainerCanModify: &maintainerCanModify,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	if len(request.Labels) > 0 {
		if _, _, labelErr := p.client.Issues.AddLabelsToIssue(
			ctx, fork.Owner, fork.Name, pr.GetNumber(), request.Labels,
		); labelErr != nil {
			logger.Warnf("[github] Failed to label PR #%d: %v", pr.GetNumber(), labelErr)
		}
	}
	if len(reviewers) > 0 {
		if _, _, reviewErr := p.client.PullRequests.RequestReviewers(
			ctx, fork.Owner, fork.Name, pr.GetNumber(), gh.ReviewersRequest{Reviewers: reviewers},
		); reviewErr != nil {
			logger.Warnf("[github] Failed to request reviewers on PR #%d: %v", pr.GetNumber(), reviewErr)
		}
	}

	return &entities.PullRequest{
		ID:     pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Status: pr.GetState(),
	}, nil
}

// PullRequestExists lists open pull requests on the pull repository whose
// head is the branch on the push repository's owner.
func (p *GitHubPullRequestHost) PullRequestExists(
	ctx context.Context,
	repository entities.RepositoryData,
	sourceBranch string,
) (bool, error) {
	prs, _, err := p.client.PullRequests.List(
		ctx, repository.Pull.Owner, repository.Pull.Name,
		&gh.PullRequestListOptions{
			Head:  repository.Push.Owner + ":" + strings.TrimPrefix(sourceBranch, "refs/heads/"),
			State: "open",
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to list pull requests: %w", err)
	}

	return len(prs) > 0, nil
}
