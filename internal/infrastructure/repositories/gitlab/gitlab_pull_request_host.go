package gitlab

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

const (
	providerName = "gitlab"
	gitUsername  = "oauth2"
)

var (
	errClientNotInitialized = errors.New("gitlab client not initialized")
	errCrossProject         = errors.New("merge requests from another project are not supported")
)

// GitLabPullRequestHost implements repositories.PullRequestHost for GitLab merge requests.
type GitLabPullRequestHost struct {
	client *gl.Client
}

// NewPullRequestHost creates a GitLab host authenticated with token.
func NewPullRequestHost(token string) repositories.PullRequestHost {
	client, err := gl.NewClient(token)
	if err != nil {
		// fail on use rather than at construction
		return &GitLabPullRequestHost{client: nil}
	}
	return NewGitLabPullRequestHost(client)
}

// NewGitLabPullRequestHost creates a GitLab host over an existing client.
func NewGitLabPullRequestHost(client *gl.Client) *GitLabPullRequestHost {
	return &GitLabPullRequestHost{client: client}
}

func (p *GitLabPullRequestHost) Name() string        { return providerName }
func (p *GitLabPullRequestHost) GitUsername() string { return gitUsername }

// OpenPullRequest opens a merge request that removes its source branch on merge.
// Reviewers are not assigned: GitLab needs numeric user ids.
func (p *GitLabPullRequestHost) OpenPullRequest(
	ctx context.Context,
	fork entities.ForkData,
	request entities.NewPullRequest,
	reviewers []string,
) (*entities.PullRequest, error) {
	if p.client == nil {
		return nil, errClientNotInitialized
	}
	if request.HeadOwner != "" && request.HeadOwner != fork.Owner {
		return nil, fmt.Errorf("%w: %s", errCrossProject, request.HeadOwner)
	}

	opts := &gl.CreateMergeRequestOptions{
		Title:              gl.Ptr(request.Title),
		Description:        gl.Ptr(request.Description),
		SourceBranch:       gl.Ptr(strings.TrimPrefix(request.SourceBranch, "refs/heads/")),
		TargetBranch:       gl.Ptr(strings.TrimPrefix(request.TargetBranch, "refs/heads/")),
		RemoveSourceBranch: gl.Ptr(true),
	}
	if len(request.Labels) > 0 {
		opts.Labels = gl.Ptr(gl.LabelOptions(request.Labels))
	}

	mr, _, err := p.client.MergeRequests.CreateMergeRequest(projectID(fork), opts, gl.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create merge request: %w", err)
	}
	if len(reviewers) > 0 {
		logger.Warnf("[gitlab] Reviewers %v were not assigned to !%d", reviewers, mr.IID)
	}

	return &entities.PullRequest{
		ID:     int(mr.IID),
		Title:  mr.Title,
		URL:    mr.WebURL,
		Status: mr.State,
	}, nil
}

func (p *GitLabPullRequestHost) PullRequestExists(
	ctx context.Context,
	repository entities.RepositoryData,
	sourceBranch string,
) (bool, error) {
	if p.client == nil {
		return false, errClientNotInitialized
	}

	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(
		projectID(repository.Pull),
		&gl.ListProjectMergeRequestsOptions{
			SourceBranch: gl.Ptr(strings.TrimPrefix(sourceBranch, "refs/heads/")),
			State:        gl.Ptr("opened"),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to list merge requests: %w", err)
	}

	return len(mrs) > 0, nil
}

func projectID(fork entities.ForkData) string {
	return fork.Owner + "/" + fork.Name
}
