//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// OpenPullRequestCall records a single invocation of OpenPullRequest.
type OpenPullRequestCall struct {
	Fork      entities.ForkData
	Request   entities.NewPullRequest
	Reviewers []string
}

// SpyPullRequestHost implements repositories.PullRequestHost as a configurable spy.
type SpyPullRequestHost struct {
	// --- identity ---
	ProviderName string
	Username     string

	// --- OpenPullRequest ---
	OpenErr   error
	OpenCalls []OpenPullRequestCall
	// RecordOpened marks the source branch of every opened pull request as existing.
	RecordOpened bool

	// --- PullRequestExists ---
	ExistingBranches map[string]bool
	ExistsErr        error
	ExistsCalls      []string
	ExistsRepository entities.RepositoryData
}

var _ repositories.PullRequestHost = (*SpyPullRequestHost)(nil)

func (p *SpyPullRequestHost) Name() string {
	if p.ProviderName == "" {
		return "spy"
	}
	return p.ProviderName
}

func (p *SpyPullRequestHost) GitUsername() string { return p.Username }

func (p *SpyPullRequestHost) OpenPullRequest(
	_ context.Context,
	fork entities.ForkData,
	request entities.NewPullRequest,
	reviewers []string,
) (*entities.PullRequest, error) {
	p.OpenCalls = append(p.OpenCalls, OpenPullRequestCall{Fork: fork, Request: request, Reviewers: reviewers})
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	if p.RecordOpened {
		if p.ExistingBranches == nil {
			p.ExistingBranches = make(map[string]bool)
		}
		p.ExistingBranches[request.SourceBranch] = true
	}
	return &entities.PullRequest{
		ID:     len(p.OpenCalls),
		Title:  request.Title,
		URL:    "https://example.com/pulls/" + request.SourceBranch,
		Status: "open",
	}, nil
}

func (p *SpyPullRequestHost) PullRequestExists(
	_ context.Context, repository entities.RepositoryData, sourceBranch string,
) (bool, error) {
	p.ExistsCalls = append(p.ExistsCalls, sourceBranch)
	p.ExistsRepository = repository
	return p.ExistingBranches[sourceBranch], p.ExistsErr
}
