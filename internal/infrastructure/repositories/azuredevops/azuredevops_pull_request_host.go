package azuredevops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

const (
	providerName   = "azuredevops"
	gitUsername    = "pat"
	defaultBaseURL = "https://dev.azure.com"
	apiVersion     = "7.0"
	requestTimeout = 30 * time.Second
	requestRetries = 2
)

var (
	errInvalidOwner = errors.New(`azure devops owner must be "organization/project"`)
	errCrossFork    = errors.New("pull requests from another fork are not supported")
)

// AzureDevOpsPullRequestHost implements repositories.PullRequestHost over the Azure DevOps REST API.
// ForkData.Owner is "organization/project" and ForkData.Name is the repository.
type AzureDevOpsPullRequestHost struct {
	baseURL string
	token   string
	client  *retryablehttp.Client
}

// NewPullRequestHost creates an Azure DevOps host authenticated with a personal access token.
func NewPullRequestHost(token string) repositories.PullRequestHost {
	return NewAzureDevOpsPullRequestHost(defaultBaseURL, token)
}

// NewAzureDevOpsPullRequestHost creates a host against baseURL.
func NewAzureDevOpsPullRequestHost(baseURL, token string) *AzureDevOpsPullRequestHost {
	client := retryablehttp.NewClient()
	client.RetryMax = requestRetries
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = nil

	return &AzureDevOpsPullRequestHost{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

func (p *AzureDevOpsPullRequestHost) Name() string        { return providerName }
func (p *AzureDevOpsPullRequestHost) GitUsername() string { return gitUsername }

type label struct {
	Name string `json:"name"`
}

type createPullRequest struct {
	SourceRefName string  `json:"sourceRefName"`
	TargetRefName string  `json:"targetRefName"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Labels        []label `json:"labels,omitempty"`
}

type pullRequest struct {
	ID     int    `json:"pullRequestId"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// OpenPullRequest creates an active pull request. Reviewers are not assigned:
// Azure DevOps needs identity ids rather than names.
func (p *AzureDevOpsPullRequestHost) OpenPullRequest(
	ctx context.Context,
	fork entities.ForkData,
	request entities.NewPullRequest,
	reviewers []string,
) (*entities.PullRequest, error) {
	if request.HeadOwner != "" && request.HeadOwner != fork.Owner {
		return nil, fmt.Errorf("%w: %s", errCrossFork, request.HeadOwner)
	}

	payload := createPullRequest{
		SourceRefName: refName(request.SourceBranch),
		TargetRefName: refName(request.TargetBranch),
		Title:         request.Title,
		Description:   request.Description,
	}
	for _, name := range request.Labels {
		payload.Labels = append(payload.Labels, label{Name: name})
	}

	endpoint, err := p.pullRequestsEndpoint(fork)
	if err != nil {
		return nil, err
	}
	resp, err := p.doRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	var created pullRequest
	if err = json.Unmarshal(resp, &created); err != nil {
		return nil, fmt.Errorf("failed to parse pull request response: %w", err)
	}
	if len(reviewers) > 0 {
		logger.Warnf("[azuredevops] Reviewers %v were not assigned to PR #%d", reviewers, created.ID)
	}

	return &entities.PullRequest{
		ID:     created.ID,
		Title:  created.Title,
		URL:    fmt.Sprintf("%s/%s/_git/%s/pullrequest/%d", p.baseURL, fork.Owner, fork.Name, created.ID),
		Status: created.Status,
	}, nil
}

func (p *AzureDevOpsPullRequestHost) PullRequestExists(
	ctx context.Context,
	repository entities.RepositoryData,
	sourceBranch string,
) (bool, error) {
	endpoint, err := p.pullRequestsEndpoint(repository.Pull)
	if err != nil {
		return false, err
	}
	endpoint += "&searchCriteria.sourceRefName=" + url.QueryEscape(refName(sourceBranch)) +
		"&searchCriteria.status=active"

	resp, err := p.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to list pull requests: %w", err)
	}

	var result struct {
		Value []pullRequest `json:"value"`
		Count int           `json:"count"`
	}
	if err = json.Unmarshal(resp, &result); err != nil {
		return false, fmt.Errorf("failed to parse pull requests response: %w", err)
	}
	return len(result.Value) > 0, nil
}

func (p *AzureDevOpsPullRequestHost) pullRequestsEndpoint(fork entities.ForkData) (string, error) {
	org, project, found := strings.Cut(fork.Owner, "/")
	if !found || org == "" || project == "" {
		return "", fmt.Errorf("%w: %q", errInvalidOwner, fork.Owner)
	}
	return fmt.Sprintf(
		"/%s/%s/_apis/git/repositories/%s/pullrequests?api-version=%s",
		url.PathEscape(org), url.PathEscape(project), url.PathEscape(fork.Name), apiVersion,
	), nil
}

func (p *AzureDevOpsPullRequestHost) doRequest(
	ctx context.Context,
	method, endpoint string,
	body interface{},
) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, p.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(":" + p.token))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func refName(branch string) string {
	if strings.HasPrefix(branch, "refs/") {
		return branch
	}
	return "refs/heads/" + branch
}
