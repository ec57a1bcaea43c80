//go:build unit

package azuredevops_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/azuredevops"
)

var fork = entities.ForkData{ //nolint:gochecknoglobals // fixture
	Owner: "contoso/platform",
	Name:  "api",
	URL:   "https://dev.azure.com/contoso/platform/_git/api",
}

var sameRepository = entities.RepositoryData{Pull: fork, Push: fork} //nolint:gochecknoglobals // fixture

func newHost(t *testing.T, handler http.HandlerFunc) *azuredevops.AzureDevOpsPullRequestHost {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return azuredevops.NewAzureDevOpsPullRequestHost(server.URL, "secret")
}

func TestAzureDevOpsPullRequestHost_OpenPullRequest(t *testing.T) {
	t.Parallel()

	t.Run("should post the pull request with refs and labels", func(t *testing.T) {
		t.Parallel()

		// given
		var path, user, password string
		var body map[string]interface{}
		host := newHost(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			user, password, _ = r.BasicAuth()
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"pullRequestId":12,"title":"t","status":"active"}`))
		})

		// when
		pr, err := host.OpenPullRequest(context.Background(), fork, entities.NewPullRequest{
			PullRequestInput: entities.PullRequestInput{
				SourceBranch: "chore/upgrade-x-to-v2",
				TargetBranch: "main",
				Title:        "t",
				Description:  "d",
			},
			Labels: []string{"dependencies"},
		}, []string{"alice"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 12, pr.ID)
		assert.Equal(t, "active", pr.Status)
		assert.Contains(t, pr.URL, "/contoso/platform/_git/api/pullrequest/12")
		assert.Equal(t, "/contoso/platform/_apis/git/repositories/api/pullrequests", path)
		assert.Empty(t, user)
		assert.Equal(t, "secret", password)
		assert.Equal(t, "refs/heads/chore/upgrade-x-to-v2", body["sourceRefName"])
		assert.Equal(t, "refs/heads/main", body["targetRefName"])
		assert.Equal(t, []interface{}{map[string]interface{}{"name": "dependencies"}}, body["labels"])
	})

	t.Run("should return the API error body", func(t *testing.T) {
		t.Parallel()

		// given
		host := newHost(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message":"an active pull request already exists"}`))
		})

		// when
		_, err := host.OpenPullRequest(context.Background(), fork, entities.NewPullRequest{}, nil)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("should reject an owner without a project", func(t *testing.T) {
		t.Parallel()

		// given
		host := newHost(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		// when
		_, err := host.OpenPullRequest(context.Background(), entities.ForkData{Owner: "contoso", Name: "api"},
			entities.NewPullRequest{}, nil)

		// then
		require.Error(t, err)
	})
}

func TestAzureDevOpsPullRequestHost_PullRequestExists(t *testing.T) {
	t.Parallel()

	t.Run("should search active pull requests from the source branch", func(t *testing.T) {
		t.Parallel()

		// given
		var sourceRef, status string
		host := newHost(t, func(w http.ResponseWriter, r *http.Request) {
			sourceRef = r.URL.Query().Get("searchCriteria.sourceRefName")
			status = r.URL.Query().Get("searchCriteria.status")
			_, _ = w.Write([]byte(`{"value":[{"pullRequestId":5}],"count":1}`))
		})

		// when
		exists, err := host.PullRequestExists(context.Background(), sameRepository, "chore/upgrade-x-to-v2")

		// then
		require.NoError(t, err)
		assert.True(t, exists)
		assert.Equal(t, "refs/heads/chore/upgrade-x-to-v2", sourceRef)
		assert.Equal(t, "active", status)
	})

	t.Run("should report no pull request for an empty result", func(t *testing.T) {
		t.Parallel()

		// given
		host := newHost(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"value":[],"count":0}`))
		})

		// when
		exists, err := host.PullRequestExists(context.Background(), sameRepository, "chore/x")

		// then
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
