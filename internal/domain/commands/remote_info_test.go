//go:build unit

package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
)

func TestParseRemoteURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		remote string
		want   commands.RemoteInfo
	}{
		{
			name:   "should parse an scp-like GitHub remote",
			remote: "git@github.com:acme/app.git",
			want:   commands.RemoteInfo{ProviderType: "github", Org: "acme", RepoName: "app"},
		},
		{
			name:   "should parse an HTTPS GitHub remote with trailing whitespace",
			remote: "https://github.com/acme/app.git\n",
			want:   commands.RemoteInfo{ProviderType: "github", Org: "acme", RepoName: "app"},
		},
		{
			name:   "should parse an ssh:// GitHub remote",
			remote: "ssh://git@github.com/acme/app",
			want:   commands.RemoteInfo{ProviderType: "github", Org: "acme", RepoName: "app"},
		},
		{
			name:   "should keep GitLab subgroups in the owner",
			remote: "https://gitlab.com/platform/backend/billing.git",
			want:   commands.RemoteInfo{ProviderType: "gitlab", Org: "platform/backend", RepoName: "billing"},
		},
		{
			name:   "should parse an scp-like GitLab remote",
			remote: "git@gitlab.com:platform/billing.git",
			want:   commands.RemoteInfo{ProviderType: "gitlab", Org: "platform", RepoName: "billing"},
		},
		{
			name:   "should parse an Azure DevOps SSH remote",
			remote: "git@ssh.dev.azure.com:v3/contoso/platform/api",
			want: commands.RemoteInfo{
				ProviderType: "azuredevops", Org: "contoso", Project: "platform", RepoName: "api",
			},
		},
		{
			name:   "should parse an Azure DevOps HTTPS remote with a user",
			remote: "https://contoso@dev.azure.com/contoso/platform/_git/api",
			want: commands.RemoteInfo{
				ProviderType: "azuredevops", Org: "contoso", Project: "platform", RepoName: "api",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// when
			info, err := commands.ParseRemoteURL(tc.remote)

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.want, *info)
		})
	}

	t.Run("should reject remotes of other hosts", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := commands.ParseRemoteURL("https://bitbucket.org/acme/app.git")

		// then
		require.ErrorIs(t, err, commands.ErrUnsupportedRemote)
		assert.Contains(t, err.Error(), "bitbucket.org")
	})

	t.Run("should reject remotes missing path segments", func(t *testing.T) {
		t.Parallel()

		for _, remote := range []string{
			"https://github.com/acme",
			"git@ssh.dev.azure.com:v3/contoso",
			"https://dev.azure.com/contoso/platform/api",
			"github.com",
		} {
			// when
			_, err := commands.ParseRemoteURL(remote)

			// then
			require.ErrorIs(t, err, commands.ErrMalformedRemote, remote)
		}
	})
}

func TestRemoteInfoFork(t *testing.T) {
	t.Parallel()

	t.Run("should push over HTTPS when origin uses SSH", func(t *testing.T) {
		t.Parallel()

		// given
		info, err := commands.ParseRemoteURL("git@github.com:acme/app.git")
		require.NoError(t, err)

		// when
		fork := info.Fork()

		// then
		assert.Equal(t, "acme", fork.Owner)
		assert.Equal(t, "app", fork.Name)
		assert.Equal(t, "https://github.com/acme/app.git", fork.URL)
	})

	t.Run("should address GitLab projects by their full namespace", func(t *testing.T) {
		t.Parallel()

		// given
		info, err := commands.ParseRemoteURL("git@gitlab.com:platform/backend/billing.git")
		require.NoError(t, err)

		// when
		fork := info.Fork()

		// then
		assert.Equal(t, "platform/backend", fork.Owner)
		assert.Equal(t, "https://gitlab.com/platform/backend/billing.git", fork.URL)
	})

	t.Run("should address Azure DevOps repositories by organization and project", func(t *testing.T) {
		t.Parallel()

		// given
		info, err := commands.ParseRemoteURL("git@ssh.dev.azure.com:v3/contoso/platform/api")
		require.NoError(t, err)

		// when
		fork := info.Fork()

		// then
		assert.Equal(t, "contoso/platform", fork.Owner)
		assert.Equal(t, "api", fork.Name)
		assert.Equal(t, "https://dev.azure.com/contoso/platform/_git/api", info.HTTPSURL())
	})
}

func TestResolveTokenFromEnv(t *testing.T) {
	t.Run("should take the first variable that is set", func(t *testing.T) {
		// given
		t.Setenv("GITHUB_TOKEN", "primary")
		t.Setenv("GH_TOKEN", "secondary")

		// when
		token := commands.ResolveTokenFromEnv("github")

		// then
		assert.Equal(t, "primary", token)
	})

	t.Run("should skip empty variables", func(t *testing.T) {
		// given
		t.Setenv("AZURE_DEVOPS_EXT_PAT", "")
		t.Setenv("SYSTEM_ACCESSTOKEN", "pipeline")

		// when
		token := commands.ResolveTokenFromEnv("azuredevops")

		// then
		assert.Equal(t, "pipeline", token)
	})

	t.Run("should return nothing for providers without variables", func(t *testing.T) {
		// when
		token := commands.ResolveTokenFromEnv("bitbucket")

		// then
		assert.Empty(t, token)
	})
}

func TestTokenEnvHint(t *testing.T) {
	t.Parallel()

	t.Run("should list the variables of each provider", func(t *testing.T) {
		t.Parallel()

		// given
		expected := map[string]string{
			"github":      "GITHUB_TOKEN or GH_TOKEN",
			"gitlab":      "GITLAB_TOKEN or GL_TOKEN",
			"azuredevops": "AZURE_DEVOPS_EXT_PAT or SYSTEM_ACCESSTOKEN",
			"bitbucket":   "<unknown provider>",
		}

		for provider, hint := range expected {
			// when / then
			assert.Equal(t, hint, commands.TokenEnvHint(provider), provider)
		}
	})
}
