package commands

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
	infraRepos "github.com/rios0rios0/autokeeper/internal/infrastructure/repositories"
)

const (
	providerGitHub      = "github"
	providerAzureDevOps = "azuredevops"
	providerGitLab      = "gitlab"

	azureSSHVersion = "v3"
	azureGitSegment = "_git"
)

var (
	errMissingToken      = errors.New("no auth token found")
	errUnsupportedRemote = errors.New("unsupported git remote URL")
	errMalformedRemote   = errors.New("malformed git remote URL")
)

// hostProfile ties a hosted provider to its domain and token variables.
type hostProfile struct {
	provider string
	domain   string
	tokenEnv []string
}

var hostProfiles = []hostProfile{ //nolint:gochecknoglobals // lookup table
	{provider: providerGitHub, domain: "github.com", tokenEnv: []string{"GITHUB_TOKEN", "GH_TOKEN"}},
	{provider: providerGitLab, domain: "gitlab.com", tokenEnv: []string{"GITLAB_TOKEN", "GL_TOKEN"}},
	{
		provider: providerAzureDevOps,
		domain:   "dev.azure.com",
		tokenEnv: []string{"AZURE_DEVOPS_EXT_PAT", "SYSTEM_ACCESSTOKEN"},
	},
}

func profileByProvider(provider string) (hostProfile, bool) {
	for _, profile := range hostProfiles {
		if profile.provider == provider {
			return profile, true
		}
	}
	return hostProfile{}, false
}

func profileByHost(host string) (hostProfile, bool) {
	host = strings.ToLower(host)
	for _, profile := range hostProfiles {
		if host == profile.domain || strings.HasSuffix(host, "."+profile.domain) {
			return profile, true
		}
	}
	return hostProfile{}, false
}

// remoteInfo holds the parsed components of a Git remote URL.
type remoteInfo struct {
	ProviderType string
	Org          string // GitLab subgroups are kept as "group/subgroup"
	Project      string // Azure DevOps only
	RepoName     string
}

// httpsURL is the URL branches are pushed to with token authentication.
func (r remoteInfo) httpsURL() string {
	profile, ok := profileByProvider(r.ProviderType)
	if !ok {
		profile = hostProfiles[0]
	}
	if r.ProviderType == providerAzureDevOps {
		return fmt.Sprintf("https://%s/%s/%s/%s/%s", profile.domain, r.Org, r.Project, azureGitSegment, r.RepoName)
	}
	return fmt.Sprintf("https://%s/%s/%s.git", profile.domain, r.Org, r.RepoName)
}

// fork describes the repository the way the pull-request hosts address it.
func (r remoteInfo) fork() entities.ForkData {
	owner := r.Org
	if r.ProviderType == providerAzureDevOps {
		owner = r.Org + "/" + r.Project
	}
	return entities.ForkData{Owner: owner, Name: r.RepoName, URL: r.httpsURL()}
}

// parseRemoteURL accepts HTTPS, ssh:// and scp-like ("git@host:path") remotes
// of the hosted providers.
func parseRemoteURL(rawURL string) (*remoteInfo, error) {
	host, path, err := splitRemote(strings.TrimSuffix(strings.TrimSpace(rawURL), ".git"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errMalformedRemote, rawURL)
	}
	profile, ok := profileByHost(host)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errUnsupportedRemote, rawURL)
	}

	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	switch profile.provider {
	case providerAzureDevOps:
		return azureRemote(segments, rawURL)
	case providerGitLab:
		if len(segments) < 2 { //nolint:mnd // group + project
			return nil, fmt.Errorf("%w: %s", errMalformedRemote, rawURL)
		}
		last := len(segments) - 1
		return &remoteInfo{
			ProviderType: providerGitLab,
			Org:          strings.Join(segments[:last], "/"),
			RepoName:     segments[last],
		}, nil
	default:
		if len(segments) < 2 { //nolint:mnd // owner + repo
			return nil, fmt.Errorf("%w: %s", errMalformedRemote, rawURL)
		}
		return &remoteInfo{ProviderType: profile.provider, Org: segments[0], RepoName: segments[1]}, nil
	}
}

// azureRemote reads "v3/org/project/repo" (SSH) or "org/project/_git/repo" (HTTPS).
func azureRemote(segments []string, rawURL string) (*remoteInfo, error) {
	if len(segments) != 4 { //nolint:mnd // both forms have four segments
		return nil, fmt.Errorf("%w: %s", errMalformedRemote, rawURL)
	}

	switch {
	case segments[0] == azureSSHVersion:
		segments = segments[1:]
	case segments[2] == azureGitSegment:
		segments = []string{segments[0], segments[1], segments[3]}
	default:
		return nil, fmt.Errorf("%w: %s", errMalformedRemote, rawURL)
	}
	return &remoteInfo{
		ProviderType: providerAzureDevOps,
		Org:          segments[0],
		Project:      segments[1],
		RepoName:     segments[2],
	}, nil
}

// splitRemote returns the host and path of a URL or scp-like remote.
func splitRemote(remote string) (string, string, error) {
	if !strings.Contains(remote, "://") {
		userHost, path, found := strings.Cut(remote, ":")
		if !found {
			return "", "", errMalformedRemote
		}
		if _, host, hasUser := strings.Cut(userHost, "@"); hasUser {
			return host, path, nil
		}
		return userHost, path, nil
	}

	parsed, err := url.Parse(remote)
	if err != nil {
		return "", "", err
	}
	return parsed.Hostname(), parsed.Path, nil
}

func resolveTokenFromEnv(providerType string) string {
	profile, ok := profileByProvider(providerType)
	if !ok {
		return ""
	}
	for _, name := range profile.tokenEnv {
		if token := os.Getenv(name); token != "" {
			return token
		}
	}
	return ""
}

func tokenEnvHint(providerType string) string {
	profile, ok := profileByProvider(providerType)
	if !ok {
		return "<unknown provider>"
	}
	return strings.Join(profile.tokenEnv, " or ")
}

// resolveSourceControl fills the provider and token of settings for remote.
// The token comes from the flag, then the settings, then the environment.
// In report-only mode a missing token is allowed and no host is returned.
func resolveSourceControl(
	registry *infraRepos.ProviderRegistry,
	settings entities.Settings,
	remote *remoteInfo,
	flagToken string,
) (entities.Settings, repositories.PullRequestHost, error) {
	if settings.SourceControl.Provider == "" {
		settings.SourceControl.Provider = remote.ProviderType
	}
	if flagToken != "" {
		settings.SourceControl.Token = flagToken
	}
	if settings.SourceControl.Token == "" {
		settings.SourceControl.Token = resolveTokenFromEnv(settings.SourceControl.Provider)
	}

	if settings.SourceControl.Token == "" {
		if settings.IsReportOnly() {
			return settings, nil, nil
		}
		return settings, nil, fmt.Errorf(
			"%w for %s; set --token or the appropriate env var (%s)",
			errMissingToken, settings.SourceControl.Provider, tokenEnvHint(settings.SourceControl.Provider),
		)
	}

	host, err := registry.Get(settings.SourceControl.Provider, settings.SourceControl.Token)
	if err != nil {
		return settings, nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return settings, host, nil
}
