package terraform

import (
	"regexp"
	"strings"
)

const refParam = "ref="

// moduleSource is a Terraform module source split around its "ref" query parameter.
type moduleSource struct {
	id  string // source without the ref parameter
	ref string
}

// parseModuleSource returns false for registry and local modules and for git
// sources that are not pinned to a ref.
func parseModuleSource(raw string) (moduleSource, bool) {
	if !isGitModule(raw) {
		return moduleSource{}, false
	}

	base, query, hasQuery := strings.Cut(raw, "?")
	if !hasQuery {
		return moduleSource{}, false
	}

	var ref string
	var kept []string
	for _, param := range strings.Split(query, "&") {
		if value, found := strings.CutPrefix(param, refParam); found && ref == "" {
			ref = value
			continue
		}
		kept = append(kept, param)
	}
	if ref == "" {
		return moduleSource{}, false
	}

	id := base
	if len(kept) > 0 {
		id += "?" + strings.Join(kept, "&")
	}
	return moduleSource{id: id, ref: ref}, true
}

// withRef returns raw with its ref parameter set to ref.
func withRef(raw, ref string) string {
	base, query, _ := strings.Cut(raw, "?")
	params := strings.Split(query, "&")
	for i, param := range params {
		if strings.HasPrefix(param, refParam) {
			params[i] = refParam + ref
			break
		}
	}
	return base + "?" + strings.Join(params, "&")
}

func isGitModule(source string) bool {
	return strings.HasPrefix(source, "git::") ||
		strings.HasPrefix(source, "git@") ||
		strings.Contains(source, "github.com") ||
		strings.Contains(source, "gitlab.com") ||
		strings.Contains(source, "bitbucket.org") ||
		strings.Contains(source, "dev.azure.com") ||
		strings.Contains(source, "_git/")
}

var scpLikeURL = regexp.MustCompile(`^git@([^:]+):(.+)$`)

// cloneURL turns a module id into a URL go-git can list refs from. SCP-like
// sources are returned as ssh:// URLs.
func cloneURL(id string) string {
	url := strings.TrimPrefix(id, "git::")
	url, _, _ = strings.Cut(url, "?")

	if m := scpLikeURL.FindStringSubmatch(url); m != nil {
		path, _, _ := strings.Cut(m[2], "//")
		return "ssh://git@" + m[1] + "/" + path
	}

	scheme := "https://"
	if s, rest, found := strings.Cut(url, "://"); found {
		scheme = s + "://"
		url = rest
	}
	// "//" separates the repository from a subdirectory
	url, _, _ = strings.Cut(url, "//")
	return scheme + url
}

// displayName is the last path element of the repository, e.g. "terraform-aws-vpc".
func displayName(id string) string {
	url := cloneURL(id)
	url = strings.TrimSuffix(url, ".git")
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}
