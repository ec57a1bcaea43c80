package terraform

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"
)

// TagLister lists the tags of a remote git repository.
type TagLister interface {
	ListTags(ctx context.Context, url string) ([]string, error)
}

// RemoteTagLister asks the remote for its references without cloning.
type RemoteTagLister struct {
	auth transport.AuthMethod
}

// NewRemoteTagLister creates a lister; auth may be nil for public repositories.
func NewRemoteTagLister(auth transport.AuthMethod) *RemoteTagLister {
	return &RemoteTagLister{auth: auth}
}

func (it *RemoteTagLister) ListTags(ctx context.Context, url string) ([]string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: it.auth})
	if err != nil {
		return nil, fmt.Errorf("failed to list references of %s: %w", url, err)
	}

	seen := make(map[string]bool)
	var tags []string
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		tag := strings.TrimSuffix(ref.Name().Short(), "^{}")
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags, nil
}
