package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// HostFactory is a constructor function that creates a PullRequestHost given an auth token.
type HostFactory func(token string) domainRepos.PullRequestHost

// ProviderRegistry manages all registered pull-request host implementations.
type ProviderRegistry struct {
	factories map[string]HostFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[string]HostFactory),
	}
}

// Register adds a host factory under the given name (e.g. "github").
func (r *ProviderRegistry) Register(name string, factory HostFactory) {
	r.factories[name] = factory
}

// Get returns a configured host for the given name and token.
func (r *ProviderRegistry) Get(name, token string) (domainRepos.PullRequestHost, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %q", name)
	}
	return factory(token), nil
}

// Names returns the registered provider names in alphabetical order.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
