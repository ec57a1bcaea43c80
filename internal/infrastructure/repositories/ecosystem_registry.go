package repositories

import (
	"sort"

	domainRepos "github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

// EcosystemRegistry manages all registered dependency ecosystems.
type EcosystemRegistry struct {
	ecosystems map[string]domainRepos.EcosystemRepository
}

// NewEcosystemRegistry creates a registry holding the given ecosystems.
func NewEcosystemRegistry(ecosystems ...domainRepos.EcosystemRepository) *EcosystemRegistry {
	r := &EcosystemRegistry{
		ecosystems: make(map[string]domainRepos.EcosystemRepository),
	}
	for _, e := range ecosystems {
		r.Register(e)
	}
	return r
}

// Register adds an ecosystem under its name, replacing any previous one.
func (r *EcosystemRegistry) Register(e domainRepos.EcosystemRepository) {
	r.ecosystems[e.Name()] = e
}

// Get returns the ecosystem with the given name, or nil if not registered.
func (r *EcosystemRegistry) Get(name string) domainRepos.EcosystemRepository {
	return r.ecosystems[name]
}

// All returns every registered ecosystem sorted by name, so scans run in a stable order.
func (r *EcosystemRegistry) All() []domainRepos.EcosystemRepository {
	result := make([]domainRepos.EcosystemRepository, 0, len(r.ecosystems))
	for _, e := range r.ecosystems {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// Names returns the registered ecosystem names in alphabetical order.
func (r *EcosystemRegistry) Names() []string {
	names := make([]string, 0, len(r.ecosystems))
	for _, e := range r.All() {
		names = append(names, e.Name())
	}
	return names
}
