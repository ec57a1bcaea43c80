//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"time"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// PackageUpdateSetBuilder helps create test update sets with a fluent interface.
type PackageUpdateSetBuilder struct {
	*testkit.BaseBuilder
	ecosystem     string
	id            string
	targetVersion string
	source        string
	published     time.Time
	current       []entities.PackageInProject
}

// NewPackageUpdateSetBuilder creates a new builder with sensible defaults.
func NewPackageUpdateSetBuilder() *PackageUpdateSetBuilder {
	b := &PackageUpdateSetBuilder{BaseBuilder: testkit.NewBaseBuilder()}
	b.defaults()
	return b
}

func (b *PackageUpdateSetBuilder) defaults() {
	b.ecosystem = "golang"
	b.id = "github.com/test/dep"
	b.targetVersion = "v2.0.0"
	b.source = "https://proxy.golang.org"
	b.published = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b.current = nil
}

// WithEcosystem sets the ecosystem name.
func (b *PackageUpdateSetBuilder) WithEcosystem(ecosystem string) *PackageUpdateSetBuilder {
	b.ecosystem = ecosystem
	return b
}

// WithID sets the package id.
func (b *PackageUpdateSetBuilder) WithID(id string) *PackageUpdateSetBuilder {
	b.id = id
	return b
}

// WithTargetVersion sets the version the package is updated to.
func (b *PackageUpdateSetBuilder) WithTargetVersion(version string) *PackageUpdateSetBuilder {
	b.targetVersion = version
	return b
}

// WithSource sets the source the target version was found on.
func (b *PackageUpdateSetBuilder) WithSource(source string) *PackageUpdateSetBuilder {
	b.source = source
	return b
}

// WithPublished sets the publish date of the target version.
func (b *PackageUpdateSetBuilder) WithPublished(published time.Time) *PackageUpdateSetBuilder {
	b.published = published
	return b
}

// WithCurrent adds an occurrence of the package at version in file.
func (b *PackageUpdateSetBuilder) WithCurrent(version, file string) *PackageUpdateSetBuilder {
	b.current = append(b.current, entities.PackageInProject{
		Identity: entities.PackageIdentity{ID: b.id, Version: version},
		Path:     entities.PackagePath{RelativePath: file, Kind: "go.mod"},
	})
	return b
}

// Build creates the update set (satisfies testkit.Builder interface).
func (b *PackageUpdateSetBuilder) Build() interface{} {
	return b.BuildPackageUpdateSet()
}

// BuildPackageUpdateSet creates the update set with a concrete return type.
// It panics on invalid input, which only happens with a misconfigured builder.
func (b *PackageUpdateSetBuilder) BuildPackageUpdateSet() entities.PackageUpdateSet {
	current := b.current
	if len(current) == 0 {
		current = []entities.PackageInProject{{
			Identity: entities.PackageIdentity{ID: b.id, Version: "v1.0.0"},
			Path:     entities.PackagePath{RelativePath: "go.mod", Kind: "go.mod"},
		}}
	}
	for i := range current {
		current[i].Identity.ID = b.id
	}

	update, err := entities.NewPackageUpdateSet(
		b.ecosystem,
		entities.PackageSearchMetadata{
			Identity:  entities.PackageIdentity{ID: b.id, Version: b.targetVersion},
			Source:    b.source,
			Published: b.published,
		},
		current,
	)
	if err != nil {
		panic(err)
	}
	return update
}

// Reset clears the builder state, allowing it to be reused.
func (b *PackageUpdateSetBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.defaults()
	return b
}

// Clone creates a deep copy of the PackageUpdateSetBuilder.
func (b *PackageUpdateSetBuilder) Clone() testkit.Builder {
	current := make([]entities.PackageInProject, len(b.current))
	copy(current, b.current)
	return &PackageUpdateSetBuilder{
		BaseBuilder:   b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		ecosystem:     b.ecosystem,
		id:            b.id,
		targetVersion: b.targetVersion,
		source:        b.source,
		published:     b.published,
		current:       current,
	}
}
