//go:build unit

package terraform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/terraform"
)

const mainTF = `module "vpc" {
  source = "git::https://github.com/acme/terraform-aws-vpc.git//modules/vpc?ref=v1.0.0"
  cidr   = "10.0.0.0/16"
}

module "registry" {
  source  = "terraform-aws-modules/s3-bucket/aws"
  version = "3.0.0"
}
`

const networkTF = `module "subnets" {
  source = "git::https://github.com/acme/terraform-aws-vpc.git//modules/vpc?ref=v1.0.0"
}
`

type stubTagLister struct {
	tags  map[string][]string
	err   error
	calls []string
}

func (s *stubTagLister) ListTags(_ context.Context, url string) ([]string, error) {
	s.calls = append(s.calls, url)
	if s.err != nil {
		return nil, s.err
	}
	return s.tags[url], nil
}

func writeTerraform(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte(mainTF), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "network"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network", "subnets.tf"), []byte(networkTF), 0o600))
	return dir
}

func TestTerraformEcosystemRepository_FindUpdates(t *testing.T) {
	t.Parallel()

	t.Run("should group module occurrences by source and pick the highest allowed tag", func(t *testing.T) {
		t.Parallel()

		// given
		dir := writeTerraform(t)
		lister := &stubTagLister{tags: map[string][]string{
			"https://github.com/acme/terraform-aws-vpc.git": {"v1.0.0", "v1.1.0", "v2.0.0", "latest"},
		}}
		repo := terraform.NewTerraformEcosystemRepository(lister)

		// when
		updates, err := repo.FindUpdates(
			context.Background(), dir, entities.NewPackageSources(), entities.VersionChangeMinor,
		)

		// then
		require.NoError(t, err)
		require.Len(t, updates, 1)
		assert.Equal(t, "git::https://github.com/acme/terraform-aws-vpc.git//modules/vpc", updates[0].SelectedID())
		assert.Equal(t, "v1.1.0", updates[0].SelectedVersion())
		assert.Len(t, updates[0].CurrentPackages(), 2)
		assert.Equal(t, []string{"https://github.com/acme/terraform-aws-vpc.git"}, lister.calls)
	})

	t.Run("should skip modules whose tags cannot be listed", func(t *testing.T) {
		t.Parallel()

		// given
		dir := writeTerraform(t)
		repo := terraform.NewTerraformEcosystemRepository(&stubTagLister{err: errors.New("auth required")})

		// when
		updates, err := repo.FindUpdates(
			context.Background(), dir, entities.NewPackageSources(), entities.VersionChangeMajor,
		)

		// then
		require.NoError(t, err)
		assert.Empty(t, updates)
	})
}

func TestTerraformEcosystemRepository_Apply(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite the ref in every file referencing the module", func(t *testing.T) {
		t.Parallel()

		// given
		dir := writeTerraform(t)
		lister := &stubTagLister{tags: map[string][]string{
			"https://github.com/acme/terraform-aws-vpc.git": {"v2.0.0"},
		}}
		repo := terraform.NewTerraformEcosystemRepository(lister)
		updates, err := repo.FindUpdates(
			context.Background(), dir, entities.NewPackageSources(), entities.VersionChangeMajor,
		)
		require.NoError(t, err)
		require.Len(t, updates, 1)

		// when
		err = repo.Apply(context.Background(), dir, updates[0])

		// then
		require.NoError(t, err)
		for _, file := range []string{"main.tf", filepath.Join("network", "subnets.tf")} {
			content, readErr := os.ReadFile(filepath.Join(dir, file))
			require.NoError(t, readErr)
			assert.Contains(t, string(content), "terraform-aws-vpc.git//modules/vpc?ref=v2.0.0")
			assert.NotContains(t, string(content), "?ref=v1.0.0")
		}
	})

	t.Run("should fail when the file no longer references the module", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "main.tf"), []byte("# empty\n"), 0o600))
		update, err := entities.NewPackageUpdateSet(
			"terraform",
			entities.PackageSearchMetadata{
				Identity: entities.PackageIdentity{ID: "git::https://github.com/acme/x.git", Version: "v2.0.0"},
			},
			[]entities.PackageInProject{{
				Identity: entities.PackageIdentity{ID: "git::https://github.com/acme/x.git", Version: "v1.0.0"},
				Path:     entities.PackagePath{RelativePath: "main.tf"},
			}},
		)
		require.NoError(t, err)
		repo := terraform.NewTerraformEcosystemRepository(&stubTagLister{})

		// when
		err = repo.Apply(context.Background(), dir, update)

		// then
		require.Error(t, err)
	})
}

func TestTerraformEcosystemRepository_Detect(t *testing.T) {
	t.Parallel()

	t.Run("should not detect a folder without .tf files", func(t *testing.T) {
		t.Parallel()

		// given
		repo := terraform.NewEcosystemRepository()

		// when
		detected := repo.Detect(t.TempDir())

		// then
		assert.False(t, detected)
	})
}
