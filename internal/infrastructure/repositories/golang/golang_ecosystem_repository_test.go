//go:build unit

package golang_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/repositories/golang"
)

const goModContent = `module example.com/app

go 1.22

require (
	example.com/pinned v1.0.0
	github.com/foo/bar v1.2.0
	github.com/foo/baz v0.1.0 // indirect
)

replace example.com/pinned => ../pinned
`

func newProxyServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/github.com/foo/bar/@v/list", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("v1.2.0\nv1.3.0\nv1.2.5\nv1.4.0-rc.1\n"))
	})
	mux.HandleFunc("/github.com/foo/bar/@v/v1.3.0.info", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Version":"v1.3.0","Time":"2024-01-02T03:04:05Z"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeGoMod(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(goModContent), 0o600))
}

type runnerCall struct {
	dir  string
	env  []string
	args []string
}

func TestGoEcosystemRepository_Detect(t *testing.T) {
	t.Parallel()

	t.Run("should detect a nested go.mod", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "tools"), 0o755))
		writeGoMod(t, filepath.Join(dir, "tools"))
		repo := golang.NewEcosystemRepository()

		// when
		detected := repo.Detect(dir)

		// then
		assert.True(t, detected)
	})

	t.Run("should ignore go.mod files under vendor", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor", "lib"), 0o755))
		writeGoMod(t, filepath.Join(dir, "vendor", "lib"))
		repo := golang.NewEcosystemRepository()

		// when
		detected := repo.Detect(dir)

		// then
		assert.False(t, detected)
	})
}

func TestGoEcosystemRepository_FindUpdates(t *testing.T) {
	t.Parallel()

	t.Run("should propose the highest stable version for direct requirements only", func(t *testing.T) {
		t.Parallel()

		// given
		server := newProxyServer(t)
		dir := t.TempDir()
		writeGoMod(t, dir)
		repo := golang.NewGoEcosystemRepository(golang.NewProxyClient(), nil)

		// when
		updates, err := repo.FindUpdates(
			context.Background(), dir, entities.NewPackageSources(server.URL), entities.VersionChangeMajor,
		)

		// then
		require.NoError(t, err)
		require.Len(t, updates, 1)
		assert.Equal(t, "golang", updates[0].Ecosystem())
		assert.Equal(t, "github.com/foo/bar", updates[0].SelectedID())
		assert.Equal(t, "v1.3.0", updates[0].SelectedVersion())
		assert.Equal(t, server.URL, updates[0].Source())
		assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), updates[0].Published().UTC())
		assert.Equal(t, []string{"v1.2.0"}, updates[0].CurrentVersions())
		assert.Equal(t, "go.mod", updates[0].CurrentPackages()[0].Path.RelativePath)
	})

	t.Run("should respect a patch-only change policy", func(t *testing.T) {
		t.Parallel()

		// given
		server := newProxyServer(t)
		dir := t.TempDir()
		writeGoMod(t, dir)
		repo := golang.NewGoEcosystemRepository(golang.NewProxyClient(), nil)

		// when
		updates, err := repo.FindUpdates(
			context.Background(), dir, entities.NewPackageSources(server.URL), entities.VersionChangePatch,
		)

		// then
		require.NoError(t, err)
		require.Len(t, updates, 1)
		assert.Equal(t, "v1.2.5", updates[0].SelectedVersion())
		assert.True(t, updates[0].Published().IsZero())
	})

	t.Run("should return nothing when no source knows the module", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(server.Close)
		dir := t.TempDir()
		writeGoMod(t, dir)
		repo := golang.NewGoEcosystemRepository(golang.NewProxyClient(), nil)

		// when
		updates, err := repo.FindUpdates(
			context.Background(), dir, entities.NewPackageSources(server.URL), entities.VersionChangeMajor,
		)

		// then
		require.NoError(t, err)
		assert.Empty(t, updates)
	})
}

func TestGoEcosystemRepository_ApplyAndRestore(t *testing.T) {
	t.Parallel()

	t.Run("should rewrite the require directive", func(t *testing.T) {
		t.Parallel()

		// given
		server := newProxyServer(t)
		dir := t.TempDir()
		writeGoMod(t, dir)
		repo := golang.NewGoEcosystemRepository(golang.NewProxyClient(), nil)
		updates, err := repo.FindUpdates(
			context.Background(), dir, entities.NewPackageSources(server.URL), entities.VersionChangeMajor,
		)
		require.NoError(t, err)
		require.Len(t, updates, 1)

		// when
		err = repo.Apply(context.Background(), dir, updates[0])

		// then
		require.NoError(t, err)
		content, readErr := os.ReadFile(filepath.Join(dir, "go.mod"))
		require.NoError(t, readErr)
		assert.Contains(t, string(content), "github.com/foo/bar v1.3.0")
		assert.NotContains(t, string(content), "github.com/foo/bar v1.2.0")
		assert.Contains(t, string(content), "github.com/foo/baz v0.1.0 // indirect")
	})

	t.Run("should run go mod tidy through the sources", func(t *testing.T) {
		t.Parallel()

		// given
		var calls []runnerCall
		runner := func(_ context.Context, dir string, env []string, args ...string) ([]byte, error) {
			calls = append(calls, runnerCall{dir: dir, env: env, args: args})
			return nil, nil
		}
		dir := t.TempDir()
		update := newUpdate(t, dir)
		repo := golang.NewGoEcosystemRepository(golang.NewProxyClient(), runner)

		// when
		err := repo.Restore(
			context.Background(), dir, update, entities.NewPackageSources("https://a.example", "https://b.example"),
		)

		// then
		require.NoError(t, err)
		require.Len(t, calls, 1)
		assert.Equal(t, dir, calls[0].dir)
		assert.Equal(t, []string{"mod", "tidy"}, calls[0].args)
		assert.Contains(t, calls[0].env, "GOPROXY=https://a.example,https://b.example")
	})

	t.Run("should return an error when tidy fails", func(t *testing.T) {
		t.Parallel()

		// given
		runner := func(context.Context, string, []string, ...string) ([]byte, error) {
			return []byte("missing go.sum entry"), errors.New("exit status 1")
		}
		dir := t.TempDir()
		repo := golang.NewGoEcosystemRepository(golang.NewProxyClient(), runner)

		// when
		err := repo.Restore(context.Background(), dir, newUpdate(t, dir), entities.NewPackageSources())

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing go.sum entry")
	})
}

func newUpdate(t *testing.T, dir string) entities.PackageUpdateSet {
	t.Helper()

	update, err := entities.NewPackageUpdateSet(
		"golang",
		entities.PackageSearchMetadata{
			Identity: entities.PackageIdentity{ID: "github.com/foo/bar", Version: "v1.3.0"},
		},
		[]entities.PackageInProject{{
			Identity: entities.PackageIdentity{ID: "github.com/foo/bar", Version: "v1.2.0"},
			Path:     entities.PackagePath{BaseDirectory: dir, RelativePath: "go.mod", Kind: "go.mod"},
		}},
	)
	require.NoError(t, err)
	return update
}
