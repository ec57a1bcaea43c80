package golang

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

const (
	ecosystemName = "golang"
	goModFile     = "go.mod"
	goModFileMode = 0o644
)

// skippedDirs are never descended into while scanning.
var skippedDirs = map[string]bool{ //nolint:gochecknoglobals // lookup table
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
}

// GoEcosystemRepository implements repositories.EcosystemRepository for Go modules.
// Versions come from GOPROXY-compatible sources; edits go through modfile and
// restores run "go mod tidy".
type GoEcosystemRepository struct {
	proxy  *ProxyClient
	runner CommandRunner
}

// NewGoEcosystemRepository creates a Go ecosystem backed by the given proxy client
// and command runner.
func NewGoEcosystemRepository(proxy *ProxyClient, runner CommandRunner) *GoEcosystemRepository {
	return &GoEcosystemRepository{proxy: proxy, runner: runner}
}

// NewEcosystemRepository creates a Go ecosystem with the default proxy client and toolchain.
func NewEcosystemRepository() repositories.EcosystemRepository {
	return NewGoEcosystemRepository(NewProxyClient(), ExecRunner)
}

func (it *GoEcosystemRepository) Name() string { return ecosystemName }

// Detect returns true if folder contains at least one go.mod outside skipped directories.
func (it *GoEcosystemRepository) Detect(folder string) bool {
	files, err := findGoModFiles(folder)
	return err == nil && len(files) > 0
}

// FindUpdates scans every go.mod file below folder and proposes, per required
// module, the highest version allowed by the change policy.
func (it *GoEcosystemRepository) FindUpdates(
	ctx context.Context,
	folder string,
	sources entities.PackageSources,
	allowed entities.VersionChange,
) ([]entities.PackageUpdateSet, error) {
	occurrences, order, err := scanRequirements(folder)
	if err != nil {
		return nil, err
	}
	logger.Infof("[golang] Found %d required modules in %s", len(order), folder)

	var updates []entities.PackageUpdateSet
	for _, modulePath := range order {
		current := occurrences[modulePath]
		selected, found := it.selectVersion(ctx, modulePath, highestVersion(current), sources, allowed)
		if !found {
			continue
		}

		update, buildErr := entities.NewPackageUpdateSet(ecosystemName, selected, current)
		if buildErr != nil {
			logger.Warnf("[golang] Skipping %s: %v", modulePath, buildErr)
			continue
		}
		logger.Debugf("[golang] %s", update)
		updates = append(updates, update)
	}

	return updates, nil
}

// selectVersion returns the best candidate from the first source that has one.
func (it *GoEcosystemRepository) selectVersion(
	ctx context.Context,
	modulePath, current string,
	sources entities.PackageSources,
	allowed entities.VersionChange,
) (entities.PackageSearchMetadata, bool) {
	for _, source := range sources.Items() {
		versions, err := it.proxy.ListVersions(ctx, source, modulePath)
		if err != nil {
			if !errors.Is(err, errModuleNotFound) {
				logger.Warnf("[golang] Failed to list versions of %s on %s: %v", modulePath, source, err)
			}
			continue
		}

		best := bestAllowedVersion(current, versions, allowed)
		if best == "" {
			continue
		}

		metadata := entities.PackageSearchMetadata{
			Identity: entities.PackageIdentity{ID: modulePath, Version: best},
			Source:   source,
		}
		info, infoErr := it.proxy.Info(ctx, source, modulePath, best)
		if infoErr != nil {
			logger.Debugf("[golang] No publish date for %s@%s: %v", modulePath, best, infoErr)
		} else {
			metadata.Published = info.Time
		}
		return metadata, true
	}
	return entities.PackageSearchMetadata{}, false
}

// Apply rewrites the require directive of every go.mod listed in the update.
func (it *GoEcosystemRepository) Apply(
	_ context.Context,
	folder string,
	update entities.PackageUpdateSet,
) error {
	for _, path := range distinctFiles(update) {
		if err := rewriteRequire(filepath.Join(folder, path), update.SelectedID(), update.SelectedVersion()); err != nil {
			return err
		}
		logger.Infof("[golang] Updated %s in %s to %s", update.SelectedID(), path, update.SelectedVersion())
	}
	return nil
}

// Restore runs "go mod tidy" in each module directory touched by the update,
// resolving through the run's sources.
func (it *GoEcosystemRepository) Restore(
	ctx context.Context,
	folder string,
	update entities.PackageUpdateSet,
	sources entities.PackageSources,
) error {
	env := []string{"GOFLAGS=-mod=mod"}
	if sources.Len() > 0 {
		env = append(env, "GOPROXY="+strings.Join(sources.Items(), ","))
	}

	for _, path := range distinctFiles(update) {
		dir := filepath.Dir(filepath.Join(folder, path))
		output, err := it.runner(ctx, dir, env, "mod", "tidy")
		if err != nil {
			return fmt.Errorf("go mod tidy failed in %s: %w\n%s", dir, err, output)
		}
	}
	return nil
}

func findGoModFiles(folder string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != folder && (skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == goModFile {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", folder, err)
	}
	sort.Strings(files)
	return files, nil
}

// scanRequirements returns the direct requirements of every go.mod, grouped by
// module path, plus the module paths in first-seen order.
func scanRequirements(folder string) (map[string][]entities.PackageInProject, []string, error) {
	files, err := findGoModFiles(folder)
	if err != nil {
		return nil, nil, err
	}

	occurrences := make(map[string][]entities.PackageInProject)
	var order []string
	for _, file := range files {
		data, readErr := os.ReadFile(file)
		if readErr != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", file, readErr)
		}
		parsed, parseErr := modfile.Parse(file, data, nil)
		if parseErr != nil {
			logger.Warnf("[golang] Skipping unparsable %s: %v", file, parseErr)
			continue
		}

		relative, _ := filepath.Rel(folder, file)
		replaced := make(map[string]bool)
		for _, rep := range parsed.Replace {
			replaced[rep.Old.Path] = true
		}

		for _, req := range parsed.Require {
			if req.Indirect || replaced[req.Mod.Path] {
				continue
			}
			if _, seen := occurrences[req.Mod.Path]; !seen {
				order = append(order, req.Mod.Path)
			}
			line := 0
			if req.Syntax != nil {
				line = req.Syntax.Start.Line
			}
			occurrences[req.Mod.Path] = append(occurrences[req.Mod.Path], entities.PackageInProject{
				Identity: entities.PackageIdentity{ID: req.Mod.Path, Version: req.Mod.Version},
				Path: entities.PackagePath{
					BaseDirectory: folder,
					RelativePath:  filepath.ToSlash(relative),
					Kind:          goModFile,
				},
				Line: line,
			})
		}
	}
	return occurrences, order, nil
}

func highestVersion(current []entities.PackageInProject) string {
	highest := ""
	for _, pip := range current {
		if highest == "" || semver.Compare(pip.Identity.Version, highest) > 0 {
			highest = pip.Identity.Version
		}
	}
	return highest
}

func bestAllowedVersion(current string, versions []string, allowed entities.VersionChange) string {
	best := ""
	for _, v := range versions {
		if !semver.IsValid(v) || !allowed.Allows(current, v) {
			continue
		}
		if best == "" || semver.Compare(v, best) > 0 {
			best = v
		}
	}
	return best
}

func distinctFiles(update entities.PackageUpdateSet) []string {
	seen := make(map[string]bool)
	var files []string
	for _, pip := range update.CurrentPackages() {
		if !seen[pip.Path.RelativePath] {
			seen[pip.Path.RelativePath] = true
			files = append(files, filepath.FromSlash(pip.Path.RelativePath))
		}
	}
	return files
}

func rewriteRequire(path, modulePath, version string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	parsed, err := modfile.Parse(path, data, nil)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err = parsed.AddRequire(modulePath, version); err != nil {
		return fmt.Errorf("failed to update %s in %s: %w", modulePath, path, err)
	}
	parsed.Cleanup()

	formatted, err := parsed.Format()
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", path, err)
	}
	if err = os.WriteFile(path, formatted, goModFileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
