package python

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

const (
	ecosystemName     = "python"
	requirementsKind  = "requirements.txt"
	requirementsDir   = "requirements"
	requirementsMode  = 0o644
	requirementsGlob  = "requirements*.txt"
	requirementsExt   = ".txt"
	lineCommentPrefix = "#"
	lineOptionPrefix  = "-"
)

var skippedDirs = map[string]bool{ //nolint:gochecknoglobals // lookup table
	"node_modules":  true,
	"venv":          true,
	"__pycache__":   true,
	"site-packages": true,
}

var (
	// pinnedPattern captures indent, name, extras, operator, version and the rest of an "==" pin.
	pinnedPattern = regexp.MustCompile(
		`^(\s*)([A-Za-z0-9][A-Za-z0-9._-]*)(\s*\[[^\]]*\])?(\s*==\s*)([0-9][0-9A-Za-z.!+-]*)(.*)$`,
	)
	// releasePattern accepts plain release numbers, which map onto semver.
	releasePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}$`)
	separatorRun   = regexp.MustCompile(`[-_.]+`)
)

// ReleaseLister returns the published releases of a project.
type ReleaseLister interface {
	Releases(ctx context.Context, project string) ([]Release, error)
}

// PythonEcosystemRepository updates exact "==" pins in pip requirements files.
type PythonEcosystemRepository struct {
	index ReleaseLister
	label string
}

// NewPythonEcosystemRepository creates a Python ecosystem reading releases from
// index. label names the index in update metadata.
func NewPythonEcosystemRepository(index ReleaseLister, label string) *PythonEcosystemRepository {
	return &PythonEcosystemRepository{index: index, label: label}
}

// NewEcosystemRepository creates a Python ecosystem backed by pypi.org.
func NewEcosystemRepository() repositories.EcosystemRepository {
	return NewPythonEcosystemRepository(NewIndexClient(DefaultIndexURL), DefaultIndexURL)
}

func (it *PythonEcosystemRepository) Name() string { return ecosystemName }

// Detect returns true if folder holds at least one requirements file.
func (it *PythonEcosystemRepository) Detect(folder string) bool {
	files, err := findRequirementsFiles(folder)
	return err == nil && len(files) > 0
}

// FindUpdates proposes, per pinned project, the highest release allowed by the
// change policy. Package sources do not apply: releases come from the index.
func (it *PythonEcosystemRepository) FindUpdates(
	ctx context.Context,
	folder string,
	_ entities.PackageSources,
	allowed entities.VersionChange,
) ([]entities.PackageUpdateSet, error) {
	occurrences, order, err := scanPins(folder)
	if err != nil {
		return nil, err
	}
	logger.Infof("[python] Found %d pinned projects in %s", len(order), folder)

	var updates []entities.PackageUpdateSet
	for _, project := range order {
		current := occurrences[project]
		highest := highestPin(current)
		if highest == "" {
			logger.Debugf("[python] Skipping %s: pinned version is not a plain release", project)
			continue
		}

		releases, listErr := it.index.Releases(ctx, project)
		if listErr != nil {
			if !errors.Is(listErr, errProjectNotFound) {
				logger.Warnf("[python] Failed to list releases of %s: %v", project, listErr)
			}
			continue
		}

		best, found := bestAllowedRelease(highest, releases, allowed)
		if !found {
			continue
		}

		update, buildErr := entities.NewPackageUpdateSet(ecosystemName, entities.PackageSearchMetadata{
			Identity:  entities.PackageIdentity{ID: project, Version: best.Version},
			Source:    it.label,
			Published: best.Published,
		}, current)
		if buildErr != nil {
			logger.Warnf("[python] Skipping %s: %v", project, buildErr)
			continue
		}
		logger.Debugf("[python] %s", update)
		updates = append(updates, update)
	}
	return updates, nil
}

// Apply rewrites the pin of the update's project in every listed file.
func (it *PythonEcosystemRepository) Apply(
	_ context.Context,
	folder string,
	update entities.PackageUpdateSet,
) error {
	seen := make(map[string]bool)
	for _, pip := range update.CurrentPackages() {
		if seen[pip.Path.RelativePath] {
			continue
		}
		seen[pip.Path.RelativePath] = true

		path := filepath.Join(folder, filepath.FromSlash(pip.Path.RelativePath))
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		updated, changed := rewritePins(string(data), update.SelectedID(), update.SelectedVersion())
		if !changed {
			return fmt.Errorf("no pin of %s found in %s", update.SelectedID(), pip.Path.RelativePath)
		}
		if err = os.WriteFile(path, []byte(updated), requirementsMode); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Infof("[python] Updated %s in %s to %s", update.SelectedID(), pip.Path.RelativePath, update.SelectedVersion())
	}
	return nil
}

// Restore has nothing to do: requirements files carry no derived lock data.
func (it *PythonEcosystemRepository) Restore(
	context.Context, string, entities.PackageUpdateSet, entities.PackageSources,
) error {
	return nil
}

// NormalizeProjectName applies PEP 503 normalization.
func NormalizeProjectName(name string) string {
	return separatorRun.ReplaceAllString(strings.ToLower(name), "-")
}

func isRequirementsFile(path string) bool {
	name := filepath.Base(path)
	if matched, _ := filepath.Match(requirementsGlob, name); matched {
		return true
	}
	return filepath.Ext(name) == requirementsExt && filepath.Base(filepath.Dir(path)) == requirementsDir
}

func findRequirementsFiles(folder string) ([]string, error) {
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
		if isRequirementsFile(path) {
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

// scanPins groups every exact pin by normalized project name, in first-seen order.
func scanPins(folder string) (map[string][]entities.PackageInProject, []string, error) {
	files, err := findRequirementsFiles(folder)
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
		relative, _ := filepath.Rel(folder, file)

		for i, line := range strings.Split(string(data), "\n") {
			name, version, ok := parsePin(line)
			if !ok {
				continue
			}
			if _, seen := occurrences[name]; !seen {
				order = append(order, name)
			}
			occurrences[name] = append(occurrences[name], entities.PackageInProject{
				Identity: entities.PackageIdentity{ID: name, Version: version},
				Path: entities.PackagePath{
					BaseDirectory: folder,
					RelativePath:  filepath.ToSlash(relative),
					Kind:          requirementsKind,
				},
				Line: i + 1,
			})
		}
	}
	return occurrences, order, nil
}

// parsePin returns the normalized name and version of a single "==" pin.
// Ranges, wildcards, options and editable installs are ignored.
func parsePin(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, lineCommentPrefix) || strings.HasPrefix(trimmed, lineOptionPrefix) {
		return "", "", false
	}
	match := pinnedPattern.FindStringSubmatch(line)
	if match == nil {
		return "", "", false
	}
	if rest := strings.TrimSpace(match[6]); strings.HasPrefix(rest, ",") || strings.HasPrefix(rest, "*") {
		return "", "", false
	}
	return NormalizeProjectName(match[2]), match[5], true
}

func rewritePins(content, project, version string) (string, bool) {
	lines := strings.Split(content, "\n")
	changed := false
	for i, line := range lines {
		name, current, ok := parsePin(line)
		if !ok || name != project || current == version {
			continue
		}
		match := pinnedPattern.FindStringSubmatch(line)
		lines[i] = match[1] + match[2] + match[3] + match[4] + version + match[6]
		changed = true
	}
	return strings.Join(lines, "\n"), changed
}

func highestPin(current []entities.PackageInProject) string {
	highest := ""
	for _, pip := range current {
		if !releasePattern.MatchString(pip.Identity.Version) {
			return ""
		}
		if highest == "" || compareReleases(pip.Identity.Version, highest) > 0 {
			highest = pip.Identity.Version
		}
	}
	return highest
}

func bestAllowedRelease(current string, releases []Release, allowed entities.VersionChange) (Release, bool) {
	var best Release
	found := false
	for _, release := range releases {
		if !releasePattern.MatchString(release.Version) || !allowed.Allows(current, release.Version) {
			continue
		}
		if !found || compareReleases(release.Version, best.Version) > 0 {
			best = release
			found = true
		}
	}
	return best, found
}

func compareReleases(a, b string) int {
	return semver.Compare(entities.NormalizeVersion(a), entities.NormalizeVersion(b))
}
