package terraform

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	logger "github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
	"github.com/rios0rios0/autokeeper/internal/domain/repositories"
)

const (
	ecosystemName = "terraform"
	tfExtension   = ".tf"
	tfFileMode    = 0o644
	minMatchLen   = 4
)

var (
	modulePattern = regexp.MustCompile(`(?s)module\s+"[^"]+"\s*\{[^}]*?source\s*=\s*"([^"]+)"`)
	quotedPattern = regexp.MustCompile(`"([^"\n]*)"`)
)

// moduleRef is one module block pinned to a git ref.
type moduleRef struct {
	source moduleSource
	line   int
}

// TerraformEcosystemRepository implements repositories.EcosystemRepository for
// Terraform modules sourced from git and pinned with "?ref=".
type TerraformEcosystemRepository struct {
	tags TagLister
}

// NewTerraformEcosystemRepository creates a Terraform ecosystem resolving tags with lister.
func NewTerraformEcosystemRepository(lister TagLister) *TerraformEcosystemRepository {
	return &TerraformEcosystemRepository{tags: lister}
}

// NewEcosystemRepository creates a Terraform ecosystem listing tags anonymously.
func NewEcosystemRepository() repositories.EcosystemRepository {
	return NewTerraformEcosystemRepository(NewRemoteTagLister(nil))
}

func (it *TerraformEcosystemRepository) Name() string { return ecosystemName }

// Detect returns true if folder contains .tf files.
func (it *TerraformEcosystemRepository) Detect(folder string) bool {
	files, err := findTerraformFiles(folder)
	return err == nil && len(files) > 0
}

// FindUpdates groups pinned git modules by source and proposes the highest
// allowed tag of each. Package sources do not apply: tags come from the module's own remote.
func (it *TerraformEcosystemRepository) FindUpdates(
	ctx context.Context,
	folder string,
	_ entities.PackageSources,
	allowed entities.VersionChange,
) ([]entities.PackageUpdateSet, error) {
	files, err := findTerraformFiles(folder)
	if err != nil {
		return nil, err
	}

	occurrences := make(map[string][]entities.PackageInProject)
	var order []string
	for _, file := range files {
		content, readErr := os.ReadFile(file)
		if readErr != nil {
			logger.Warnf("[terraform] Failed to read %s: %v", file, readErr)
			continue
		}
		relative, _ := filepath.Rel(folder, file)

		for _, ref := range scanTerraformFile(string(content), file) {
			if _, seen := occurrences[ref.source.id]; !seen {
				order = append(order, ref.source.id)
			}
			occurrences[ref.source.id] = append(occurrences[ref.source.id], entities.PackageInProject{
				Identity: entities.PackageIdentity{ID: ref.source.id, Version: ref.source.ref},
				Path: entities.PackagePath{
					BaseDirectory: folder,
					RelativePath:  filepath.ToSlash(relative),
					Kind:          ecosystemName,
				},
				Line: ref.line,
			})
		}
	}

	var updates []entities.PackageUpdateSet
	for _, id := range order {
		current := occurrences[id]
		tags, tagsErr := it.tags.ListTags(ctx, cloneURL(id))
		if tagsErr != nil {
			logger.Warnf("[terraform] Failed to resolve tags for %s: %v", displayName(id), tagsErr)
			continue
		}

		best := bestAllowedTag(current, tags, allowed)
		if best == "" {
			continue
		}

		update, buildErr := entities.NewPackageUpdateSet(
			ecosystemName,
			entities.PackageSearchMetadata{
				Identity: entities.PackageIdentity{ID: id, Version: best},
				Source:   cloneURL(id),
			},
			current,
		)
		if buildErr != nil {
			logger.Warnf("[terraform] Skipping %s: %v", displayName(id), buildErr)
			continue
		}
		updates = append(updates, update)
	}

	logger.Infof("[terraform] %d of %d modules can be upgraded", len(updates), len(order))
	return updates, nil
}

// Apply rewrites the ref of every matching module source in the update's files.
func (it *TerraformEcosystemRepository) Apply(
	_ context.Context,
	folder string,
	update entities.PackageUpdateSet,
) error {
	files := make(map[string]bool)
	var ordered []string
	for _, pip := range update.CurrentPackages() {
		if !files[pip.Path.RelativePath] {
			files[pip.Path.RelativePath] = true
			ordered = append(ordered, pip.Path.RelativePath)
		}
	}

	for _, relative := range ordered {
		path := filepath.Join(folder, filepath.FromSlash(relative))
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", relative, err)
		}

		updated, changed := applyVersionUpgrade(string(content), update.SelectedID(), update.SelectedVersion())
		if !changed {
			return fmt.Errorf("no reference to %s found in %s", displayName(update.SelectedID()), relative)
		}
		if err = os.WriteFile(path, []byte(updated), tfFileMode); err != nil {
			return fmt.Errorf("failed to write %s: %w", relative, err)
		}
	}
	return nil
}

// Restore does nothing: module refs have no lock file to refresh.
func (it *TerraformEcosystemRepository) Restore(
	context.Context, string, entities.PackageUpdateSet, entities.PackageSources,
) error {
	return nil
}

func findTerraformFiles(folder string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != folder && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == tfExtension {
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

func scanTerraformFile(content, filePath string) []moduleRef {
	file, diags := hclparse.NewParser().ParseHCL([]byte(content), filePath)
	if diags.HasErrors() || file.Body == nil {
		return scanWithRegex(content)
	}

	bodyContent, _, partialDiags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"name"}},
		},
	})
	if partialDiags.HasErrors() {
		return scanWithRegex(content)
	}

	var refs []moduleRef
	for _, block := range bodyContent.Blocks {
		attrs, _ := block.Body.JustAttributes()
		sourceAttr, hasSource := attrs["source"]
		if !hasSource {
			continue
		}

		sourceVal, sourceDiags := sourceAttr.Expr.Value(&hcl.EvalContext{})
		if sourceDiags.HasErrors() || sourceVal.Type() != cty.String {
			continue
		}

		if source, ok := parseModuleSource(sourceVal.AsString()); ok {
			refs = append(refs, moduleRef{source: source, line: block.DefRange.Start.Line})
		}
	}
	return refs
}

func scanWithRegex(content string) []moduleRef {
	var refs []moduleRef
	for _, match := range modulePattern.FindAllStringSubmatchIndex(content, -1) {
		if len(match) < minMatchLen {
			continue
		}
		if source, ok := parseModuleSource(content[match[2]:match[3]]); ok {
			refs = append(refs, moduleRef{
				source: source,
				line:   strings.Count(content[:match[0]], "\n") + 1,
			})
		}
	}
	return refs
}

func bestAllowedTag(current []entities.PackageInProject, tags []string, allowed entities.VersionChange) string {
	best := ""
	for _, tag := range tags {
		if !semver.IsValid(entities.NormalizeVersion(tag)) {
			continue
		}
		ok := true
		for _, pip := range current {
			if !allowed.Allows(pip.Identity.Version, tag) {
				ok = false
				break
			}
		}
		if ok && (best == "" || entities.IsNewerVersion(best, tag)) {
			best = tag
		}
	}
	return best
}

// applyVersionUpgrade rewrites the ref of every quoted source whose id matches.
func applyVersionUpgrade(content, id, version string) (string, bool) {
	changed := false
	updated := quotedPattern.ReplaceAllStringFunc(content, func(quoted string) string {
		raw := quoted[1 : len(quoted)-1]
		source, ok := parseModuleSource(raw)
		if !ok || source.id != id || source.ref == version {
			return quoted
		}
		changed = true
		return `"` + withRef(raw, version) + `"`
	})
	return updated, changed
}
