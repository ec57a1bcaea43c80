package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const (
	branchSingleFmt       = "chore/upgrade-%s-to-%s"
	branchConsolidatedFmt = "chore/upgrade-%d-packages-%s"
	branchHashLen         = 8
)

var branchUnsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// BranchName returns the branch an update is pushed to. It only depends on
// the package id and target version, so re-runs reuse the same branch.
func BranchName(update PackageUpdateSet) string {
	return fmt.Sprintf(
		branchSingleFmt,
		branchPackagePart(update.SelectedID()),
		sanitizeBranchPart(update.SelectedVersion()),
	)
}

// ConsolidatedBranchName returns the shared branch for a group of updates.
// The suffix is a hash of the sorted package@version list, so the order the
// updates were found in does not matter.
func ConsolidatedBranchName(updates []PackageUpdateSet) string {
	if len(updates) == 1 {
		return BranchName(updates[0])
	}

	keys := make([]string, 0, len(updates))
	for _, update := range updates {
		keys = append(keys, update.SelectedID()+"@"+update.SelectedVersion())
	}
	sort.Strings(keys)

	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return fmt.Sprintf(branchConsolidatedFmt, len(updates), hex.EncodeToString(sum[:])[:branchHashLen])
}

// branchPackagePart spells path separators as "_". When that spelling does not
// map back to id, a short hash of id keeps distinct packages apart.
func branchPackagePart(id string) string {
	part := sanitizeBranchPart(strings.ReplaceAll(id, "/", "_"))
	if strings.ReplaceAll(part, "_", "/") != id {
		sum := sha256.Sum256([]byte(id))
		part += "-" + hex.EncodeToString(sum[:])[:branchHashLen]
	}
	return part
}

func sanitizeBranchPart(part string) string {
	cleaned := branchUnsafeChars.ReplaceAllString(strings.ToLower(part), "-")
	cleaned = strings.ReplaceAll(cleaned, "..", ".")
	return strings.Trim(cleaned, "-.")
}

// CommitMessage describes a single update.
func CommitMessage(update PackageUpdateSet) string {
	return fmt.Sprintf(
		"chore(deps): upgraded `%s` from %s to `%s`",
		update.SelectedID(), quotedVersions(update.CurrentVersions()), update.SelectedVersion(),
	)
}

// PullRequestTitle names the pull request for one or more updates.
func PullRequestTitle(updates []PackageUpdateSet) string {
	if len(updates) == 1 {
		return fmt.Sprintf(
			"chore(deps): upgraded `%s` to `%s`",
			updates[0].SelectedID(), updates[0].SelectedVersion(),
		)
	}
	return fmt.Sprintf("chore(deps): upgraded %d packages", len(updates))
}

// PullRequestBody renders the markdown description of the updates.
func PullRequestBody(updates []PackageUpdateSet) string {
	var sb strings.Builder
	sb.WriteString("## Summary\n\n")
	if len(updates) == 1 {
		sb.WriteString("This PR upgrades the following dependency:\n\n")
	} else {
		sb.WriteString(fmt.Sprintf("This PR upgrades the following %d dependencies:\n\n", len(updates)))
	}

	sb.WriteString("| Package | Current | New | Change | Published | Files |\n")
	sb.WriteString("|---------|---------|-----|--------|-----------|-------|\n")
	for _, update := range updates {
		published := "N/A"
		if !update.Published().IsZero() {
			published = update.Published().UTC().Format("2006-01-02")
		}
		sb.WriteString(fmt.Sprintf(
			"| `%s` | %s | `%s` | %s | %s | %s |\n",
			update.SelectedID(),
			quotedVersions(update.CurrentVersions()),
			update.SelectedVersion(),
			update.HighestChange(),
			published,
			strings.Join(projectFiles(update), ", "),
		))
	}

	sb.WriteString("\n---\n")
	sb.WriteString("*This PR was automatically created by [autokeeper](https://github.com/rios0rios0/autokeeper)*\n")
	return sb.String()
}

// ChangelogEntry is the bullet recorded under "Unreleased / Changed".
func ChangelogEntry(update PackageUpdateSet) string {
	return fmt.Sprintf(
		"- changed the `%s` dependency to its `%s` version",
		update.SelectedID(), update.SelectedVersion(),
	)
}

func quotedVersions(versions []string) string {
	quoted := make([]string, 0, len(versions))
	for _, v := range versions {
		quoted = append(quoted, "`"+v+"`")
	}
	return strings.Join(quoted, ", ")
}

func projectFiles(update PackageUpdateSet) []string {
	seen := make(map[string]bool)
	var files []string
	for _, pip := range update.CurrentPackages() {
		if seen[pip.Path.RelativePath] {
			continue
		}
		seen[pip.Path.RelativePath] = true
		files = append(files, "`"+pip.Path.RelativePath+"`")
	}
	return files
}
