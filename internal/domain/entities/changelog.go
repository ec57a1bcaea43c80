package entities

import "strings"

const (
	unreleasedHeading = "## [Unreleased]"
	changedHeading    = "### Changed"
	releasePrefix     = "## ["
	subsectionPrefix  = "### "
	bulletPrefix      = "- "
)

// ChangelogFile is the Keep-a-Changelog file updated alongside each edit.
const ChangelogFile = "CHANGELOG.md"

// unreleasedSection holds line offsets inside a changelog split by "\n".
type unreleasedSection struct {
	heading int // "## [Unreleased]"
	end     int // next release heading, or len(lines)
	changed int // "### Changed", or -1
}

// AddChangelogEntries records entries under "## [Unreleased]" / "### Changed",
// creating the subsection when needed. It returns false and leaves content
// untouched when there is no Unreleased section or every entry is already present.
func AddChangelogEntries(content string, entries []string) (string, bool) {
	lines := strings.Split(content, "\n")
	section, ok := locateUnreleased(lines)
	if !ok {
		return content, false
	}

	var missing []string
	for _, entry := range entries {
		if !containsLine(lines[section.heading:section.end], entry) {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return content, false
	}

	var at int
	var block []string
	if section.changed < 0 {
		at = section.heading + 1
		block = append([]string{"", changedHeading, ""}, missing...)
	} else {
		at = lastBulletAfter(lines, section.changed, section.end) + 1
		block = missing
	}

	updated := make([]string, 0, len(lines)+len(block))
	updated = append(updated, lines[:at]...)
	updated = append(updated, block...)
	updated = append(updated, lines[at:]...)
	return strings.Join(updated, "\n"), true
}

func locateUnreleased(lines []string) (unreleasedSection, bool) {
	section := unreleasedSection{heading: -1, end: len(lines), changed: -1}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case section.heading < 0:
			if trimmed == unreleasedHeading {
				section.heading = i
			}
		case strings.HasPrefix(trimmed, releasePrefix):
			section.end = i
			return section, true
		case trimmed == changedHeading && section.changed < 0:
			section.changed = i
		}
	}
	return section, section.heading >= 0
}

// lastBulletAfter skips blank lines and stops at the first non-bullet content.
func lastBulletAfter(lines []string, from, end int) int {
	last := from
	for i := from + 1; i < end; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, bulletPrefix) || strings.HasPrefix(trimmed, subsectionPrefix) {
			break
		}
		last = i
	}
	return last
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == strings.TrimSpace(want) {
			return true
		}
	}
	return false
}
