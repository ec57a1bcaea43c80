//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

func TestAddChangelogEntries(t *testing.T) {
	t.Parallel()

	t.Run("should create the Changed subsection under Unreleased", func(t *testing.T) {
		t.Parallel()

		// given
		content := "# Changelog\n\n## [Unreleased]\n\n## [1.0.0] - 2024-01-01\n\n### Added\n\n- initial\n"

		// when
		updated, changed := entities.AddChangelogEntries(content, []string{"- changed x"})

		// then
		assert.True(t, changed)
		assert.Equal(t,
			"# Changelog\n\n## [Unreleased]\n\n### Changed\n\n- changed x\n\n## [1.0.0] - 2024-01-01\n\n### Added\n\n- initial\n",
			updated)
	})

	t.Run("should append after the last existing bullet", func(t *testing.T) {
		t.Parallel()

		// given
		content := "## [Unreleased]\n\n### Changed\n\n- changed a\n\n## [1.0.0]\n"

		// when
		updated, changed := entities.AddChangelogEntries(content, []string{"- changed b"})

		// then
		assert.True(t, changed)
		assert.Equal(t, "## [Unreleased]\n\n### Changed\n\n- changed a\n- changed b\n\n## [1.0.0]\n", updated)
	})

	t.Run("should leave the content untouched when every entry exists", func(t *testing.T) {
		t.Parallel()

		// given
		content := "## [Unreleased]\n\n### Changed\n\n- changed a\n"

		// when
		updated, changed := entities.AddChangelogEntries(content, []string{"- changed a"})

		// then
		assert.False(t, changed)
		assert.Equal(t, content, updated)
	})

	t.Run("should not touch a changelog without an Unreleased section", func(t *testing.T) {
		t.Parallel()

		// given
		content := "# Changelog\n\n## [1.0.0]\n"

		// when
		updated, changed := entities.AddChangelogEntries(content, []string{"- changed a"})

		// then
		assert.False(t, changed)
		assert.Equal(t, content, updated)
	})
}
