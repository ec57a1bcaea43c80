//go:build unit

package entities_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewSettings(t *testing.T) {
	t.Run("should read YAML on top of the defaults and expand the token", func(t *testing.T) {
		// given
		t.Setenv("AUTOKEEPER_TEST_TOKEN", "from-env")
		path := writeConfig(t, "autokeeper.yaml", `
source_control:
  provider: gitlab
  token: ${AUTOKEEPER_TEST_TOKEN}
user:
  report_mode: "on"
  consolidate_updates: true
  allowed_change: minor
  labels: [dependencies]
filters:
  excludes: "^golang.org/x/"
  min_package_age: 7d
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "gitlab", settings.SourceControl.Provider)
		assert.Equal(t, "from-env", settings.SourceControl.Token)
		assert.Equal(t, entities.DefaultPushRemote, settings.SourceControl.PushRemote)
		assert.Equal(t, entities.ReportModeOn, settings.User.ReportMode)
		assert.Equal(t, entities.ReportFormatText, settings.User.ReportFormat)
		assert.True(t, settings.User.ConsolidateUpdates)
		assert.Equal(t, entities.VersionChangeMinor, settings.User.AllowedChange)
		assert.Equal(t, []string{"dependencies"}, settings.User.Labels)
		assert.Equal(t, "^golang.org/x/", settings.Filters.Excludes)
		assert.True(t, settings.ShouldReport())
		assert.False(t, settings.IsReportOnly())
	})

	t.Run("should read TOML and load the token from a file", func(t *testing.T) {
		// given
		tokenFile := writeConfig(t, "token", "  secret-from-file\n")
		path := writeConfig(t, "autokeeper.toml", `
[source_control]
provider = "github"
token = "`+tokenFile+`"

[user]
report_mode = "reportonly"
report_format = "json"
max_pull_requests = 3
`)

		// when
		settings, err := entities.NewSettings(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "secret-from-file", settings.SourceControl.Token)
		assert.Equal(t, entities.ReportFormatJSON, settings.User.ReportFormat)
		assert.Equal(t, 3, settings.User.MaxPullRequests)
		assert.True(t, settings.IsReportOnly())
		assert.True(t, settings.ShouldReport())
	})

	t.Run("should reject invalid enumerations", func(t *testing.T) {
		// given
		path := writeConfig(t, "autokeeper.yaml", "user:\n  report_mode: sometimes\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report_mode")
	})

	t.Run("should reject an invalid filter expression", func(t *testing.T) {
		// given
		path := writeConfig(t, "autokeeper.yaml", "filters:\n  includes: \"([\"\n")

		// when
		_, err := entities.NewSettings(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "filters.includes")
	})

	t.Run("should fail for a missing file", func(t *testing.T) {
		// when
		_, err := entities.NewSettings(filepath.Join(t.TempDir(), "absent.yaml"))

		// then
		require.Error(t, err)
	})
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	t.Run("should be valid and report nothing", func(t *testing.T) {
		t.Parallel()

		// when
		settings := entities.DefaultSettings()

		// then
		require.NoError(t, settings.Validate())
		assert.False(t, settings.ShouldReport())
		assert.Equal(t, entities.VersionChangeMajor, settings.User.AllowedChange)
	})

	t.Run("should reject negative limits", func(t *testing.T) {
		t.Parallel()

		// given
		settings := entities.DefaultSettings()
		settings.Filters.MaxPackageUpdates = -1

		// when
		err := settings.Validate()

		// then
		require.Error(t, err)
	})
}

func TestParsePackageAge(t *testing.T) {
	t.Parallel()

	t.Run("should parse days and Go durations", func(t *testing.T) {
		t.Parallel()

		// given
		cases := map[string]time.Duration{
			"":    0,
			"0":   0,
			"7d":  7 * 24 * time.Hour,
			"12h": 12 * time.Hour,
			"30m": 30 * time.Minute,
		}

		for raw, expected := range cases {
			// when
			age, err := entities.ParsePackageAge(raw)

			// then
			require.NoError(t, err, raw)
			assert.Equal(t, expected, age, raw)
		}
	})

	t.Run("should reject negative or malformed ages", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"-1d", "-5h", "week", "d"} {
			// when
			_, err := entities.ParsePackageAge(raw)

			// then
			require.Error(t, err, raw)
		}
	})
}
