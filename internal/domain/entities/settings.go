package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned by FindConfigFile when no file exists in the default locations.
var ErrConfigNotFound = errors.New("config file not found in default locations")

// ReportMode controls whether available updates are reported, applied, or both.
type ReportMode string

const (
	ReportModeOff        ReportMode = "off"
	ReportModeOn         ReportMode = "on"
	ReportModeReportOnly ReportMode = "reportonly"
)

// ReportFormat selects how the reporter renders available updates.
type ReportFormat string

const (
	ReportFormatText     ReportFormat = "text"
	ReportFormatCSV      ReportFormat = "csv"
	ReportFormatMarkdown ReportFormat = "markdown"
	ReportFormatJSON     ReportFormat = "json"
)

// DefaultPushRemote is the remote name branches are pushed through.
const DefaultPushRemote = "autokeeper_push"

// SourceControlSettings describes how to reach the pull-request host.
type SourceControlSettings struct {
	Provider    string `yaml:"provider"     toml:"provider"`
	Token       string `yaml:"token"        toml:"token"` // Inline, ${ENV_VAR}, or file path
	PushRemote  string `yaml:"push_remote"  toml:"push_remote"`
	AuthorName  string `yaml:"author_name"  toml:"author_name"`
	AuthorEmail string `yaml:"author_email" toml:"author_email"`
}

// UserSettings holds the user's preferences for a run.
type UserSettings struct {
	ReportMode         ReportMode    `yaml:"report_mode"         toml:"report_mode"`
	ReportFormat       ReportFormat  `yaml:"report_format"       toml:"report_format"`
	ReportFile         string        `yaml:"report_file"         toml:"report_file"`
	ConsolidateUpdates bool          `yaml:"consolidate_updates" toml:"consolidate_updates"`
	AllowedChange      VersionChange `yaml:"allowed_change"      toml:"allowed_change"`
	Sources            []string      `yaml:"sources"             toml:"sources"`
	Reviewers          []string      `yaml:"reviewers"           toml:"reviewers"`
	Labels             []string      `yaml:"labels"              toml:"labels"`
	Directory          string        `yaml:"directory"           toml:"directory"`
	MaxPullRequests    int           `yaml:"max_pull_requests"   toml:"max_pull_requests"`
}

// FilterSettings is handed to the update selector.
type FilterSettings struct {
	Includes          string `yaml:"includes"            toml:"includes"` // Regular expression
	Excludes          string `yaml:"excludes"            toml:"excludes"` // Regular expression
	MinPackageAge     string `yaml:"min_package_age"     toml:"min_package_age"`
	MaxPackageUpdates int    `yaml:"max_package_updates" toml:"max_package_updates"`
}

// Settings is the complete configuration of one run. It is passed by value.
type Settings struct {
	SourceControl SourceControlSettings `yaml:"source_control" toml:"source_control"`
	User          UserSettings          `yaml:"user"           toml:"user"`
	Filters       FilterSettings        `yaml:"filters"        toml:"filters"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the settings used when no file or flag says otherwise.
func DefaultSettings() Settings {
	return Settings{
		SourceControl: SourceControlSettings{
			PushRemote:  DefaultPushRemote,
			AuthorName:  "autokeeper",
			AuthorEmail: "autokeeper@users.noreply.github.com",
		},
		User: UserSettings{
			ReportMode:    ReportModeOff,
			ReportFormat:  ReportFormatText,
			AllowedChange: VersionChangeMajor,
		},
	}
}

// NewSettings reads a YAML or TOML file on top of DefaultSettings, resolves the
// token and validates the result.
func NewSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &settings)
	} else {
		err = yaml.Unmarshal(data, &settings)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings.SourceControl.Token = resolveToken(settings.SourceControl.Token)

	if validateErr := settings.Validate(); validateErr != nil {
		return Settings{}, validateErr
	}
	return settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or ErrConfigNotFound.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".autokeeper.yaml",
		".autokeeper.yml",
		".autokeeper.toml",
		"autokeeper.yaml",
		"autokeeper.yml",
		"autokeeper.toml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", ErrConfigNotFound
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if resolved == "" {
		return resolved
	}
	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// Validate checks every enumerated and parsed value.
func (s Settings) Validate() error {
	switch s.User.ReportMode {
	case ReportModeOff, ReportModeOn, ReportModeReportOnly:
	default:
		return fmt.Errorf("user.report_mode %q is invalid (expected off, on or reportonly)", s.User.ReportMode)
	}

	switch s.User.ReportFormat {
	case ReportFormatText, ReportFormatCSV, ReportFormatMarkdown, ReportFormatJSON:
	default:
		return fmt.Errorf(
			"user.report_format %q is invalid (expected text, csv, markdown or json)", s.User.ReportFormat,
		)
	}

	if _, err := ParseVersionChange(string(s.User.AllowedChange)); err != nil {
		return fmt.Errorf("user.allowed_change: %w", err)
	}
	if s.User.MaxPullRequests < 0 {
		return errors.New("user.max_pull_requests must not be negative")
	}

	for name, expr := range map[string]string{"includes": s.Filters.Includes, "excludes": s.Filters.Excludes} {
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("filters.%s: %w", name, err)
		}
	}
	if _, err := ParsePackageAge(s.Filters.MinPackageAge); err != nil {
		return fmt.Errorf("filters.min_package_age: %w", err)
	}
	if s.Filters.MaxPackageUpdates < 0 {
		return errors.New("filters.max_package_updates must not be negative")
	}

	return nil
}

// IsReportOnly reports whether the run must not touch the repository.
func (s Settings) IsReportOnly() bool {
	return s.User.ReportMode == ReportModeReportOnly
}

// ShouldReport reports whether available updates are forwarded to the reporter.
func (s Settings) ShouldReport() bool {
	return s.User.ReportMode == ReportModeOn || s.User.ReportMode == ReportModeReportOnly
}

// ParsePackageAge parses ages such as "7d", "12h" or "30m". Empty or "0" means no minimum.
func ParsePackageAge(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}

	if days, found := strings.CutSuffix(raw, "d"); found {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil //nolint:mnd // hours per day
	}

	age, err := time.ParseDuration(raw)
	if err != nil || age < 0 {
		return 0, fmt.Errorf("invalid age %q", raw)
	}
	return age, nil
}
