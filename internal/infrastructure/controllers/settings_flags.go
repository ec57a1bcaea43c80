package controllers

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// AddSettingsFlags declares the flags every controller reads. They are
// persistent so subcommands inherit them from the root command.
func AddSettingsFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to config file (default: auto-detect)")
	flags.String("token", "", "Auth token for the Git provider (overrides config and env vars)")
	flags.String("provider", "", "Git provider: github, gitlab or azuredevops (default: detected from the remote)")
	flags.String("push-remote", "", "Name of the remote branches are pushed through")
	flags.Bool("dry-run", false, "Only report available updates, same as --report reportonly")
	flags.BoolP("verbose", "v", false, "Enable verbose output")

	flags.Bool("consolidate", false, "Put every update in a single pull request")
	flags.String("change", "", "Largest allowed version change: major, minor, patch or none")
	flags.StringSlice("source", nil, "Package source, may be repeated (default: GOPROXY, then proxy.golang.org)")
	flags.StringSlice("reviewer", nil, "Pull request reviewer, may be repeated")
	flags.StringSlice("label", nil, "Pull request label, may be repeated")
	flags.Int("max-prs", 0, "Maximum number of pull requests to open (0 means no limit)")

	flags.String("include", "", "Only update packages whose id matches this regular expression")
	flags.String("exclude", "", "Skip packages whose id matches this regular expression")
	flags.String("min-age", "", "Only update to versions published at least this long ago, e.g. 7d or 12h")
	flags.Int("max-packages", 0, "Maximum number of packages to update (0 means no limit)")

	flags.String("report", "", "Report mode: off, on or reportonly")
	flags.String("report-format", "", "Report format: text, csv, markdown or json")
	flags.String("report-file", "", "Write the report to this file instead of stdout")
}

// buildSettings loads the config file (explicit or auto-detected) and applies
// every flag the user set on top of it.
func buildSettings(cmd *cobra.Command) (entities.Settings, error) {
	flags := cmd.Flags()

	if verbose, _ := flags.GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	settings := entities.DefaultSettings()
	configPath, _ := flags.GetString("config")
	if configPath == "" {
		found, err := entities.FindConfigFile()
		switch {
		case err == nil:
			configPath = found
		case !errors.Is(err, entities.ErrConfigNotFound):
			return entities.Settings{}, err
		}
	}
	if configPath != "" {
		loaded, err := entities.NewSettings(configPath)
		if err != nil {
			return entities.Settings{}, err
		}
		logger.Infof("Loaded config from %s", configPath)
		settings = loaded
	}

	stringFlags := map[string]*string{
		"provider":    &settings.SourceControl.Provider,
		"push-remote": &settings.SourceControl.PushRemote,
		"include":     &settings.Filters.Includes,
		"exclude":     &settings.Filters.Excludes,
		"min-age":     &settings.Filters.MinPackageAge,
		"report-file": &settings.User.ReportFile,
	}
	for name, target := range stringFlags {
		if flags.Changed(name) {
			*target, _ = flags.GetString(name)
		}
	}

	sliceFlags := map[string]*[]string{
		"source":   &settings.User.Sources,
		"reviewer": &settings.User.Reviewers,
		"label":    &settings.User.Labels,
	}
	for name, target := range sliceFlags {
		if flags.Changed(name) {
			*target, _ = flags.GetStringSlice(name)
		}
	}

	intFlags := map[string]*int{
		"max-prs":      &settings.User.MaxPullRequests,
		"max-packages": &settings.Filters.MaxPackageUpdates,
	}
	for name, target := range intFlags {
		if flags.Changed(name) {
			*target, _ = flags.GetInt(name)
		}
	}

	if flags.Changed("consolidate") {
		settings.User.ConsolidateUpdates, _ = flags.GetBool("consolidate")
	}
	if flags.Changed("change") {
		raw, _ := flags.GetString("change")
		change, err := entities.ParseVersionChange(raw)
		if err != nil {
			return entities.Settings{}, fmt.Errorf("--change: %w", err)
		}
		settings.User.AllowedChange = change
	}
	if flags.Changed("report") {
		raw, _ := flags.GetString("report")
		settings.User.ReportMode = entities.ReportMode(raw)
	}
	if flags.Changed("report-format") {
		raw, _ := flags.GetString("report-format")
		settings.User.ReportFormat = entities.ReportFormat(raw)
	}
	if dryRun, _ := flags.GetBool("dry-run"); dryRun {
		settings.User.ReportMode = entities.ReportModeReportOnly
	}

	if err := settings.Validate(); err != nil {
		return entities.Settings{}, err
	}
	return settings, nil
}

// commandContext is the context cobra was executed with, or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func logUpdated(count int, settings entities.Settings) {
	if settings.IsReportOnly() {
		logger.Info("Report-only run finished")
		return
	}
	logger.Infof("Updated %d package(s)", count)
}
