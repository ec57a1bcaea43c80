package controllers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// LocalController handles a local checkout given by path (standalone local mode).
// The root command delegates to it.
type LocalController struct {
	command commands.Local
}

// NewLocalController creates a new LocalController.
func NewLocalController(command commands.Local) *LocalController {
	return &LocalController{command: command}
}

// GetBind returns the Cobra command metadata for the local controller.
func (it *LocalController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "local [path]",
		Short: "Update dependencies in a local repository",
		Long: `Update dependencies in a local Git repository.
The path may be a directory or a project file inside the repository and
defaults to the current directory. Each update is committed on its own
branch, pushed and proposed as a pull request (or all of them together with
--consolidate).`,
		Example: `  autokeeper local .
  autokeeper local ./services/api/go.mod --change minor --label dependencies`,
		Args: cobra.MaximumNArgs(1),
	}
}

// Execute runs the local update mode.
func (it *LocalController) Execute(cmd *cobra.Command, args []string) error {
	return runLocal(cmd, args, it.command, false)
}

// runLocal checks the path argument before any settings are loaded.
func runLocal(cmd *cobra.Command, args []string, command commands.Local, reportOnly bool) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %q", commands.ErrPathNotFound, path)
		}
	}

	settings, err := buildSettings(cmd)
	if err != nil {
		return err
	}
	if reportOnly {
		settings.User.ReportMode = entities.ReportModeReportOnly
	}

	token, _ := cmd.Flags().GetString("token")

	count, err := command.Execute(commandContext(cmd), commands.LocalOptions{
		Path:     path,
		Token:    token,
		Settings: settings,
	})
	if err != nil {
		return err
	}
	logUpdated(count, settings)
	return nil
}
