package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// RepositoryController handles the "repo" subcommand: one remote repository by URL.
type RepositoryController struct {
	command commands.Remote
}

// NewRepositoryController creates a new RepositoryController.
func NewRepositoryController(command commands.Remote) *RepositoryController {
	return &RepositoryController{command: command}
}

func (it *RepositoryController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "repo <url>",
		Short: "Update dependencies in a remote repository",
		Long: `Clone a GitHub, GitLab or Azure DevOps repository into a temporary
folder, update its dependencies and open pull requests. The clone is
removed afterwards.`,
		Example: `  autokeeper repo https://github.com/acme/app --consolidate`,
		Args:    cobra.ExactArgs(1),
	}
}

func (it *RepositoryController) Execute(cmd *cobra.Command, args []string) error {
	settings, err := buildSettings(cmd)
	if err != nil {
		return err
	}
	token, _ := cmd.Flags().GetString("token")

	count, err := it.command.Execute(commandContext(cmd), commands.RemoteOptions{
		URL:      args[0],
		Token:    token,
		Settings: settings,
	})
	if err != nil {
		return err
	}
	logUpdated(count, settings)
	return nil
}
