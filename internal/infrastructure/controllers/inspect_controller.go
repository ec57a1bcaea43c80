package controllers

import (
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autokeeper/internal/domain/commands"
	"github.com/rios0rios0/autokeeper/internal/domain/entities"
)

// InspectController reports available updates without changing anything.
type InspectController struct {
	command commands.Local
}

// NewInspectController creates a new InspectController.
func NewInspectController(command commands.Local) *InspectController {
	return &InspectController{command: command}
}

func (it *InspectController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "inspect [path]",
		Short: "Report available updates in a local repository",
		Long: `Find the updates available in a local repository and report them.
Nothing is edited, committed or pushed, and the working tree may be dirty.`,
		Example: `  autokeeper inspect . --report-format markdown --report-file updates.md`,
		Args:    cobra.MaximumNArgs(1),
	}
}

func (it *InspectController) Execute(cmd *cobra.Command, args []string) error {
	return runLocal(cmd, args, it.command, true)
}
