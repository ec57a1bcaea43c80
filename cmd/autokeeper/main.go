package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autokeeper/internal"
	"github.com/rios0rios0/autokeeper/internal/infrastructure/controllers"
)

func buildRootCommand(localController *controllers.LocalController) *cobra.Command {
	bind := localController.GetBind()
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "autokeeper [path]",
		Short: "Keeps the dependencies of a repository up to date",
		Long: `autokeeper finds outdated dependencies in a repository (Go modules, pinned
pip requirements and Terraform git modules), edits them, commits each update and opens pull
requests on GitHub, GitLab or Azure DevOps.

Usage modes:
  autokeeper .              Update the current local repository
  autokeeper /path/to/repo  Update a specific local repository
  autokeeper inspect .      Only report available updates
  autokeeper repo <url>     Clone and update a remote repository`,
		Example:       bind.Example,
		Args:          bind.Args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          localController.Execute,
	}

	controllers.AddSettingsFlags(cmd)
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:     bind.Use,
			Short:   bind.Short,
			Long:    bind.Long,
			Example: bind.Example,
			Args:    bind.Args,
			RunE:    controller.Execute,
		}
		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	// Inject controllers via DIG
	appContext, localController := injectAppContext()
	cobraRoot := buildRootCommand(localController)
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'autokeeper': %s", err)
	}
}
