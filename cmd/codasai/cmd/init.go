package cmd

import (
	"fmt"

	"github.com/msto63/codasai/internal/viewer/workspace"
	"github.com/msto63/codasai/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	initPath string
	initGit  bool
)

var initCmd = &cobra.Command{
	Use:   "init <title>",
	Short: "Create a guide project",
	Long: `Creates a guide project with .codasai/guide.toml, an empty page
index, and the pages/ and workspace/ directories. A git repository is
initialized in the project unless --git=false is given or git is not
installed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := workspace.InitProject(initPath, args[0])
		if err != nil {
			return err
		}

		if initGit {
			if gitAvailable() {
				if _, err := runGit(project, "init", "--quiet"); err != nil {
					return err
				}
			} else {
				logging.New("cli").Warn("git not found, repository not initialized", "project", project)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "initialized guide %q in %s\n", args[0], project)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initPath, "path", ".", "directory that will contain the project")
	initCmd.Flags().BoolVar(&initGit, "git", true, "initialize a git repository")
}
