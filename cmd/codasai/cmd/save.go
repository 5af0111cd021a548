package cmd

import (
	"github.com/msto63/codasai/internal/viewer/workspace"
	"github.com/spf13/cobra"
)

var (
	saveCommit bool
	saveOutput string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Add the newest page to the guide index",
	Long: `Finds the first page in pages/ that is not yet in the index, takes
its title from the first markdown heading and appends it to
.codasai/index.toml. With --commit (the default) pages/ and workspace/
are committed, so the page's code snapshot is recorded in git.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := workspace.FindProject(appConfig.Viewer.Project)
		if err != nil {
			return err
		}

		entry, err := workspace.SavePage(project)
		if err != nil {
			return err
		}
		if saveCommit {
			if err := commitPage(project, entry.Name, entry.Code); err != nil {
				return err
			}
		}
		return writeOutput(cmd.OutOrStdout(), saveOutput, entry)
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().BoolVar(&saveCommit, "commit", true, "commit pages/ and workspace/ with git")
	saveCmd.Flags().StringVarP(&saveOutput, "output", "o", "yaml", "output format (yaml, json)")
}
