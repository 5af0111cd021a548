package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/msto63/codasai/internal/tui/viewer"
	"github.com/spf13/cobra"
)

var viewSession string

var viewCmd = &cobra.Command{
	Use:   "view [link]",
	Short: "Open the terminal viewer",
	Long: `Opens the interactive terminal viewer. The session's history is
restored, so ctrl+b / ctrl+f continue where the last run stopped.

Keys:
  enter       run the link in the prompt
  ctrl+b      back
  ctrl+f      forward
  pgup/pgdn   scroll
  esc         quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVarP(&viewSession, "session", "s", "cli", "session ID")
}

func runView(cmd *cobra.Command, args []string) error {
	sess, cleanup, err := newSession(appConfig, viewSession)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := sess.Restore(context.Background(), appConfig.History.Limit); err != nil {
		printError("history not restored", err)
	}

	cfg := viewer.Config{}
	if guide := loadGuide(appConfig, false); guide != nil {
		cfg.Title = guide.Title()
	}
	if len(args) == 1 {
		cfg.InitialLink = args[0]
	}

	p := tea.NewProgram(viewer.New(sess, cfg), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
