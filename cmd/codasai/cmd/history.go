package cmd

import (
	"context"
	"fmt"

	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyOutput string
	historySteps  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded navigation history",
	Long: `Lists sessions with recorded history. Subcommands show, clear
or replay the history of one session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store history.Store) error {
			sessions, err := store.Sessions(context.Background())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no history recorded")
				return nil
			}
			return writeOutput(cmd.OutOrStdout(), historyOutput, sessions)
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "List the visits of a session, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store history.Store) error {
			entries, err := store.List(context.Background(), args[0], historyLimit)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), historyOutput, entries)
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear <session>",
	Short: "Delete the history of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(store history.Store) error {
			if err := store.Clear(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "history of %s cleared\n", args[0])
			return nil
		})
	},
}

var historyBackCmd = &cobra.Command{
	Use:   "back <session>",
	Short: "Print the view --steps links before the latest visit",
	Long: `Replays the stored visits of a session and steps back from the
latest one. Every visit counts, including links the session later
navigated away from with back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, cleanup, err := newSession(appConfig, args[0])
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := context.Background()
		view, err := sess.Restore(ctx, historyLimit)
		if err != nil {
			return err
		}
		if links, cursor := sess.Links(); historySteps > cursor {
			return fmt.Errorf("cannot go back %d steps: history of %s has %d entries", historySteps, args[0], len(links))
		}
		for i := 0; i < historySteps; i++ {
			view, _ = sess.Back(ctx)
		}
		view.Contents = ""
		return writeOutput(cmd.OutOrStdout(), historyOutput, view)
	},
}

func withHistory(fn func(store history.Store) error) error {
	store, err := openHistory(appConfig)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyClearCmd, historyBackCmd)

	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 100, "maximum number of entries")
	historyCmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", "yaml", "output format (yaml, json)")
	historyBackCmd.Flags().IntVar(&historySteps, "steps", 1, "number of links to go back")
}
