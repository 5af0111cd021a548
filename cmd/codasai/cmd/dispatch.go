package cmd

import (
	"context"
	"time"

	"github.com/msto63/codasai/internal/viewer/rpc"
	"github.com/msto63/codasai/internal/viewer/session"
	coregrpc "github.com/msto63/codasai/pkg/core/grpc"
	"github.com/spf13/cobra"
)

var (
	dispatchSession  string
	dispatchRemote   string
	dispatchOutput   string
	dispatchContents bool
)

// dispatchResult is what dispatch prints
type dispatchResult struct {
	Session string       `json:"session" yaml:"session"`
	Outcome string       `json:"outcome" yaml:"outcome"`
	View    session.View `json:"view" yaml:"view"`
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch <link>",
	Short: "Run a deep link and print the resulting view",
	Long: `Runs a deep link through a viewer session and prints the view.
The visit is recorded in the session history.

With --remote the link is sent to a running 'codasai serve --grpc'.

Examples:
  codasai dispatch '#csai:open_file file="main.rs"'
  codasai dispatch --remote 127.0.0.1:9000 '#csai:highlight file="main.rs" from="fn" to="}"'`,
	Args: cobra.ExactArgs(1),
	RunE: runDispatch,
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
	dispatchCmd.Flags().StringVarP(&dispatchSession, "session", "s", "cli", "session ID")
	dispatchCmd.Flags().StringVar(&dispatchRemote, "remote", "", "address of a remote dispatch service")
	dispatchCmd.Flags().StringVarP(&dispatchOutput, "output", "o", "yaml", "output format (yaml, json)")
	dispatchCmd.Flags().BoolVar(&dispatchContents, "contents", false, "include file contents in the output")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	var result dispatchResult

	if dispatchRemote != "" {
		cfg := coregrpc.DefaultClientConfig(dispatchRemote)
		conn, err := coregrpc.Dial(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		res, err := rpc.NewClient(conn).Dispatch(ctx, dispatchSession, args[0])
		if err != nil {
			return err
		}
		result = dispatchResult{Session: res.SessionID, Outcome: res.Outcome, View: res.View}
	} else {
		sess, cleanup, err := newSession(appConfig, dispatchSession)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		view, outcome := sess.Dispatch(ctx, args[0])
		result = dispatchResult{Session: sess.ID(), Outcome: outcome.String(), View: view}
	}

	if !dispatchContents {
		result.View.Contents = ""
	}
	return writeOutput(cmd.OutOrStdout(), dispatchOutput, result)
}
