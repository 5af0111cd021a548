package cmd

import (
	"strings"

	"github.com/msto63/codasai/foundation/state/parser"
	"github.com/spf13/cobra"
)

var parseOutput string

var parseCmd = &cobra.Command{
	Use:   "parse <link>",
	Short: "Parse a deep link and print the command",
	Long: `Parses a deep link without dispatching it. The marker prefix is
optional. Lex and syntax errors report the offending position.

Examples:
  codasai parse '#csai:open_file file="main.rs"'
  codasai parse -o json 'highlight file="a.rs" from="x" to="y"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := strings.TrimPrefix(args[0], appConfig.Viewer.Prefix)
		st, err := parser.ParseString(body)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), parseOutput, st)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "yaml", "output format (yaml, json)")
}
