package cmd

import (
	"fmt"
	"strings"

	"github.com/msto63/codasai/foundation/state/ast"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <action> [parameter=value ...]",
	Short: "Encode a deep link",
	Long: `Builds a deep link from an action and parameter=value pairs,
escaping quotes and tildes in the values.

Example:
  codasai link highlight file=src/main.rs 'from=fn main' 'to=^}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := ast.NewBuilder(appConfig.Viewer.Prefix, args[0])
		for _, pair := range args[1:] {
			param, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("argument %q is not parameter=value", pair)
			}
			b.Arg(param, value)
		}

		link, err := b.Link()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
