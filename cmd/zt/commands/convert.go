package commands

import (
	"fmt"

	"ztools/pkg/repr"

	"github.com/spf13/cobra"
)

var convertTo string

var convertCmd = &cobra.Command{
	Use:   "convert <value>",
	Short: "Convert a number between decimal, binary, octal and hex",
	Example: `  zt convert 255 --to x     # 0xff
  zt convert 0b1010          # 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := repr.ParseRepresentation(convertTo)
		if err != nil {
			return err
		}
		out, err := repr.Convert(args[0], to)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "d", "target representation (d|b|o|x)")
	rootCmd.AddCommand(convertCmd)
}
