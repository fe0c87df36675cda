package commands

import (
	"fmt"
	"text/tabwriter"

	"ztools/pkg/detect"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>...",
	Short: "Print the archive format detected from file headers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, path := range args {
			format, err := detect.DetectFile(path)
			if err != nil {
				tw.Flush()
				return fmt.Errorf("cannot read header of '%s': %w", path, err)
			}
			fmt.Fprintf(tw, "%s\t%s\n", path, format)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
