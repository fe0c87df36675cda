package commands

import (
	"fmt"
	"time"

	"ztools/pkg/journal"
	"ztools/pkg/naming"

	"github.com/spf13/cobra"
)

var unzipOutfile string

var unzipCmd = &cobra.Command{
	Use:   "unzip <archive>",
	Short: "Extract a .gz / .tar.gz / .tgz / .7z archive",
	Long: `Extract an archive. The format is detected from the file content, not the
extension. Output goes to the current directory:

  .tar.gz / .tgz -> <base>/
  .gz            -> <base>.<inner-ext>
  .7z            -> <base>/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := args[0]
		base := naming.UnzipBase(input, unzipOutfile)

		start := time.Now()
		res, err := ZT.Engine.Decompress(ctx, input, base)
		record(ctx, journal.Operation{
			Kind:      journal.KindUnzip,
			Input:     input,
			Output:    res.Output,
			Algorithm: res.Format.String(),
			Bytes:     res.Bytes,
		}, start, err)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "📦 Extracted %s -> %s\n", input, res.Output)
		return nil
	},
}

func init() {
	unzipCmd.Flags().StringVarP(&unzipOutfile, "outfile", "f", "", "base name of the output")
	rootCmd.AddCommand(unzipCmd)
}
