package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"ztools/pkg/journal"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyKind  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent operations from the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if ZT.Journal == nil {
			fmt.Fprintln(out, "⚠️  Operation journal is disabled or unavailable")
			return nil
		}

		ops, err := ZT.Journal.RecentByKind(cmd.Context(), historyKind, historyLimit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Fprintln(out, "No operations yet.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tKIND\tSTATUS\tINPUT\tOUTPUT\tTOOK")
		for _, op := range ops {
			status := "✅"
			if op.Status != journal.StatusOK {
				status = "❌ " + op.ErrorKind
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				op.CreatedAt.Local().Format(time.DateTime),
				op.Kind,
				status,
				op.Input,
				dash(op.Output),
				op.Duration(),
			)
		}
		return tw.Flush()
	},
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "number", "n", journal.DefaultLimit, "how many operations to show")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only show one kind (zip|unzip|push|pull)")
	rootCmd.AddCommand(historyCmd)
}
