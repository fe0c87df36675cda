package commands

import (
	"fmt"
	"time"

	"ztools/pkg/journal"
	"ztools/pkg/refs"
	"ztools/pkg/vault"

	"github.com/spf13/cobra"
)

var (
	pushVerbose bool
	pushTag     string
)

var pushCmd = &cobra.Command{
	Use:   "push <archive>",
	Short: "Store an archive in the vault (local directory or S3)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// 1. 仓库是懒加载的
		v, err := ZT.Vault(ctx)
		if err != nil {
			return err
		}

		// 2. 上传
		start := time.Now()
		m, err := v.Push(ctx, args[0])
		op := journal.Operation{Kind: journal.KindPush, Input: args[0]}
		if m != nil {
			op.Output = string(m.ID())
			op.Algorithm = m.Format
			op.Bytes = m.Size
		}
		record(ctx, op, start, err)
		if err != nil {
			return err
		}

		// 3. 更新引用：LATEST 总是移动，--tag 额外起个名字
		if err := ZT.Refs.Update(refs.Latest, m.ID()); err != nil {
			ZT.Log.WithError(err).Warn("failed to update LATEST")
		}
		if pushTag != "" {
			if err := ZT.Refs.Update(pushTag, m.ID()); err != nil {
				return fmt.Errorf("archive stored as %s but tagging failed: %w", m.ID().Short(), err)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Pushed %s (%s) as %s\n", m.Name, vault.FormatSize(m.Size), m.ID().Short())
		if pushTag != "" {
			fmt.Fprintf(out, "🏷️  Tagged %s\n", pushTag)
		}
		if pushVerbose {
			return vault.Describe(m, out)
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().BoolVarP(&pushVerbose, "verbose", "v", false, "print the full manifest")
	pushCmd.Flags().StringVarP(&pushTag, "tag", "t", "", "name the stored archive (pull it back with this name)")
	rootCmd.AddCommand(pushCmd)
}
