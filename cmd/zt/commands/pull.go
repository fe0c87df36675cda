package commands

import (
	"errors"
	"fmt"
	"time"

	"ztools/pkg/journal"
	"ztools/pkg/refs"
	"ztools/pkg/types"

	"github.com/spf13/cobra"
)

var pullOutput string

var pullCmd = &cobra.Command{
	Use:   "pull <tag|hash-prefix>",
	Short: "Restore an archive from the vault",
	Long: `Restore an archive by tag (LATEST is the most recent push) or by its
manifest hash (at least 4 characters). The file is written under its
original name unless -o is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		v, err := ZT.Vault(ctx)
		if err != nil {
			return err
		}

		// 1. 先当作 tag，找不到再当作 hash 前缀
		prefix, err := resolveRef(args[0])
		if err != nil {
			return err
		}

		start := time.Now()
		m, path, err := v.Pull(ctx, prefix, pullOutput)
		op := journal.Operation{Kind: journal.KindPull, Input: args[0], Output: path}
		if m != nil {
			op.Algorithm = m.Format
			op.Bytes = m.Size
		}
		record(ctx, op, start, err)
		if err != nil {
			return fmt.Errorf("pull %s failed: %w", args[0], err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "📥 Restored %s -> %s\n", m.ID().Short(), path)
		return nil
	},
}

func resolveRef(arg string) (types.HashPrefix, error) {
	h, err := ZT.Refs.Get(arg)
	switch {
	case err == nil:
		return types.HashPrefix(h), nil
	case errors.Is(err, refs.ErrRefNotFound), errors.Is(err, refs.ErrInvalidName):
		return types.HashPrefix(arg), nil
	default:
		return "", err
	}
}

func init() {
	pullCmd.Flags().StringVarP(&pullOutput, "output", "o", "", "output path (default: original file name)")
	rootCmd.AddCommand(pullCmd)
}
