package commands

import (
	"fmt"
	"time"

	"ztools/pkg/journal"
	"ztools/pkg/naming"
	"ztools/pkg/types"
	"ztools/pkg/vault"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	zipGzip     bool
	zipSevenZip bool
	zipOutfile  string
)

var zipCmd = &cobra.Command{
	Use:   "zip <path>",
	Short: "Compress a file or directory into .gz / .tar.gz / .7z",
	Long: `Compress a file or a directory.

  gzip + directory -> <base>.tar.gz
  gzip + file      -> <base>.<ext>.gz
  7z               -> <base>.7z

The base name defaults to the directory name or the file stem and can be
overridden with -f. Existing outputs with the same name are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := args[0]

		// 1. 算法：命令行开关优先，否则取配置
		alg, err := zipAlgorithm()
		if err != nil {
			return err
		}

		// 2. 输出名
		base := naming.ZipBase(input, zipOutfile)

		// 3. 执行
		start := time.Now()
		res, err := ZT.Engine.Compress(ctx, input, alg, base)
		record(ctx, journal.Operation{
			Kind:      journal.KindZip,
			Input:     input,
			Output:    res.Output,
			Algorithm: string(alg),
			Bytes:     res.Bytes,
		}, start, err)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Compressed %s -> %s (%s)\n", input, res.Output, vault.FormatSize(res.Bytes))
		return nil
	},
}

func zipAlgorithm() (types.Algorithm, error) {
	switch {
	case zipSevenZip:
		return types.AlgorithmSevenZip, nil
	case zipGzip:
		return types.AlgorithmGzip, nil
	}
	return types.ParseAlgorithm(viper.GetString("zip.algorithm"))
}

func init() {
	zipCmd.Flags().BoolVar(&zipGzip, "gzip", false, "use gzip (tar.gz for directories)")
	zipCmd.Flags().BoolVar(&zipSevenZip, "7z", false, "use 7z (requires the 7z binary)")
	zipCmd.Flags().StringVarP(&zipOutfile, "outfile", "f", "", "base name of the output")
	zipCmd.MarkFlagsMutuallyExclusive("gzip", "7z")

	rootCmd.AddCommand(zipCmd)
}
