package commands

import (
	"ztools/pkg/scripts"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <name> [-- args...]",
	Short: "Run a shell script from the scripts directory",
	Long: `Run <name>.sh from scripts.directory (default ~/.config/ztools/scripts).
The execute bit is added if missing; arguments after the name are passed through.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scripts.Run(cmd.Context(), ZT.ScriptsDir, args[0], args[1:], scripts.Stdio{
			In:  cmd.InOrStdin(),
			Out: cmd.OutOrStdout(),
			Err: cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
