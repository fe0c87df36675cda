package commands

import (
	"context"
	"fmt"
	"os"

	"ztools/pkg/app"
	"ztools/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	usedConfig string

	// 全局应用实例，供子命令使用
	ZT *app.App
)

// 这些命令是纯计算，不需要组装 App
var standalone = map[string]bool{
	"convert":    true,
	"detect":     true,
	"help":       true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:           "zt",
	Short:         "ztools: a zip/unzip toolbox",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if standalone[cmd.Name()] {
			return nil
		}

		var err error
		ZT, err = app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize ztools: %w", err)
		}
		if usedConfig != "" {
			ZT.Log.WithField("file", usedConfig).Debug("using config file")
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ZT == nil {
			return nil
		}
		err := ZT.Close()
		ZT = nil
		return err
	},
}

// Execute 是入口；错误统一在这里打印
func Execute() error {
	return ExecuteContext(context.Background())
}

func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "❌ %v\n", err)
	}
	// PreRun 之后命令失败时 PostRun 不会执行，这里兜底释放连接
	if ZT != nil {
		_ = ZT.Close()
		ZT = nil
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/ztools/config.yaml)")

	// 日志级别既可以写在 yaml 里，也可以用 --log-level 覆盖
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace|debug|info|warn|error)")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to bind flag:", err)
		os.Exit(1)
	}
}

func initConfig() {
	var err error
	if usedConfig, err = config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Config error:", err)
		os.Exit(1)
	}
}
