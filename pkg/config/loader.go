package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀：ZT_LOG_LEVEL 对应 log.level
const EnvPrefix = "ZT"

// Load 初始化 Viper 配置，返回实际使用的配置文件 (没找到时为空串)
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) (string, error) {
	// 1. 默认值
	if err := setDefaults(); err != nil {
		return "", err
	}

	// 2. 搜索路径
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return "", err
		}
		// 当前目录 -> ./.zt -> ~/.config/ztools
		viper.AddConfigPath(".")
		viper.AddConfigPath(".zt")
		viper.AddConfigPath(dir)

		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 3. 环境变量
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 4. 读取配置文件；没有文件不算错，文件格式错才算
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("fatal error config file: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}

// Dir 返回 ztools 的用户配置目录 (~/.config/ztools)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ztools"), nil
}

func setDefaults() error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	// 引擎
	viper.SetDefault("zip.algorithm", "gzip")
	viper.SetDefault("gzip.level", 6)
	viper.SetDefault("sevenzip.binary", "7z")
	viper.SetDefault("engine.cleanup_on_failure", true)

	// 排除规则
	viper.SetDefault("ignore.file", ".ztignore")
	viper.SetDefault("ignore.patterns", []string{})

	// 脚本
	viper.SetDefault("scripts.directory", filepath.Join(dir, "scripts"))

	// 日志
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// 操作日志
	viper.SetDefault("journal.driver", "sqlite")
	viper.SetDefault("journal.path", filepath.Join(dir, "journal.db"))
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "ztools")
	viper.SetDefault("database.name", "ztools")
	viper.SetDefault("database.sslmode", "disable")

	// 归档仓库
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.path", filepath.Join(dir, "vault"))
	viper.SetDefault("refs.path", filepath.Join(dir, "refs"))
	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("redis.ttl", "24h")
	return nil
}
