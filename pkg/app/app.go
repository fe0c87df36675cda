// pkg/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"

	"ztools/pkg/codec/gzip"
	"ztools/pkg/codec/sevenzip"
	"ztools/pkg/codec/tarball"
	"ztools/pkg/ignore"
	"ztools/pkg/journal"
	"ztools/pkg/logging"
	"ztools/pkg/refs"
	"ztools/pkg/storage"
	"ztools/pkg/storage/cache"
	"ztools/pkg/storage/disk"
	"ztools/pkg/storage/s3"
	"ztools/pkg/vault"
	"ztools/pkg/zipper"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// App 是整个程序的依赖容器
// 归档仓库需要连接外部服务，只在第一次用到时才初始化
type App struct {
	Log        *logrus.Logger
	Engine     *zipper.Engine
	Journal    *journal.Repository // 关闭或不可用时为 nil
	Refs       *refs.Manager       // 仓库里清单的本地别名
	ScriptsDir string

	vault   *vault.Vault
	closers []func() error
}

// NewApp 按 viper 配置组装所有组件，不关心具体是哪条命令
func NewApp(ctx context.Context) (*App, error) {
	// 1. 日志
	log, err := logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
	if err != nil {
		return nil, err
	}

	a := &App{
		Log:        log,
		Refs:       refs.NewManager(viper.GetString("refs.path")),
		ScriptsDir: viper.GetString("scripts.directory"),
	}

	// 2. 引擎
	a.Engine = newEngine(logrus.NewEntry(log))

	// 3. 操作日志：打不开只告警，不影响归档本身
	a.Journal = a.openJournal(ctx)

	return a, nil
}

func newEngine(log *logrus.Entry) *zipper.Engine {
	ignoreFile := viper.GetString("ignore.file")
	patterns := viper.GetStringSlice("ignore.patterns")

	// 每个被打包的目录各自加载自己的 .ztignore
	loader := func(dir string) (tarball.SkipFunc, error) {
		m, err := ignore.NewMatcher(dir, ignoreFile, patterns...)
		if err != nil {
			return nil, err
		}
		if m.Empty() {
			return nil, nil
		}
		return m.Skip, nil
	}

	return zipper.NewEngine(
		gzip.NewCodec(viper.GetInt("gzip.level")),
		sevenzip.NewArchiver(viper.GetString("sevenzip.binary")),
		zipper.WithTarBuilder(tarball.NewBuilder(loader)),
		zipper.WithCleanupOnFailure(viper.GetBool("engine.cleanup_on_failure")),
		zipper.WithLogger(log),
	)
}

func (a *App) openJournal(ctx context.Context) *journal.Repository {
	cfg := journal.Config{
		Driver:   viper.GetString("journal.driver"),
		Path:     viper.GetString("journal.path"),
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.name"),
		SSLMode:  viper.GetString("database.sslmode"),
		Debug:    a.Log.IsLevelEnabled(logrus.TraceLevel),
	}

	db, err := journal.Open(ctx, cfg)
	if errors.Is(err, journal.ErrDisabled) {
		return nil
	}
	if err != nil {
		a.Log.WithError(err).Warn("operation journal unavailable")
		return nil
	}
	a.closers = append(a.closers, db.Close)
	return journal.NewRepository(db)
}

// Record 写一条操作日志；失败只告警
func (a *App) Record(ctx context.Context, op *journal.Operation) {
	if a.Journal == nil {
		return
	}
	if err := a.Journal.Record(ctx, op); err != nil {
		a.Log.WithError(err).Warn("failed to record operation")
	}
}

// Vault 返回归档仓库，第一次调用时初始化存储
func (a *App) Vault(ctx context.Context) (*vault.Vault, error) {
	if a.vault != nil {
		return a.vault, nil
	}

	entry := logrus.NewEntry(a.Log)
	store, err := initStore(ctx, entry)
	if err != nil {
		return nil, err
	}
	store = a.withCache(store, entry)

	a.vault = vault.New(store, entry)
	return a.vault, nil
}

func initStore(ctx context.Context, log *logrus.Entry) (storage.Store, error) {
	switch t := viper.GetString("storage.type"); t {
	case "disk", "":
		path := viper.GetString("storage.path")
		if path == "" {
			return nil, errors.New("storage.path not set")
		}
		return disk.NewAdapter(path)
	case "s3":
		return s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          viper.GetString("s3.bucket"),
			AccessKeyID:     viper.GetString("s3.access_key"),
			SecretAccessKey: viper.GetString("s3.secret_key"),
			Log:             log,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", t)
	}
}

// withCache 配了 redis.url 就套一层存在性缓存；Redis 连不上时退回直连
func (a *App) withCache(store storage.Store, log *logrus.Entry) storage.Store {
	url := viper.GetString("redis.url")
	if url == "" {
		return store
	}

	cached, err := cache.NewCachedStore(store, cache.Config{
		RedisURL: url,
		TTL:      viper.GetDuration("redis.ttl"),
		Log:      log,
	})
	if err != nil {
		log.WithError(err).Warn("redis cache disabled")
		return store
	}
	a.closers = append(a.closers, cached.Close)
	return cached
}

// Close 释放数据库、Redis 等连接
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
