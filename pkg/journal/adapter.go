// Package journal 把每次归档操作记到 SQL 数据库里 (本地 sqlite 或共享 postgres)。
package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// ErrDisabled 表示配置里关闭了操作日志
var ErrDisabled = errors.New("journal is disabled")

type Config struct {
	Driver string // sqlite | postgres | none

	// sqlite
	Path string

	// postgres
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	Debug bool // 打印 SQL
}

// DB 封装 GORM 连接
type DB struct {
	conn *gorm.DB
}

// Open 按驱动打开数据库并迁移表结构
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverPostgres {
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("journal database ping failed: %w", err)
	}

	db := NewWithConn(conn)
	if err := db.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("journal migration failed: %w", err)
	}
	return db, nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.Path == "" {
			return nil, errors.New("journal.path is required for sqlite")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal dir: %w", err)
		}
		return sqlite.Open(cfg.Path), nil
	case DriverPostgres:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, sslMode,
		)
		return postgres.Open(dsn), nil
	case DriverNone:
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
}

// NewWithConn 复用已有连接，测试里用内存 sqlite
func NewWithConn(conn *gorm.DB) *DB {
	return &DB{conn: conn}
}

func (d *DB) AutoMigrate() error {
	return d.conn.AutoMigrate(&Operation{})
}

func (d *DB) Conn() *gorm.DB {
	return d.conn
}

func (d *DB) Close() error {
	sqlDB, err := d.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
