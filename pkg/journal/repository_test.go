package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestRepo 每个测试一个独立的内存库
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	db := NewWithConn(conn)
	require.NoError(t, db.AutoMigrate())
	return NewRepository(db)
}

func mustRecord(t *testing.T, repo *Repository, op *Operation) {
	t.Helper()
	require.NoError(t, repo.Record(context.Background(), op))
}

func TestRepository_RecordAndRecent(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	// 1. 写三条，时间递增
	for i, kind := range []string{KindZip, KindUnzip, KindPush} {
		mustRecord(t, repo, &Operation{
			Kind:      kind,
			Input:     fmt.Sprintf("in-%d", i),
			Status:    StatusOK,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	// 2. 倒序读回
	ops, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	assert.Equal(t, KindPush, ops[0].Kind)
	assert.Equal(t, KindZip, ops[2].Kind)
	assert.NotZero(t, ops[0].ID)

	// 3. 限制条数
	ops, err = repo.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, ops, 2)

	// 4. 按类型过滤
	ops, err = repo.RecentByKind(ctx, KindUnzip, 0)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "in-1", ops[0].Input)
}

func TestRepository_FailureAndMeta(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	op := &Operation{
		Kind:       KindUnzip,
		Input:      "broken.bin",
		Status:     StatusFailed,
		ErrorKind:  "unsupported format",
		Detail:     "unknown or unsupported format for 'broken.bin'",
		DurationMs: 12,
	}
	require.NoError(t, op.SetMeta(map[string]any{"base": "broken"}))
	mustRecord(t, repo, op)
	assert.False(t, op.CreatedAt.IsZero(), "Record 应该补上时间")

	ops, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	got := ops[0]
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "unsupported format", got.ErrorKind)
	assert.Equal(t, 12*time.Millisecond, got.Duration())
	assert.JSONEq(t, `{"base":"broken"}`, string(got.Meta))
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")

	db, err := Open(context.Background(), Config{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	mustRecord(t, repo, &Operation{Kind: KindZip, Status: StatusOK})
	assert.FileExists(t, path)
}

func TestOpen_Drivers(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: DriverNone})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = Open(context.Background(), Config{Driver: "mysql"})
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Driver: DriverSQLite})
	assert.Error(t, err, "sqlite 需要路径")
}
