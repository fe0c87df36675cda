package journal

import (
	"context"
	"fmt"
	"time"
)

// DefaultLimit 是 Recent 不指定条数时的默认值
const DefaultLimit = 20

// Repository 封装对 operations 表的读写
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Record 写入一条记录；CreatedAt 为空时取当前时间
func (r *Repository) Record(ctx context.Context, op *Operation) error {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	if err := r.db.Conn().WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}
	return nil
}

// Recent 按时间倒序返回最近 n 条记录
func (r *Repository) Recent(ctx context.Context, n int) ([]Operation, error) {
	return r.find(ctx, "", n)
}

// RecentByKind 只看某一类操作
func (r *Repository) RecentByKind(ctx context.Context, kind string, n int) ([]Operation, error) {
	return r.find(ctx, kind, n)
}

func (r *Repository) find(ctx context.Context, kind string, n int) ([]Operation, error) {
	if n <= 0 {
		n = DefaultLimit
	}

	q := r.db.Conn().WithContext(ctx)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var ops []Operation
	err := q.Order("created_at DESC").Order("id DESC").Limit(n).Find(&ops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	return ops, nil
}
