package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"ztools/pkg/core"
	"ztools/pkg/storage"
	"ztools/pkg/types"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// CachedStore 给底层 storage.Store 加一层 Redis 存在性缓存
// 只缓存 "这个 Hash 存在"，不缓存对象内容
type CachedStore struct {
	backend storage.Store
	client  *redis.Client
	ttl     time.Duration
	log     *logrus.Entry
}

type Config struct {
	RedisURL string        // redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 0 表示不过期
	Log      *logrus.Entry
}

const keyPrefix = "zt:obj:"

func NewCachedStore(backend storage.Store, cfg Config) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	// 连不上就直接失败，由调用方决定是否退回无缓存模式
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &CachedStore{
		backend: backend,
		client:  client,
		ttl:     cfg.TTL,
		log:     log.WithField("component", "cache"),
	}, nil
}

func (s *CachedStore) cacheKey(hash types.Hash) string {
	return keyPrefix + string(hash)
}

// Has 先查 Redis，未命中再查后端
func (s *CachedStore) Has(ctx context.Context, hash types.Hash) (bool, error) {
	key := s.cacheKey(hash)

	// 1. Redis 故障时降级为直查后端
	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		s.log.WithError(err).Warn("redis unavailable, falling back to backend")
	} else if val > 0 {
		return true, nil
	}

	// 2. 未命中
	found, err := s.backend.Has(ctx, hash)
	if err != nil {
		return false, err
	}

	// 3. 回填
	if found {
		s.fill(ctx, key)
	}
	return found, nil
}

func (s *CachedStore) Put(ctx context.Context, obj core.Object) error {
	exists, err := s.Has(ctx, obj.ID())
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.backend.Put(ctx, obj); err != nil {
		return err
	}

	// 后端写成功之后才写缓存
	s.fill(ctx, s.cacheKey(obj.ID()))
	return nil
}

func (s *CachedStore) fill(ctx context.Context, key string) {
	if err := s.client.Set(ctx, key, "1", s.ttl).Err(); err != nil {
		s.log.WithError(err).WithField("key", key).Debug("cache fill failed")
	}
}

// Get 直接透传
func (s *CachedStore) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	return s.backend.Get(ctx, hash)
}

func (s *CachedStore) ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, prefix)
}

func (s *CachedStore) Close() error {
	return s.client.Close()
}
