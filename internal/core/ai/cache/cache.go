// Package cache 生成結果快取，支援記憶體與 Redis 兩種後端
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"meal-planner/internal/infrastructure/config"
)

// 後端種類
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Store 快取後端，未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Key 以 SHA-256 雜湊組成快取鍵，各段以 \x00 分隔避免拼接碰撞
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "plan:" + hex.EncodeToString(hash[:])
}

// New 依設定建立快取後端，停用時回傳 nil
func New(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "", DriverMemory:
		return NewManager(cfg), nil
	case DriverRedis:
		svc, err := NewService(cfg)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
