package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/copyleftdev/rasn/internal/asn"
	"github.com/copyleftdev/rasn/internal/logger"
)

// 文档注释：Redis 共享缓存层
// 背景：多实例部署时在进程内缓存之外共享命中结果；值为 JSON 序列化的归属信息。
// 约束：Redis 故障只降级为未命中并记录日志，不影响本地解析主路径；写入失败同样静默降级。
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis：构造共享缓存；client 为 nil 时返回 nil，调用方按未配置处理
func NewRedis(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if rdb == nil {
		return nil
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (r *RedisCache) key(k string) string { return "asn:" + k }

func (r *RedisCache) Get(ctx context.Context, key string) (asn.Info, bool) {
	s, err := r.rdb.Get(ctx, r.key(key)).Result()
	if err != nil || s == "" {
		return asn.Info{}, false
	}
	var info asn.Info
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		logger.L().Debug("redis_decode_error", "key", key, "err", err)
		return asn.Info{}, false
	}
	return info, true
}

func (r *RedisCache) Set(ctx context.Context, key string, info asn.Info) {
	b, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, r.key(key), string(b), r.ttl).Err(); err != nil {
		logger.L().Debug("redis_set_error", "key", key, "err", err)
	}
}
