// 包 resolver：按序组合各查询层级（缓存 → 热表 → 冷库）的解析器
// 背景：层级统一抽象为 Source 能力接口并以有序列表组合（首个命中者胜出），
// 避免在多处硬编码三层顺序，测试时可任意增删与重排层级。
// 约束：各层之间无跨层事务；冷库被并发修改时，旧缓存条目会存活到 TTL 到期，
// 热表视为权威数据源，这是可接受的陈旧窗口而非一致性缺陷。
package resolver

import (
	"context"
	"time"

	"github.com/copyleftdev/rasn/internal/asn"
	"github.com/copyleftdev/rasn/internal/cache"
	"github.com/copyleftdev/rasn/internal/iputil"
	"github.com/copyleftdev/rasn/internal/logger"
	"github.com/copyleftdev/rasn/internal/metrics"
)

// 文档注释：范围解析能力接口
// 背景：热表与冷库各自适配到同一契约；未命中返回 false 而非错误，
// 引擎级故障（如持久化数据损坏）通过 error 立即上抛。
type Source interface {
	Name() string
	Find(ctx context.Context, ip uint32) (asn.Info, bool, error)
}

// SharedCache：可选的跨进程共享缓存层（如 Redis），未配置时为 nil
type SharedCache interface {
	Get(ctx context.Context, key string) (asn.Info, bool)
	Set(ctx context.Context, key string, info asn.Info)
}

// Resolver：组合后的解析入口
type Resolver struct {
	cache   *cache.Cache
	shared  SharedCache
	sources []Source
	ttl     time.Duration
}

// New：构造解析器；shared 允许为 nil（仅使用进程内缓存）
func New(c *cache.Cache, shared SharedCache, ttl time.Duration, sources ...Source) *Resolver {
	return &Resolver{cache: c, shared: shared, sources: sources, ttl: ttl}
}

// 文档注释：解析一个 IPv4 地址
// 背景：缓存命中立即返回，不再触达后续层级；层级命中后回填缓存（默认 TTL）；
// 全部未命中返回 false，负结果不缓存。
// 返回：(info, true) 命中；(zero, false, nil) 未命中；error 仅代表引擎级故障。
func (r *Resolver) Resolve(ctx context.Context, ip uint32) (asn.Info, bool, error) {
	key := iputil.FormatIPv4(ip)
	if info, ok := r.cache.Get(key); ok {
		metrics.CacheHitsTotal.Inc()
		return info, true, nil
	}
	metrics.CacheMissesTotal.Inc()

	if r.shared != nil {
		if info, ok := r.shared.Get(ctx, key); ok {
			metrics.SharedHitsTotal.Inc()
			r.cache.Set(key, info, r.ttl)
			return info, true, nil
		}
		metrics.SharedMissesTotal.Inc()
	}

	for _, s := range r.sources {
		info, ok, err := s.Find(ctx, ip)
		if err != nil {
			logger.L().Error("tier_find_error", "tier", s.Name(), "ip", key, "err", err)
			return asn.Info{}, false, err
		}
		if ok {
			metrics.TierHitsTotal.WithLabelValues(s.Name()).Inc()
			r.cache.Set(key, info, r.ttl)
			if r.shared != nil {
				r.shared.Set(ctx, key, info)
			}
			return info, true, nil
		}
	}
	metrics.EmptyResultsTotal.Inc()
	return asn.Info{}, false, nil
}

// Cache：暴露进程内缓存句柄（统计与管理路径使用）
func (r *Resolver) Cache() *cache.Cache { return r.cache }
