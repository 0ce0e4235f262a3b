// 包 cache：容量受限、按条目 TTL 的前置解析缓存
// 背景：LRU 结构由 hashicorp/golang-lru 提供，本层补充逐条过期时间与命中统计；
// 过期采用惰性策略——仅在访问时发现并剔除，不做后台清扫（最简单且读路径终会触达陈旧键）。
// 约束：整个结构由单把读写锁保护，get/set 的临界区包含统计更新；未命中不是错误。
package cache

import (
	"errors"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/copyleftdev/rasn/internal/asn"
)

// ErrInvalidCapacity：仅在构造期出现
var ErrInvalidCapacity = errors.New("cache: capacity must be positive")

// entry：缓存条目，过期时间在写入时一次性计算
type entry struct {
	info      asn.Info
	expiresAt time.Time
}

// 文档注释：缓存统计快照
// 背景：计数器单调递增，只读快照暴露给调用方，统计本身不驱动任何行为。
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
}

// HitRate：h/(h+m)，两者皆零时定义为 0
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache：解析缓存句柄
type Cache struct {
	mu       sync.RWMutex
	lru      *lru.Cache[string, entry]
	hits     uint64
	misses   uint64
	capacity int
}

// New：构造固定容量缓存；容量非正视为配置错误
func New(capacity int) (*Cache, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	l, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l, capacity: capacity}, nil
}

// 文档注释：读取并校验过期（惰性剔除）
// 背景：命中即刷新 LRU 近期性；过期条目在此剔除并计为未命中。
// 返回：值的副本；Info 为值类型，天然不共享可变状态。
func (c *Cache) Get(key string) (asn.Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		return asn.Info{}, false
	}
	if time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		c.misses++
		return asn.Info{}, false
	}
	c.hits++
	return e.info, true
}

// Set：无条件写入，过期时间为 now+ttl；超容量按 LRU 淘汰最久未用者
func (c *Cache) Set(key string, info asn.Info, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry{info: info, expiresAt: time.Now().Add(ttl)})
}

// Invalidate：显式失效单个键
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Clear：清空全部条目，计数器保留
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Stats：返回统计快照（非实时视图）
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: c.lru.Len(), Capacity: c.capacity}
}

// Capacity：构造期固定的容量
func (c *Cache) Capacity() int { return c.capacity }
