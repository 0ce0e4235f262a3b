// 包 middleware：入口限流
package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/copyleftdev/rasn/internal/logger"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：查询入口为高频只读路径，峰值时限速保护缓存与冷库不被过载；按环境变量开关与速率配置。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type tokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := time.Now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit：按 RATE_LIMIT_PER_SEC 构造限流器；未配置或非正值时直接透传
func RateLimit(next http.Handler) http.Handler {
	n := 0
	if v := os.Getenv("RATE_LIMIT_PER_SEC"); v != "" {
		if x, err := strconv.Atoi(v); err == nil {
			n = x
		}
	}
	if n <= 0 {
		return next
	}
	tb := &tokenBucket{capacity: n}
	logger.L().Info("ratelimit_enabled", "per_sec", n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
