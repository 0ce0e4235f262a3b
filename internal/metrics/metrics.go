// 包 metrics：解析引擎与查询接口的 Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rasn_requests_total",
		Help: "Total number of /ip lookup requests",
	})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rasn_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	EmptyResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rasn_empty_results_total",
		Help: "Total lookups with no matching range in any tier",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rasn_cache_hits_total",
		Help: "Total local resolution cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rasn_cache_misses_total",
		Help: "Total local resolution cache misses",
	})
	SharedHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rasn_shared_cache_hits_total",
		Help: "Total shared (redis) cache hits",
	})
	SharedMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rasn_shared_cache_misses_total",
		Help: "Total shared (redis) cache misses",
	})
	TierHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rasn_tier_hits_total",
		Help: "Total lookup hits by resolution tier",
	}, []string{"tier"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(EmptyResultsTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(SharedHitsTotal)
	prometheus.MustRegister(SharedMissesTotal)
	prometheus.MustRegister(TierHitsTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
