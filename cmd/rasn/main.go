// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/copyleftdev/rasn/internal/api"
	"github.com/copyleftdev/rasn/internal/cache"
	"github.com/copyleftdev/rasn/internal/coldstore"
	"github.com/copyleftdev/rasn/internal/logger"
	"github.com/copyleftdev/rasn/internal/metrics"
	"github.com/copyleftdev/rasn/internal/middleware"
	"github.com/copyleftdev/rasn/internal/rangetab"
	"github.com/copyleftdev/rasn/internal/resolver"
	"github.com/copyleftdev/rasn/internal/utils"
	"github.com/copyleftdev/rasn/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	l.Info("rasn_start", "commit", version.Commit)

	snapshotPath := os.Getenv("RASN_SNAPSHOT")
	if snapshotPath == "" {
		snapshotPath = filepath.Join("data", "snapshot", "ip2asn-v4.rsnt")
	}
	coldDir := os.Getenv("RASN_COLD_DIR")
	if coldDir == "" {
		coldDir = filepath.Join("data", "cold")
	}

	// 热表加载：构造期致命——半成品表不对外暴露，失败直接退出
	table, err := rangetab.Load(snapshotPath)
	if err != nil {
		l.Error("snapshot_load_error", "path", snapshotPath, "err", err)
		os.Exit(1)
	}
	l.Info("snapshot_ready", "rows", table.Len())

	if err := os.MkdirAll(coldDir, 0o755); err != nil {
		l.Error("cold_dir_error", "dir", coldDir, "err", err)
		os.Exit(1)
	}
	cold, err := coldstore.Open(filepath.Join(coldDir, "overflow.db"))
	if err != nil {
		l.Error("coldstore_open_error", "err", err)
		os.Exit(1)
	}
	defer cold.Close()
	l.Info("coldstore_ready", "dir", coldDir)

	capacity := 10000
	if v := os.Getenv("CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			capacity = n
		}
	}
	ttl := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	c, err := cache.New(capacity)
	if err != nil {
		l.Error("cache_init_error", "capacity", capacity, "err", err)
		os.Exit(1)
	}
	l.Info("cache_ready", "capacity", capacity, "ttl", ttl.String())

	var shared resolver.SharedCache
	if rc := utils.OpenRedisFromEnv(); rc != nil {
		shared = cache.NewRedis(rc, 24*time.Hour)
		l.Info("redis_enabled")
	} else {
		l.Info("redis_disabled")
	}

	// 层级顺序即权威顺序：缓存 → 热表 → 冷库；重叠覆盖时热表胜出
	res := resolver.New(c, shared, ttl,
		resolver.TableSource{Table: table},
		resolver.ColdSource{Store: cold},
	)

	mux := http.NewServeMux()
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, api.BuildRoutes(res, cold)))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.RateLimit(handler)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	s := &http.Server{Addr: addr, Handler: handler}
	cert := os.Getenv("TLS_CERT_PATH")
	key := os.Getenv("TLS_KEY_PATH")
	if cert != "" && key != "" {
		l.Info("listening_tls", "addr", addr, "cert", cert)
		if err := s.ListenAndServeTLS(cert, key); err != nil {
			l.Error("serve_error", "err", err)
			os.Exit(1)
		}
		return
	}
	l.Info("listening", "addr", addr)
	if err := s.ListenAndServe(); err != nil {
		l.Error("serve_error", "err", err)
		os.Exit(1)
	}
}
