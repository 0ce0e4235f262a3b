// 包 api：集中注册 HTTP API 路由以解耦主入口；本层只消费解析契约，传入已解析的 32 位地址
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/copyleftdev/rasn/internal/asn"
	"github.com/copyleftdev/rasn/internal/coldstore"
	"github.com/copyleftdev/rasn/internal/iputil"
	"github.com/copyleftdev/rasn/internal/logger"
	"github.com/copyleftdev/rasn/internal/metrics"
	"github.com/copyleftdev/rasn/internal/resolver"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requireAdmin：管理路径令牌校验
// 约束：ADMIN_TOKEN 未配置时管理路径整体关闭（恒 403），避免空令牌放行
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	t := r.Header.Get("x-admin-token")
	if t == "" || t != os.Getenv("ADMIN_TOKEN") {
		w.WriteHeader(http.StatusForbidden)
		return false
	}
	return true
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载
func BuildRoutes(res *resolver.Resolver, cold *coldstore.Store) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ip", func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.RequestsTotal.Inc()
		ipStr := r.URL.Query().Get("ip")
		if ipStr == "" {
			ipStr = getClientIP(r)
		}
		ip, err := iputil.ParseIPv4(ipStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid ipv4 address"})
			return
		}
		info, found, err := res.Resolve(r.Context(), ip)
		metrics.RequestDurationMs.Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			logger.L().Error("resolve_error", "ip", ipStr, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResult{Error: "lookup failed"})
			return
		}
		out := queryResult{IP: iputil.FormatIPv4(ip), Found: found}
		if found {
			out.ASN = info.ASN
			out.Organization = info.Organization
			out.Country = info.Country
			out.Description = info.Description
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("/asn", func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.ParseUint(r.URL.Query().Get("number"), 10, 32)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid asn number"})
			return
		}
		info, err := cold.GetInfo(uint32(n))
		switch {
		case errors.Is(err, coldstore.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorResult{Error: asn.Format(uint32(n)) + " not found"})
		case err != nil:
			logger.L().Error("asn_get_error", "asn", n, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResult{Error: "metadata read failed"})
		default:
			writeJSON(w, http.StatusOK, info)
		}
	})

	mux.HandleFunc("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
		st := res.Cache().Stats()
		writeJSON(w, http.StatusOK, map[string]any{
			"hits":     st.Hits,
			"misses":   st.Misses,
			"size":     st.Size,
			"capacity": st.Capacity,
			"hit_rate": st.HitRate(),
		})
	})

	// 文档注释：管理路径——冷库写入与缓存运维
	// 背景：冷库条目由管理员带外维护（热表不在运行期修改）；全部要求令牌。
	mux.HandleFunc("/admin/range", func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req rangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid body"})
			return
		}
		var startIP, endIP uint32
		if req.CIDR != "" {
			c, err := iputil.ParseCIDR(req.CIDR)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid cidr"})
				return
			}
			startIP, endIP = c.First(), c.Last()
		} else {
			var err1, err2 error
			startIP, err1 = iputil.ParseIPv4(req.Start)
			endIP, err2 = iputil.ParseIPv4(req.End)
			if err1 != nil || err2 != nil || startIP > endIP {
				writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid range"})
				return
			}
		}
		if err := cold.PutRange(startIP, endIP, req.ASN); err != nil {
			logger.L().Error("range_put_error", "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResult{Error: "range write failed"})
			return
		}
		logger.L().Info("range_put", "start", iputil.FormatIPv4(startIP), "end", iputil.FormatIPv4(endIP), "asn", req.ASN)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/admin/asn", func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		switch r.Method {
		case http.MethodPut:
			var info asn.Info
			if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid body"})
				return
			}
			if err := cold.PutInfo(info); err != nil {
				logger.L().Error("asn_put_error", "asn", info.ASN, "err", err)
				writeJSON(w, http.StatusInternalServerError, errorResult{Error: "metadata write failed"})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			n, err := strconv.ParseUint(r.URL.Query().Get("number"), 10, 32)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResult{Error: "invalid asn number"})
				return
			}
			if err := cold.DeleteInfo(uint32(n)); err != nil {
				logger.L().Error("asn_delete_error", "asn", n, "err", err)
				writeJSON(w, http.StatusInternalServerError, errorResult{Error: "metadata delete failed"})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/admin/cache/invalidate", func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		key := r.URL.Query().Get("key")
		if key == "" {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: "missing key"})
			return
		}
		res.Cache().Invalidate(key)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/admin/cache/clear", func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}
		res.Cache().Clear()
		logger.L().Info("cache_cleared")
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}
