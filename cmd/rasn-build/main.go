// 工具入口：从 Postgres 范围来源表构建列式快照文件（离线、原子替换）
package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/copyleftdev/rasn/internal/logger"
	"github.com/copyleftdev/rasn/internal/rangetab"
	"github.com/copyleftdev/rasn/internal/utils"
)

// 文档注释：快照构建
// 背景：按起始地址升序全量读出范围，分批写入列式快照；服务端重启后加载新快照。
// 约束：来源表以 start_int 为主键保证无重复起点；重叠校验在此做一次，发现即失败，
// 避免把违反不重叠不变量的数据固化进只读热表。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	out := os.Getenv("RASN_SNAPSHOT")
	if out == "" {
		out = filepath.Join("data", "snapshot", "ip2asn-v4.rsnt")
	}
	batchRows := 1 << 20
	if v := os.Getenv("RASN_BATCH_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			batchRows = n
		}
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT start_int, end_int, asn, country, organization FROM _asn_ranges ORDER BY start_int`)
	if err != nil {
		l.Error("range_scan_error", "err", err)
		os.Exit(1)
	}
	defer rows.Close()

	var batches []rangetab.Batch
	cur := rangetab.Batch{}
	var lastEnd int64 = -1
	var total int
	for rows.Next() {
		var s, e, a int64
		var country, org string
		if err := rows.Scan(&s, &e, &a, &country, &org); err != nil {
			l.Error("range_scan_item_error", "err", err)
			os.Exit(1)
		}
		if s <= lastEnd {
			l.Error("range_overlap", "start", s, "prev_end", lastEnd)
			os.Exit(1)
		}
		lastEnd = e
		cur.Start = append(cur.Start, uint32(s))
		cur.End = append(cur.End, uint32(e))
		cur.ASN = append(cur.ASN, uint32(a))
		cur.Country = append(cur.Country, country)
		cur.Org = append(cur.Org, org)
		total++
		if len(cur.Start) >= batchRows {
			batches = append(batches, cur)
			cur = rangetab.Batch{}
		}
	}
	if err := rows.Err(); err != nil {
		l.Error("range_scan_error", "err", err)
		os.Exit(1)
	}
	if len(cur.Start) > 0 {
		batches = append(batches, cur)
	}
	if total == 0 {
		l.Error("range_source_empty")
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		l.Error("snapshot_dir_error", "err", err)
		os.Exit(1)
	}
	if err := rangetab.WriteSnapshot(out, batches); err != nil {
		l.Error("snapshot_write_error", "err", err)
		os.Exit(1)
	}
	l.Info("build_done", "path", out, "rows", total, "batches", len(batches))
}
