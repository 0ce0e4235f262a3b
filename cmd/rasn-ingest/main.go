// 工具入口：将 ip2asn TSV 数据集导入 Postgres 范围来源表，供快照构建使用
package main

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/copyleftdev/rasn/internal/iputil"
	"github.com/copyleftdev/rasn/internal/logger"
	"github.com/copyleftdev/rasn/internal/migrate"
	"github.com/copyleftdev/rasn/internal/utils"
)

// 文档注释：TSV 导入
// 背景：数据源为 ip2asn 格式（起始IP、结束IP、ASN、国家、组织，制表符分隔，起止支持点分或整数形式）；
// 未路由段（ASN 为 0）跳过；重复起始地址按后到覆盖，便于重复导入。
// 约束：逐批提交以控制事务大小；解析失败的行记录并跳过，不中断整体导入。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	path := os.Getenv("RASN_TSV")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		l.Error("tsv_path_missing")
		os.Exit(1)
	}
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		l.Error("db_open_error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		l.Error("schema_error", "err", err)
		os.Exit(1)
	}

	f, err := os.Open(path)
	if err != nil {
		l.Error("tsv_open_error", "path", path, "err", err)
		os.Exit(1)
	}
	defer f.Close()
	l.Info("ingest_begin", "path", path)

	const batchSize = 2000
	tx, err := db.Begin()
	if err != nil {
		l.Error("tx_begin_error", "err", err)
		os.Exit(1)
	}
	stmtText := `INSERT INTO _asn_ranges(start_int,end_int,asn,country,organization)
        VALUES($1,$2,$3,$4,$5)
        ON CONFLICT (start_int) DO UPDATE
        SET end_int=EXCLUDED.end_int, asn=EXCLUDED.asn,
            country=EXCLUDED.country, organization=EXCLUDED.organization`
	var total, skipped, pending int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for sc.Scan() {
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) < 5 {
			skipped++
			continue
		}
		start, ok1 := parseAddr(cols[0])
		end, ok2 := parseAddr(cols[1])
		asnNum, err := strconv.ParseUint(cols[2], 10, 32)
		if !ok1 || !ok2 || err != nil || start > end {
			skipped++
			continue
		}
		if asnNum == 0 {
			// not routed
			skipped++
			continue
		}
		if _, err := tx.Exec(stmtText, int64(start), int64(end), int64(asnNum), cols[3], cols[4]); err != nil {
			l.Error("insert_error", "start", cols[0], "err", err)
			_ = tx.Rollback()
			os.Exit(1)
		}
		total++
		pending++
		if pending >= batchSize {
			if err := tx.Commit(); err != nil {
				l.Error("tx_commit_error", "err", err)
				os.Exit(1)
			}
			pending = 0
			tx, err = db.Begin()
			if err != nil {
				l.Error("tx_begin_error", "err", err)
				os.Exit(1)
			}
			l.Debug("ingest_progress", "rows", total)
		}
	}
	if err := sc.Err(); err != nil {
		l.Error("tsv_scan_error", "err", err)
		_ = tx.Rollback()
		os.Exit(1)
	}
	if err := tx.Commit(); err != nil {
		l.Error("tx_commit_error", "err", err)
		os.Exit(1)
	}
	l.Info("ingest_done", "rows", total, "skipped", skipped)
}

// parseAddr：兼容点分与十进制整数两种起止表示
func parseAddr(s string) (uint32, bool) {
	if strings.Contains(s, ".") {
		v, err := iputil.ParseIPv4(s)
		return v, err == nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err == nil
}
