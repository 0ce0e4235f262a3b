// 工具入口：将溢出范围与 ASN 元数据批量装载进冷库
package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/copyleftdev/rasn/internal/asn"
	"github.com/copyleftdev/rasn/internal/coldstore"
	"github.com/copyleftdev/rasn/internal/iputil"
	"github.com/copyleftdev/rasn/internal/logger"
)

// 文档注释：溢出数据装载
// 背景：不进入热表的少量范围（临时修正、新分配段）走冷库；输入与 ip2asn 同构的 TSV，
// 范围与元数据一次装载：每行写一条范围映射，并按 ASN 去重写元数据。
// 约束：与热表重叠的段不在此校验——解析器按层级顺序以热表为权威。
func main() {
	_ = godotenv.Load(".env")
	l := logger.Setup()
	path := os.Getenv("RASN_OVERFLOW_TSV")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		l.Error("overflow_tsv_missing")
		os.Exit(1)
	}
	coldDir := os.Getenv("RASN_COLD_DIR")
	if coldDir == "" {
		coldDir = filepath.Join("data", "cold")
	}
	if err := os.MkdirAll(coldDir, 0o755); err != nil {
		l.Error("cold_dir_error", "dir", coldDir, "err", err)
		os.Exit(1)
	}
	store, err := coldstore.Open(filepath.Join(coldDir, "overflow.db"))
	if err != nil {
		l.Error("coldstore_open_error", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	f, err := os.Open(path)
	if err != nil {
		l.Error("overflow_open_error", "path", path, "err", err)
		os.Exit(1)
	}
	defer f.Close()
	l.Info("overflow_load_begin", "path", path)

	seen := make(map[uint32]struct{})
	var ranges, infos, skipped int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for sc.Scan() {
		cols := strings.Split(sc.Text(), "\t")
		if len(cols) < 5 {
			skipped++
			continue
		}
		start, err1 := iputil.ParseIPv4(cols[0])
		end, err2 := iputil.ParseIPv4(cols[1])
		asnNum, err3 := strconv.ParseUint(cols[2], 10, 32)
		if err1 != nil || err2 != nil || err3 != nil || asnNum == 0 || start > end {
			skipped++
			continue
		}
		if err := store.PutRange(start, end, uint32(asnNum)); err != nil {
			l.Error("range_put_error", "start", cols[0], "err", err)
			os.Exit(1)
		}
		ranges++
		if _, ok := seen[uint32(asnNum)]; !ok {
			seen[uint32(asnNum)] = struct{}{}
			info := asn.Info{ASN: uint32(asnNum), Country: cols[3], Organization: cols[4]}
			if err := store.PutInfo(info); err != nil {
				l.Error("info_put_error", "asn", asnNum, "err", err)
				os.Exit(1)
			}
			infos++
		}
	}
	if err := sc.Err(); err != nil {
		l.Error("overflow_scan_error", "err", err)
		os.Exit(1)
	}
	l.Info("overflow_load_done", "ranges", ranges, "asn_infos", infos, "skipped", skipped)
}
