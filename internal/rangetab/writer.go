package rangetab

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/copyleftdev/rasn/internal/logger"
)

// 文档注释：写出列式快照（原子替换）
// 背景：构建工具离线生成快照，服务端只读加载；先写临时文件再重命名，避免并发读到半成品。
// 约束：调用方保证各批内列等长、全局按 start 升序且互不重叠；字符串列在此做字典编码。
func WriteSnapshot(path string, batches []Batch) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(snapshotMagic); err != nil {
		return err
	}
	if err := writeU32(w, snapshotVersion); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(batches))); err != nil {
		return err
	}
	var rows int
	for _, b := range batches {
		n := len(b.Start)
		if len(b.End) != n || len(b.ASN) != n || len(b.Country) != n || len(b.Org) != n {
			return fmt.Errorf("snapshot batch columns have unequal length")
		}
		if err := writeU32(w, uint32(n)); err != nil {
			return err
		}
		for _, col := range [][]uint32{b.Start, b.End, b.ASN} {
			for _, v := range col {
				if err := writeU32(w, v); err != nil {
					return err
				}
			}
		}
		if err := writeStringColumn(w, b.Country); err != nil {
			return err
		}
		if err := writeStringColumn(w, b.Org); err != nil {
			return err
		}
		rows += n
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	logger.L().Info("snapshot_write_done", "path", path, "batches", len(batches), "rows", rows)
	return nil
}

// writeStringColumn：字典编码写出（字典按首次出现顺序编号）
func writeStringColumn(w *bufio.Writer, col []string) error {
	idx := make(map[string]uint32, 64)
	var dict []string
	keys := make([]uint32, len(col))
	for i, s := range col {
		k, ok := idx[s]
		if !ok {
			k = uint32(len(dict))
			idx[s] = k
			dict = append(dict, s)
		}
		keys[i] = k
	}
	if err := writeU32(w, uint32(len(dict))); err != nil {
		return err
	}
	for _, s := range dict {
		if len(s) > 0xffff {
			return fmt.Errorf("dictionary value too long: %d bytes", len(s))
		}
		var l [2]byte
		binary.BigEndian.PutUint16(l[:], uint16(len(s)))
		if _, err := w.Write(l[:]); err != nil {
			return err
		}
		if _, err := w.WriteString(s); err != nil {
			return err
		}
	}
	for _, k := range keys {
		if err := writeU32(w, k); err != nil {
			return err
		}
	}
	return nil
}

func writeU32(w *bufio.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}
