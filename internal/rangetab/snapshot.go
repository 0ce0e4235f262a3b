package rangetab

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/copyleftdev/rasn/internal/logger"
)

// 快照文件错误分类：构造期致命，不做部分恢复
var (
	ErrFileNotFound  = errors.New("snapshot file not found")
	ErrInvalidSchema = errors.New("invalid snapshot schema")
)

const (
	snapshotMagic   = "RSNT"
	snapshotVersion = 1
)

// 文档注释：快照中的一个记录批
// 背景：构建工具按批写出，读取端全部拼接；各列等长，字符串列写出时做字典编码。
type Batch struct {
	Start   []uint32
	End     []uint32
	ASN     []uint32
	Country []string
	Org     []string
}

// 文档注释：加载列式快照
// 背景：格式为 Magic("RSNT") + Version(u32) + BatchCount(u32)，每批含行数、三个 u32 列与两个字典编码字符串列；
// 读取端拼接全部批次后构造热表，保证多批文件不丢数据。
// 约束：全有或全无——任何截断、魔数/版本不符、字典键越界都返回 ErrInvalidSchema，不暴露半成品表。
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	logger.L().Debug("snapshot_load_begin", "path", path, "size", len(data))
	if len(data) < 12 || string(data[:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidSchema)
	}
	if v := binary.BigEndian.Uint32(data[4:8]); v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSchema, v)
	}
	batches := int(binary.BigEndian.Uint32(data[8:12]))
	r := reader{buf: data, off: 12}

	var start, end, asns []uint32
	var ctry, orgs []string
	for b := 0; b < batches; b++ {
		rc, err := r.u32()
		if err != nil {
			return nil, err
		}
		n := int(rc)
		if start, err = r.u32Column(start, n); err != nil {
			return nil, err
		}
		if end, err = r.u32Column(end, n); err != nil {
			return nil, err
		}
		if asns, err = r.u32Column(asns, n); err != nil {
			return nil, err
		}
		if ctry, err = r.stringColumn(ctry, n); err != nil {
			return nil, err
		}
		if orgs, err = r.stringColumn(orgs, n); err != nil {
			return nil, err
		}
	}
	if r.off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidSchema, len(data)-r.off)
	}
	logger.L().Info("snapshot_load_done", "path", path, "batches", batches, "rows", len(start))
	return NewTable(start, end, asns, ctry, orgs), nil
}

// reader：顺序解码器，越界一律视为 schema 错误
type reader struct {
	buf []byte
	off int
}

func (r *reader) u32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, fmt.Errorf("%w: truncated u32 at %d", ErrInvalidSchema, r.off)
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.off+2 > len(r.buf) {
		return 0, fmt.Errorf("%w: truncated u16 at %d", ErrInvalidSchema, r.off)
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32Column(dst []uint32, n int) ([]uint32, error) {
	if r.off+4*n > len(r.buf) {
		return nil, fmt.Errorf("%w: truncated u32 column", ErrInvalidSchema)
	}
	for i := 0; i < n; i++ {
		dst = append(dst, binary.BigEndian.Uint32(r.buf[r.off+4*i:]))
	}
	r.off += 4 * n
	return dst, nil
}

// stringColumn：解码字典编码字符串列（字典 + 每行 u32 键）
// 约束：键必须落在字典范围内，越界按损坏处理；字典值在批内共享以减少分配。
func (r *reader) stringColumn(dst []string, n int) ([]string, error) {
	dictLen, err := r.u32()
	if err != nil {
		return nil, err
	}
	dict := make([]string, 0, dictLen)
	for i := 0; i < int(dictLen); i++ {
		l, err := r.u16()
		if err != nil {
			return nil, err
		}
		if r.off+int(l) > len(r.buf) {
			return nil, fmt.Errorf("%w: truncated dictionary value", ErrInvalidSchema)
		}
		dict = append(dict, string(r.buf[r.off:r.off+int(l)]))
		r.off += int(l)
	}
	for i := 0; i < n; i++ {
		k, err := r.u32()
		if err != nil {
			return nil, err
		}
		if int(k) >= len(dict) {
			return nil, fmt.Errorf("%w: dictionary key %d out of range", ErrInvalidSchema, k)
		}
		dst = append(dst, dict[k])
	}
	return dst, nil
}
