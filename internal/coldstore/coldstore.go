// 包 coldstore：热表之外的溢出范围与 ASN 元数据的持久化存储
// 背景：底层使用 bbolt，三个命名分区——范围索引、元数据索引与预留的二级索引；
// 键采用大端编码使字节序即数值序，支持游标反向定位。
// 约束：锁与 MVCC 交由存储引擎（单写多读）；本层不做重试，引擎错误逐操作上抛。
package coldstore

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/copyleftdev/rasn/internal/asn"
	"github.com/copyleftdev/rasn/internal/logger"
)

// 分区名：与磁盘布局一一对应，indexes 预留未启用
var (
	bucketRanges   = []byte("ip_ranges")
	bucketMetadata = []byte("asn_metadata")
	bucketIndexes  = []byte("indexes")
)

// 错误分类：缺失与损坏区分上抛；查找未命中不是错误
var (
	ErrNotFound    = errors.New("coldstore: not found")
	ErrInvalidData = errors.New("coldstore: invalid data")
)

// Store：冷库句柄，进程内共享单实例
type Store struct {
	db *bolt.DB
}

// 文档注释：打开或创建冷库
// 背景：首次打开时创建全部分区；Timeout 防止文件锁被其他进程占用时无限等待。
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("coldstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketRanges, bucketMetadata, bucketIndexes} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("coldstore: init buckets: %w", err)
	}
	logger.L().Debug("coldstore_open", "path", path)
	return &Store{db: db}, nil
}

// Close：释放底层文件资源
func (s *Store) Close() error { return s.db.Close() }

// 文档注释：写入范围映射
// 背景：键为大端起始地址，值为 end(4字节)||asn(4字节)；管理路径调用，写入由引擎串行化。
// 约束：调用方保证层内范围互不重叠且 start <= end。
func (s *Store) PutRange(start, end, asnNum uint32) error {
	if start > end {
		return fmt.Errorf("%w: range start %d > end %d", ErrInvalidData, start, end)
	}
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], start)
	var val [8]byte
	binary.BigEndian.PutUint32(val[:4], end)
	binary.BigEndian.PutUint32(val[4:], asnNum)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRanges).Put(key[:], val[:])
	})
	if err != nil {
		return fmt.Errorf("coldstore: put range: %w", err)
	}
	return nil
}

// 文档注释：范围查找（反向定位）
// 背景：先定位最大的 key <= ip，再沿游标反向回退；命中条件 start <= ip <= end；
// 一旦出现 ip < start 即可终止——键反向单调递减，更早的条目不可能覆盖该地址。
// 返回：命中返回 (asn, true)；未命中返回 false，未命中不是错误；宽度异常的条目跳过。
func (s *Store) FindIP(ip uint32) (uint32, bool, error) {
	var search [4]byte
	binary.BigEndian.PutUint32(search[:], ip)
	var out uint32
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRanges).Cursor()
		k, v := c.Seek(search[:])
		// Seek 返回首个 >= search 的键；反向定位需要回退到 <= search
		if k == nil {
			k, v = c.Last()
		} else if binary.BigEndian.Uint32(k) > ip {
			k, v = c.Prev()
		}
		for k != nil {
			if len(k) == 4 && len(v) == 8 {
				start := binary.BigEndian.Uint32(k)
				end := binary.BigEndian.Uint32(v[:4])
				if ip >= start && ip <= end {
					out = binary.BigEndian.Uint32(v[4:])
					found = true
					return nil
				}
				if ip < start {
					return nil
				}
			}
			k, v = c.Prev()
		}
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("coldstore: find ip: %w", err)
	}
	return out, found, nil
}

// PutInfo：写入 ASN 元数据（自描述 JSON 记录，键为大端编号）
func (s *Store) PutInfo(info asn.Info) error {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], info.ASN)
	val, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("coldstore: encode info: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put(key[:], val)
	})
	if err != nil {
		return fmt.Errorf("coldstore: put info: %w", err)
	}
	return nil
}

// 文档注释：读取 ASN 元数据
// 返回：缺失返回 ErrNotFound；记录损坏返回 ErrInvalidData 立即上抛，不做静默跳过，
// 静默跳过会虚报覆盖率。
func (s *Store) GetInfo(asnNum uint32) (asn.Info, error) {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], asnNum)
	var info asn.Info
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketMetadata).Get(key[:])
		if raw == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, asn.Format(asnNum))
		}
		if err := json.Unmarshal(raw, &info); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidData, asn.Format(asnNum), err)
		}
		return nil
	})
	if err != nil {
		return asn.Info{}, err
	}
	return info, nil
}

// DeleteInfo：删除 ASN 元数据（键缺失视为成功）
func (s *Store) DeleteInfo(asnNum uint32) error {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], asnNum)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Delete(key[:])
	})
	if err != nil {
		return fmt.Errorf("coldstore: delete info: %w", err)
	}
	return nil
}
