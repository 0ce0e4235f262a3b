package resolver

import (
	"context"
	"errors"

	"github.com/copyleftdev/rasn/internal/asn"
	"github.com/copyleftdev/rasn/internal/coldstore"
	"github.com/copyleftdev/rasn/internal/rangetab"
)

// 文档注释：热表适配层
// 背景：热表查找是纯计算，无阻塞点，忽略 ctx；构造后只读，无需加锁。
type TableSource struct {
	Table *rangetab.Table
}

func (s TableSource) Name() string { return "rangetab" }

func (s TableSource) Find(_ context.Context, ip uint32) (asn.Info, bool, error) {
	info, ok := s.Table.Find(ip)
	return info, ok, nil
}

// 文档注释：冷库适配层
// 背景：先做范围反向定位取得编号，再读取元数据拼装返回值。
// 约束：范围命中但元数据缺失时退化为仅含编号的占位信息（仍视为命中）；
// 元数据损坏则上抛，不静默跳过。
type ColdSource struct {
	Store *coldstore.Store
}

func (s ColdSource) Name() string { return "coldstore" }

func (s ColdSource) Find(_ context.Context, ip uint32) (asn.Info, bool, error) {
	asnNum, ok, err := s.Store.FindIP(ip)
	if err != nil || !ok {
		return asn.Info{}, false, err
	}
	info, err := s.Store.GetInfo(asnNum)
	if err != nil {
		if errors.Is(err, coldstore.ErrNotFound) {
			return asn.Placeholder(asnNum), true, nil
		}
		return asn.Info{}, false, err
	}
	return info, true, nil
}
