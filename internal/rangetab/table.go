// 包 rangetab：不可变的列式 IP 范围热表；一次加载、只读共享、二分查找
package rangetab

import (
	"github.com/copyleftdev/rasn/internal/asn"
)

// 文档注释：列式热表
// 背景：五列同长并行数组（起止地址、ASN、国家、组织），按起始地址升序且互不重叠；
// 列式布局使二分查找对缓存友好，避免逐节点分配。
// 约束：构造完成后不再写入，任意数量的并发 Find 不需要加锁；共享方式为指针共享，不做拷贝。
type Table struct {
	start []uint32
	end   []uint32
	asns  []uint32
	ctry  []string
	orgs  []string
}

// NewTable：从五列并行数组构造热表
// 背景：供快照加载器与构建工具使用；调用方保证各列等长、按 start 升序且范围互不重叠。
func NewTable(start, end, asns []uint32, country, org []string) *Table {
	return &Table{start: start, end: end, asns: asns, ctry: country, orgs: org}
}

// 文档注释：二分查找（热路径）
// 背景：维护 [low, high) 区间收缩；范围互不重叠保证至多一个命中。复杂度 O(log n)。
// 返回：命中时返回归属信息与 true；未命中返回 false，未命中不是错误。
func (t *Table) Find(ip uint32) (asn.Info, bool) {
	lo, hi := 0, len(t.start)
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch {
		case ip < t.start[mid]:
			hi = mid
		case ip > t.end[mid]:
			lo = mid + 1
		default:
			return asn.Info{
				ASN:          t.asns[mid],
				Organization: t.orgs[mid],
				Country:      t.ctry[mid],
			}, true
		}
	}
	return asn.Info{}, false
}

// Len：表内范围条数
func (t *Table) Len() int { return len(t.start) }
