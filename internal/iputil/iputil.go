// 包 iputil：IPv4 与 CIDR 的解析、格式化工具；查询路径只处理已解析的 32 位整数
package iputil

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidIP   = errors.New("invalid ipv4 address")
	ErrInvalidCIDR = errors.New("invalid cidr notation")
)

// ParseIPv4：点分十进制解析为 u32
// 背景：入口层统一做一次解析，内部各层只接收整数；不依赖 net 包以避免 IPv6 兼容分支。
func ParseIPv4(s string) (uint32, error) {
	var v uint32
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return 0, ErrInvalidIP
	}
	for _, p := range parts {
		if p == "" || len(p) > 3 {
			return 0, ErrInvalidIP
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return 0, ErrInvalidIP
		}
		v = v<<8 | uint32(n)
	}
	return v, nil
}

// FormatIPv4：u32 格式化为点分十进制（缓存键使用同一形式）
func FormatIPv4(ip uint32) string {
	var b strings.Builder
	b.Grow(15)
	b.WriteString(strconv.Itoa(int(ip >> 24)))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(int(ip >> 16 & 0xff)))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(int(ip >> 8 & 0xff)))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(int(ip & 0xff)))
	return b.String()
}

// 文档注释：CIDR 网段
// 背景：管理路径允许以 CIDR 提交覆写段，入库前换算为起止整数；仅支持 IPv4。
type CIDR struct {
	Network   uint32
	PrefixLen uint8
	mask      uint32
}

// ParseCIDR：解析 x.x.x.x/len 形式
// 约束：前缀长度 0-32；网络地址按掩码归一化，主机位被截断而非报错。
func ParseCIDR(s string) (CIDR, error) {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return CIDR{}, ErrInvalidCIDR
	}
	ip, err := ParseIPv4(s[:i])
	if err != nil {
		return CIDR{}, ErrInvalidCIDR
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil || n < 0 || n > 32 {
		return CIDR{}, ErrInvalidCIDR
	}
	var mask uint32
	if n > 0 {
		mask = ^uint32(0) << (32 - n)
	}
	return CIDR{Network: ip & mask, PrefixLen: uint8(n), mask: mask}, nil
}

// Contains：判断地址是否落在网段内
func (c CIDR) Contains(ip uint32) bool {
	return ip&c.mask == c.Network
}

// First：网段起始地址
func (c CIDR) First() uint32 { return c.Network }

// Last：网段结束地址（广播地址，含）
func (c CIDR) Last() uint32 {
	return c.Network | ^c.mask
}

// String：还原为 CIDR 记法
func (c CIDR) String() string {
	return FormatIPv4(c.Network) + "/" + strconv.Itoa(int(c.PrefixLen))
}
