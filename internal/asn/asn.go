// 包 asn：自治系统编号与归属元数据的共享数据模型，被各查询层级共同使用
package asn

import "strconv"

// 文档注释：ASN 归属信息（不可变值类型）
// 背景：三个查询层级（热表/冷库/缓存）对外返回的统一结构；身份由 ASN 字段决定。
// 约束：Country 与 Description 允许为空（空串表示缺失）；构造后不应再修改字段。
type Info struct {
	ASN          uint32 `json:"asn"`
	Organization string `json:"organization"`
	Country      string `json:"country,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Format：标准展示形式（如 AS15169）
func Format(asn uint32) string {
	return "AS" + strconv.FormatUint(uint64(asn), 10)
}

// 文档注释：仅有编号时的占位信息
// 背景：冷库范围命中但元数据缺失时仍需返回编号本身，组织名退化为标准展示形式。
func Placeholder(asn uint32) Info {
	return Info{ASN: asn, Organization: Format(asn)}
}
