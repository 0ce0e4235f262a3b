package api

// 文档注释：查询返回结构（对外）
// 背景：统一对外序列化模型，仅包含必要字段；found 为 false 时归属字段省略。
// 约束：字段稳定；新增字段需评估兼容性与调用方依赖。
type queryResult struct {
	IP           string `json:"ip"`
	Found        bool   `json:"found"`
	ASN          uint32 `json:"asn,omitempty"`
	Organization string `json:"organization,omitempty"`
	Country      string `json:"country,omitempty"`
	Description  string `json:"description,omitempty"`
}

// rangeRequest：管理路径的范围提交体；CIDR 与显式起止二选一
type rangeRequest struct {
	CIDR  string `json:"cidr,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	ASN   uint32 `json:"asn"`
}

type errorResult struct {
	Error string `json:"error"`
}
