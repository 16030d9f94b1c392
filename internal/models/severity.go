package models

// SeverityLevel 严重程度（症状分级与风险等级共用）
type SeverityLevel string

const (
	SeverityLow      SeverityLevel = "LOW"
	SeverityMedium   SeverityLevel = "MEDIUM"
	SeverityHigh     SeverityLevel = "HIGH"
	SeverityCritical SeverityLevel = "CRITICAL"
)

// Valid 检查是否为已知级别
func (s SeverityLevel) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// SortOrder 记录库历史查询的时间排序
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// SQL 返回 ORDER BY 方向
func (o SortOrder) SQL() string {
	if o == Descending {
		return "DESC"
	}
	return "ASC"
}
