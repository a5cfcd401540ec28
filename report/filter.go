// Package report 提供流水的按日分组汇总与类别排行，均为无副作用的纯函数。
package report

import (
	"fmt"
	"strings"
	"time"

	"flashbill/models"
)

const (
	// DateKeyLayout 分组日期键格式
	DateKeyLayout = "2006-01-02"
	// MonthLayout 月份参数格式
	MonthLayout = "2006-01"
)

// Month 自然月
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth 解析 "2024-05"
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("月份格式错误，应为 2024-01: %w", err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf 返回 t 在 loc 时区下所在月份
func MonthOf(t time.Time, loc *time.Location) Month {
	t = t.In(orLocal(loc))
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero 未指定月份
func (m Month) IsZero() bool {
	return m.Year == 0
}

// Range 返回 loc 时区下该月的 [start, end)
func (m Month) Range(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, orLocal(loc))
	return start, start.AddDate(0, 1, 0)
}

// Contains 判断 t 是否落在该月（按 loc 本地日历）
func (m Month) Contains(t time.Time, loc *time.Location) bool {
	local := t.In(orLocal(loc))
	return local.Year() == m.Year && local.Month() == m.Month
}

// Filter 汇总筛选条件
// Month 为零值时不按月份过滤；Location 为空时使用 time.Local
type Filter struct {
	Month    Month
	Search   string
	Location *time.Location
}

// Match 判断单条流水是否满足筛选条件
// 搜索不区分大小写，匹配类别名称或备注
func (f Filter) Match(t models.Transaction) bool {
	if !f.Month.IsZero() && !f.Month.Contains(t.Date, f.Location) {
		return false
	}
	q := strings.TrimSpace(f.Search)
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(t.CategoryLabel()), q) ||
		strings.Contains(strings.ToLower(t.Note), q)
}

// Apply 按筛选条件过滤，保持原有顺序，不修改入参
func (f Filter) Apply(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// DateKey 返回 loc 时区下的 YYYY-MM-DD
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(orLocal(loc)).Format(DateKeyLayout)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
