package report

import (
	"sort"

	"flashbill/models"
)

// DayGroup 某一天的流水
type DayGroup struct {
	Date         string               `json:"date"`
	Transactions []models.Transaction `json:"transactions"`
	Income       int64                `json:"income"`
	Expense      int64                `json:"expense"`
}

// Summary 列表页所需的分组与合计
type Summary struct {
	Groups       []DayGroup `json:"groups"`
	TotalIncome  int64      `json:"totalIncome"`
	TotalExpense int64      `json:"totalExpense"`
	Balance      int64      `json:"balance"`
	Count        int        `json:"count"`
}

// Aggregate 过滤、按本地日期分组并计算收支合计
//
// 分组按日期倒序；同一天内按时间倒序，时间相同保持输入顺序。
// 入参切片不会被修改，同样的输入总是得到同样的输出。
func Aggregate(txs []models.Transaction, f Filter) Summary {
	filtered := f.Apply(txs)

	index := make(map[string]int)
	var groups []DayGroup
	var s Summary
	for _, t := range filtered {
		key := DateKey(t.Date, f.Location)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: key})
		}
		g := &groups[i]
		g.Transactions = append(g.Transactions, t)
		switch t.Type {
		case models.TypeIncome:
			g.Income += t.Amount
			s.TotalIncome += t.Amount
		case models.TypeExpense:
			g.Expense += t.Amount
			s.TotalExpense += t.Amount
		}
	}

	sort.Slice(groups, func(a, b int) bool { return groups[a].Date > groups[b].Date })
	for i := range groups {
		items := groups[i].Transactions
		sort.SliceStable(items, func(a, b int) bool { return items[a].Date.After(items[b].Date) })
	}

	if groups == nil {
		groups = []DayGroup{}
	}
	s.Groups = groups
	s.Balance = s.TotalIncome - s.TotalExpense
	s.Count = len(filtered)
	return s
}
