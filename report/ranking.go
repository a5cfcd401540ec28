package report

import (
	"sort"

	"flashbill/models"
)

// DefaultTopN 排行榜默认展示条数
const DefaultTopN = 5

// CategoryShare 类别排行条目
type CategoryShare struct {
	CategoryID string  `json:"categoryId"`
	Label      string  `json:"label"`
	Icon       string  `json:"icon"`
	Amount     int64   `json:"amount"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Ranking 类别排行结果
// DisplayedTotal 为展示条目的合计，占比以它为分母；GrandTotal 为全部同类型流水合计
type Ranking struct {
	Type           models.TransactionType `json:"type"`
	Entries        []CategoryShare        `json:"entries"`
	DisplayedTotal int64                  `json:"displayedTotal"`
	GrandTotal     int64                  `json:"grandTotal"`
}

// RankCategories 按类别汇总指定收支类型的金额，取前 topN 并计算占比
//
// 金额相同按类别 id 升序。占比只相对于展示出来的条目，截断后合计仍为 100。
// topN <= 0 时使用 DefaultTopN。
func RankCategories(txs []models.Transaction, kind models.TransactionType, topN int) Ranking {
	if topN <= 0 {
		topN = DefaultTopN
	}

	byID := make(map[string]*CategoryShare)
	var r Ranking
	r.Type = kind
	for _, t := range txs {
		if t.Type != kind {
			continue
		}
		e, ok := byID[t.CategoryID]
		if !ok {
			c := models.LookupCategory(t.CategoryID)
			e = &CategoryShare{CategoryID: t.CategoryID, Label: c.Label, Icon: c.Icon}
			byID[t.CategoryID] = e
		}
		e.Amount += t.Amount
		e.Count++
		r.GrandTotal += t.Amount
	}

	entries := make([]CategoryShare, 0, len(byID))
	for _, e := range byID {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Amount != entries[b].Amount {
			return entries[a].Amount > entries[b].Amount
		}
		return entries[a].CategoryID < entries[b].CategoryID
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}

	for _, e := range entries {
		r.DisplayedTotal += e.Amount
	}
	if r.DisplayedTotal > 0 {
		for i := range entries {
			entries[i].Percentage = float64(entries[i].Amount) / float64(r.DisplayedTotal) * 100
		}
	}
	r.Entries = entries
	return r
}
