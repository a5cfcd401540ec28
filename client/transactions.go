package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"flashbill/logger"
	"flashbill/models"
	"flashbill/report"

	"github.com/google/uuid"
)

// TransactionSource 流水来源，*Client 即为实现
type TransactionSource interface {
	CreateTransaction(ctx context.Context, params CreateTransactionParams) (*models.Transaction, error)
	ListTransactions(ctx context.Context, ledgerID string, p ListParams) (*TransactionPage, error)
}

// reloadPageSize 切换账本时每页拉取的条数，与服务端上限一致
const reloadPageSize = 100

// TransactionStore 当前账本的流水缓存
//
// 每次 Reload 递增序号，只有最新一次的结果会被采用，
// 切换账本后迟到的旧账本响应会被丢弃。
type TransactionStore struct {
	source TransactionSource
	now    func() time.Time

	mu       sync.Mutex
	seq      uint64
	ledgerID string
	month    string
	items    []models.Transaction
}

// NewTransactionStore 创建流水仓库
func NewTransactionStore(source TransactionSource) *TransactionStore {
	return &TransactionStore{source: source, now: time.Now}
}

// Create 本地校验通过后再提交，校验失败不发请求
// 未指定 UUID 时生成一个，重试时沿用同一 UUID 即可避免重复记账
func (s *TransactionStore) Create(ctx context.Context, params CreateTransactionParams) (*models.Transaction, error) {
	now := s.now()
	if params.UUID == "" {
		params.UUID = uuid.NewString()
	}
	if params.Date.IsZero() {
		params.Date = now
	}
	params.Note = strings.TrimSpace(params.Note)

	local := models.Transaction{
		UUID:       params.UUID,
		LedgerID:   params.LedgerID,
		AccountID:  params.AccountID,
		CategoryID: params.CategoryID,
		Type:       params.Type,
		Amount:     params.Amount,
		Date:       params.Date,
		Note:       params.Note,
	}
	if err := models.ValidateTransaction(&local, now); err != nil {
		return nil, err
	}

	tx, err := s.source.CreateTransaction(ctx, params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if tx.LedgerID == s.ledgerID && !s.containsLocked(tx.UUID) {
		s.items = append([]models.Transaction{*tx}, s.items...)
	}
	s.mu.Unlock()
	return tx, nil
}

// List 直接查询来源，不影响缓存
func (s *TransactionStore) List(ctx context.Context, ledgerID string, p ListParams) (*TransactionPage, error) {
	return s.source.ListTransactions(ctx, ledgerID, p)
}

// Reload 分页拉取账本的全部流水替换缓存，month 为空不限月份
// 返回 false 表示期间已有更新的 Reload，本次结果被丢弃
func (s *TransactionStore) Reload(ctx context.Context, ledgerID, month string) (bool, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	items := []models.Transaction{}
	seen := make(map[string]struct{})
	var fetched int64
	for page := 1; ; page++ {
		res, err := s.source.ListTransactions(ctx, ledgerID, ListParams{Month: month, Page: page, Size: reloadPageSize})
		if !s.isLatest(seq) {
			logger.WithComponent("transactions").WithField("ledger_id", ledgerID).Debug("丢弃过期的流水响应")
			return false, nil
		}
		if err != nil {
			return true, err
		}
		fetched += int64(len(res.List))
		// 翻页期间有新记账时偏移会后移，按 uuid 去重
		for _, t := range res.List {
			if _, ok := seen[t.UUID]; ok {
				continue
			}
			seen[t.UUID] = struct{}{}
			items = append(items, t)
		}
		if len(res.List) == 0 || fetched >= res.Total {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return false, nil
	}
	s.ledgerID = ledgerID
	s.month = month
	s.items = items
	return true, nil
}

func (s *TransactionStore) isLatest(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq == s.seq
}

// Bind 当前账本变化时自动 Reload
func (s *TransactionStore) Bind(ctx context.Context, d *Directory) {
	d.Subscribe(func(l models.LedgerView) {
		s.mu.Lock()
		month := s.month
		s.mu.Unlock()
		if _, err := s.Reload(ctx, l.ID, month); err != nil {
			logger.WithComponent("transactions").WithError(err).WithField("ledger_id", l.ID).Warn("切换账本后拉取流水失败")
		}
	})
}

// LedgerID 缓存对应的账本
func (s *TransactionStore) LedgerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerID
}

// Items 缓存的流水副本
func (s *TransactionStore) Items() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transaction{}, s.items...)
}

// Summary 对缓存按日汇总
func (s *TransactionStore) Summary(f report.Filter) report.Summary {
	return report.Aggregate(s.Items(), f)
}

// Ranking 对缓存做类别排行
func (s *TransactionStore) Ranking(kind models.TransactionType, topN int) report.Ranking {
	return report.RankCategories(s.Items(), kind, topN)
}

func (s *TransactionStore) containsLocked(id string) bool {
	for _, t := range s.items {
		if t.UUID == id {
			return true
		}
	}
	return false
}
