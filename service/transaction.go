package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flashbill/logger"
	"flashbill/models"
	"flashbill/report"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultAccount  = "cash"
)

// ListQuery 流水列表查询条件
type ListQuery struct {
	Month    report.Month
	Location *time.Location
	Page     int
	Size     int
}

// normalize 补齐分页默认值
func (q *ListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 {
		q.Size = defaultPageSize
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
}

// TransactionPage 分页结果
type TransactionPage struct {
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	List  []models.Transaction `json:"list"`
}

// TransactionService 流水的创建与按账本查询
type TransactionService struct {
	db      *gorm.DB
	ledgers *LedgerService
	now     func() time.Time
}

// NewTransactionService 创建流水服务
func NewTransactionService(db *gorm.DB) *TransactionService {
	return &TransactionService{db: db, ledgers: NewLedgerService(db), now: time.Now}
}

// Create 记一笔账
//
// uuid 为空时由服务端生成；同一 uuid 在同一账本重复提交返回已保存的记录，
// created 为 false。uuid 已属于其他账本时返回 ErrConflict。
func (s *TransactionService) Create(ctx context.Context, userID uint, t models.Transaction) (tx *models.Transaction, created bool, err error) {
	now := s.now()
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	} else if _, err := uuid.Parse(t.UUID); err != nil {
		return nil, false, &models.ValidationError{Field: "uuid", Message: "流水ID格式错误"}
	}
	if t.Date.IsZero() {
		t.Date = now
	}
	if strings.TrimSpace(t.AccountID) == "" {
		t.AccountID = defaultAccount
	}
	t.Note = strings.TrimSpace(t.Note)
	if err := models.ValidateTransaction(&t, now); err != nil {
		return nil, false, err
	}
	// 日期统一存 UTC，scoped 的月份范围同样转为 UTC
	t.Date = t.Date.UTC()
	if _, err := s.ledgers.Role(ctx, userID, t.LedgerID); err != nil {
		return nil, false, err
	}

	db := s.db.WithContext(ctx)
	if existing, err := s.findExisting(db, t); existing != nil || err != nil {
		return existing, false, err
	}

	t.UserID = userID
	if err := db.Create(&t).Error; err != nil {
		if !isDuplicateKey(err) {
			return nil, false, fmt.Errorf("保存流水失败: %w", err)
		}
		// 并发重试时另一请求已先写入
		existing, findErr := s.findExisting(db, t)
		if existing != nil || findErr != nil {
			return existing, false, findErr
		}
		return nil, false, fmt.Errorf("保存流水失败: %w", err)
	}

	logger.WithComponent("transaction").WithFields(logrus.Fields{
		"uuid":      t.UUID,
		"ledger_id": t.LedgerID,
		"type":      t.Type.String(),
		"amount":    t.Amount,
	}).Debug("流水已保存")
	return &t, true, nil
}

// findExisting 按 uuid 查找已保存的流水，属于其他账本时返回 ErrConflict
func (s *TransactionService) findExisting(db *gorm.DB, t models.Transaction) (*models.Transaction, error) {
	var existing []models.Transaction
	if err := db.Where("uuid = ?", t.UUID).Limit(1).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}
	if existing[0].LedgerID != t.LedgerID {
		return nil, ErrConflict
	}
	return &existing[0], nil
}

// Get 按 uuid 查询，调用者须为所属账本成员
func (s *TransactionService) Get(ctx context.Context, userID uint, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).Where("uuid = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	if _, err := s.ledgers.Role(ctx, userID, t.LedgerID); err != nil {
		// 非成员不暴露记录是否存在
		return nil, ErrNotFound
	}
	return &t, nil
}

// List 分页查询某账本的流水，按时间倒序
func (s *TransactionService) List(ctx context.Context, userID uint, ledgerID string, q ListQuery) (*TransactionPage, error) {
	if _, err := s.ledgers.Role(ctx, userID, ledgerID); err != nil {
		return nil, err
	}
	q.normalize()

	query := s.scoped(ctx, ledgerID, q.Month, q.Location)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	list := []models.Transaction{}
	offset := (q.Page - 1) * q.Size
	if err := query.Order("date DESC").Order("created_at DESC").
		Offset(offset).Limit(q.Size).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	return &TransactionPage{Total: total, Page: q.Page, Size: q.Size, List: list}, nil
}

// FetchTransactions 返回某账本在指定月份内的全部流水，供汇总与统计使用
func (s *TransactionService) FetchTransactions(ctx context.Context, userID uint, ledgerID string, month report.Month, loc *time.Location) ([]models.Transaction, error) {
	if _, err := s.ledgers.Role(ctx, userID, ledgerID); err != nil {
		return nil, err
	}
	list := []models.Transaction{}
	if err := s.scoped(ctx, ledgerID, month, loc).
		Order("date DESC").Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	return list, nil
}

// Summary 按月份与搜索词汇总某账本流水
func (s *TransactionService) Summary(ctx context.Context, userID uint, ledgerID string, f report.Filter) (report.Summary, error) {
	list, err := s.FetchTransactions(ctx, userID, ledgerID, f.Month, f.Location)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Aggregate(list, f), nil
}

// scoped 构造限定账本与月份的查询
func (s *TransactionService) scoped(ctx context.Context, ledgerID string, month report.Month, loc *time.Location) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("ledger_id = ?", ledgerID)
	if !month.IsZero() {
		start, end := month.Range(loc)
		query = query.Where("date >= ? AND date < ?", start.UTC(), end.UTC())
	}
	return query
}
