package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flashbill/logger"
	"flashbill/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// LedgerService 账本与成员关系
type LedgerService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewLedgerService 创建账本服务
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db, now: time.Now}
}

// List 返回用户加入的全部账本，按加入时间排序
func (s *LedgerService) List(ctx context.Context, userID uint) ([]models.LedgerView, error) {
	views := []models.LedgerView{}
	err := s.db.WithContext(ctx).
		Table("ledger_members AS m").
		Select("l.id, l.name, l.cover, m.role, m.joined_at AS joined").
		Joins("JOIN ledgers AS l ON l.id = m.ledger_id").
		Where("m.user_id = ?", userID).
		Order("m.joined_at ASC, l.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("查询账本失败: %w", err)
	}
	return views, nil
}

// Create 新建账本，创建者为 owner
func (s *LedgerService) Create(ctx context.Context, userID uint, name, cover string) (models.LedgerView, error) {
	if err := models.ValidateLedgerName(name); err != nil {
		return models.LedgerView{}, err
	}
	cover = strings.TrimSpace(cover)
	if cover == "" {
		cover = models.DefaultLedgerCover
	}

	now := s.now()
	ledger := models.Ledger{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(name),
		Cover:   cover,
		OwnerID: userID,
	}
	member := models.LedgerMember{
		LedgerID: ledger.ID,
		UserID:   userID,
		Role:     models.RoleOwner,
		JoinedAt: now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ledger).Error; err != nil {
			return err
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return models.LedgerView{}, fmt.Errorf("创建账本失败: %w", err)
	}

	logger.WithComponent("ledger").WithFields(logrus.Fields{
		"ledger_id": ledger.ID,
		"user_id":   userID,
	}).Info("账本已创建")

	return models.LedgerView{ID: ledger.ID, Name: ledger.Name, Cover: ledger.Cover, Role: models.RoleOwner, Joined: now}, nil
}

// Role 返回用户在账本中的角色，非成员返回 ErrForbidden
func (s *LedgerService) Role(ctx context.Context, userID uint, ledgerID string) (models.Role, error) {
	var m models.LedgerMember
	err := s.db.WithContext(ctx).
		Where("ledger_id = ? AND user_id = ?", ledgerID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrForbidden
	}
	if err != nil {
		return "", fmt.Errorf("查询成员失败: %w", err)
	}
	return m.Role, nil
}

// Get 按 id 查询账本
func (s *LedgerService) Get(ctx context.Context, ledgerID string) (*models.Ledger, error) {
	var l models.Ledger
	err := s.db.WithContext(ctx).Where("id = ?", ledgerID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询账本失败: %w", err)
	}
	return &l, nil
}
