package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flashbill/logger"
	"flashbill/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxCodeAttempts 与现存有效邀请码冲突时的重试次数
const maxCodeAttempts = 5

// InviteMailer 发送邀请邮件
type InviteMailer interface {
	SendInviteEmail(toEmail, inviter, ledgerName, code string, expiresAt time.Time) error
}

// InviteService 邀请码生成与加入账本
//
// 每个账本同一时间只有一个有效邀请码，有效期内可被多人重复使用。
type InviteService struct {
	db       *gorm.DB
	ledgers  *LedgerService
	mailer   InviteMailer
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// NewInviteService 创建邀请服务
func NewInviteService(db *gorm.DB, ttl time.Duration, mailer InviteMailer) *InviteService {
	return &InviteService{
		db:       db,
		ledgers:  NewLedgerService(db),
		mailer:   mailer,
		ttl:      ttl,
		now:      time.Now,
		generate: models.GenerateInviteCode,
	}
}

// CreateInviteCode 为账本生成邀请码，仅 owner 可操作
// 账本已有未过期的邀请码时直接返回该码
func (s *InviteService) CreateInviteCode(ctx context.Context, userID uint, ledgerID string) (*models.InviteCode, error) {
	ledger, err := s.ledgers.Get(ctx, ledgerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &GenerationError{LedgerID: ledgerID, Err: ErrNotFound}
		}
		return nil, err
	}
	if ledger.OwnerID != userID {
		return nil, &GenerationError{LedgerID: ledgerID, Err: ErrForbidden}
	}

	now := s.now().UTC()
	var invite *models.InviteCode
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住账本行，同一账本的生成请求串行执行
		var locked models.Ledger
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ledgerID).First(&locked).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &GenerationError{LedgerID: ledgerID, Err: ErrNotFound}
		}
		if err != nil {
			return fmt.Errorf("查询账本失败: %w", err)
		}

		var active []models.InviteCode
		if err := tx.Where("ledger_id = ? AND expires_at > ?", ledgerID, now).
			Order("expires_at DESC").Limit(1).Find(&active).Error; err != nil {
			return fmt.Errorf("查询邀请码失败: %w", err)
		}
		if len(active) > 0 {
			invite = &active[0]
			return nil
		}

		created, err := s.insertCode(tx, userID, ledgerID, now)
		if err != nil {
			return err
		}
		invite = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// insertCode 生成与其他有效邀请码不重复的新码并保存
func (s *InviteService) insertCode(tx *gorm.DB, userID uint, ledgerID string, now time.Time) (*models.InviteCode, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.generate()
		if err != nil {
			return nil, &GenerationError{LedgerID: ledgerID, Err: err}
		}
		var n int64
		if err := tx.Model(&models.InviteCode{}).
			Where("code = ? AND expires_at > ?", code, now).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("查询邀请码失败: %w", err)
		}
		if n > 0 {
			continue
		}

		invite := models.InviteCode{
			Code:      code,
			LedgerID:  ledgerID,
			CreatedBy: userID,
			ExpiresAt: now.Add(s.ttl),
		}
		if err := tx.Create(&invite).Error; err != nil {
			return nil, fmt.Errorf("保存邀请码失败: %w", err)
		}
		logger.WithComponent("invite").WithFields(logrus.Fields{
			"ledger_id":  ledgerID,
			"user_id":    userID,
			"expires_at": invite.ExpiresAt,
		}).Info("邀请码已生成")
		return &invite, nil
	}
	return nil, &GenerationError{LedgerID: ledgerID, Err: errors.New("邀请码冲突次数过多")}
}

// JoinLedger 使用邀请码加入账本
// 已是成员时直接返回账本，角色不变
func (s *InviteService) JoinLedger(ctx context.Context, userID uint, code string) (models.LedgerView, error) {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return models.LedgerView{}, ErrInvalidCode
	}

	db := s.db.WithContext(ctx)
	now := s.now().UTC()

	var invite models.InviteCode
	err := db.Where("code = ? AND expires_at > ?", code, now).
		Order("expires_at DESC").First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LedgerView{}, ErrInvalidCode
	}
	if err != nil {
		return models.LedgerView{}, fmt.Errorf("查询邀请码失败: %w", err)
	}

	ledger, err := s.ledgers.Get(ctx, invite.LedgerID)
	if errors.Is(err, ErrNotFound) {
		return models.LedgerView{}, ErrInvalidCode
	}
	if err != nil {
		return models.LedgerView{}, err
	}

	view := models.LedgerView{ID: ledger.ID, Name: ledger.Name, Cover: ledger.Cover}

	var existing []models.LedgerMember
	if err := db.Where("ledger_id = ? AND user_id = ?", ledger.ID, userID).
		Limit(1).Find(&existing).Error; err != nil {
		return models.LedgerView{}, fmt.Errorf("查询成员失败: %w", err)
	}
	if len(existing) > 0 {
		view.Role = existing[0].Role
		view.Joined = existing[0].JoinedAt
		return view, nil
	}

	member := models.LedgerMember{
		LedgerID: ledger.ID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: now,
	}
	if err := db.Create(&member).Error; err != nil {
		return models.LedgerView{}, fmt.Errorf("加入账本失败: %w", err)
	}

	logger.WithComponent("invite").WithFields(logrus.Fields{
		"ledger_id": ledger.ID,
		"user_id":   userID,
	}).Info("成员已加入账本")

	view.Role = models.RoleMember
	view.Joined = now
	return view, nil
}

// SendInviteEmail 把账本当前有效的邀请码发送到指定邮箱
func (s *InviteService) SendInviteEmail(ctx context.Context, userID uint, inviter, ledgerID, toEmail string) (*models.InviteCode, error) {
	invite, err := s.CreateInviteCode(ctx, userID, ledgerID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledgers.Get(ctx, ledgerID)
	if err != nil {
		return nil, err
	}
	if s.mailer == nil {
		return nil, ErrEmailDisabled
	}
	if err := s.mailer.SendInviteEmail(toEmail, inviter, ledger.Name, invite.Code, invite.ExpiresAt); err != nil {
		return nil, err
	}
	return invite, nil
}

// PurgeExpired 删除已过期的邀请码，返回删除条数
func (s *InviteService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.InviteCode{})
	if res.Error != nil {
		return 0, fmt.Errorf("清理邀请码失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}
