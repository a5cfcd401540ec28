package models

import (
	"time"
)

// Role 账本成员角色
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// DefaultLedgerCover 未指定封面时使用
const DefaultLedgerCover = "📒"

// Ledger 账本
type Ledger struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:50;not null"`
	Cover     string    `json:"cover" gorm:"size:16"`
	OwnerID   uint      `json:"ownerId" gorm:"index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Ledger) TableName() string {
	return "ledgers"
}

// LedgerMember 账本成员关系
type LedgerMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	LedgerID string    `json:"ledgerId" gorm:"size:36;not null;uniqueIndex:uk_ledger_user"`
	UserID   uint      `json:"userId" gorm:"not null;uniqueIndex:uk_ledger_user;index"`
	Role     Role      `json:"role" gorm:"size:16;not null"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (LedgerMember) TableName() string {
	return "ledger_members"
}

// LedgerView 带当前用户角色的账本，接口返回使用
type LedgerView struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Cover  string    `json:"cover"`
	Role   Role      `json:"role"`
	Joined time.Time `json:"joinedAt"`
}
