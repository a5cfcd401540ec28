package models

import (
	cryptoRand "crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// InviteCode 账本邀请码，有效期内可重复使用
type InviteCode struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	Code      string    `json:"code" gorm:"size:6;not null;index"`
	LedgerID  string    `json:"ledgerId" gorm:"size:36;not null;index"`
	CreatedBy uint      `json:"-" gorm:"not null"`
	ExpiresAt time.Time `json:"expireAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName 设置表名
func (InviteCode) TableName() string {
	return "invite_codes"
}

// IsExpired 检查邀请码是否过期
func (i *InviteCode) IsExpired() bool {
	return i.isExpiredAt(time.Now())
}

func (i *InviteCode) isExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// IsValid 检查邀请码在 now 时刻是否可用
func (i *InviteCode) IsValid(now time.Time) bool {
	return i.Code != "" && !i.isExpiredAt(now)
}

// inviteCodeSpan 100000..999999 共 900000 个码
var inviteCodeSpan = big.NewInt(900000)

// GenerateInviteCode 生成6位数字邀请码，首位不为 0
func GenerateInviteCode() (string, error) {
	n, err := randInt(inviteCodeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

var randInt = func(max *big.Int) (*big.Int, error) {
	return cryptoRand.Int(cryptoRand.Reader, max)
}
