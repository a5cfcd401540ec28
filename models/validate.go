package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxNoteLength 备注最大字符数
	MaxNoteLength = 100
	// MaxLedgerNameLength 账本名称最大字符数
	MaxLedgerNameLength = 50
	// clockSkew 允许客户端时间略超前于服务器
	clockSkew = time.Minute
)

// ValidationError 用户输入校验失败
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ValidateTransaction 校验新建流水，now 为当前时间
func ValidateTransaction(t *Transaction, now time.Time) error {
	if strings.TrimSpace(t.LedgerID) == "" {
		return invalid("ledgerId", "未选择账本")
	}
	if t.Amount <= 0 {
		return invalid("amount", "请输入金额")
	}
	if !t.Type.Valid() {
		return invalid("type", "收支类型错误")
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return invalid("categoryId", "请选择类别")
	}
	if !IsKnownCategory(t.CategoryID) {
		return invalid("categoryId", "无效的类别")
	}
	if utf8.RuneCountInString(t.Note) > MaxNoteLength {
		return invalid("note", fmt.Sprintf("备注不能超过%d个字", MaxNoteLength))
	}
	if !t.Date.IsZero() && t.Date.After(now.Add(clockSkew)) {
		return invalid("date", "时间不能晚于当前时间")
	}
	return nil
}

// ValidateLedgerName 校验账本名称
func ValidateLedgerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "名称不能为空")
	}
	if utf8.RuneCountInString(name) > MaxLedgerNameLength {
		return invalid("name", fmt.Sprintf("名称不能超过%d个字", MaxLedgerNameLength))
	}
	return nil
}
