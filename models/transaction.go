package models

import (
	"time"
)

// TransactionType 收支类型，与前端约定 1 支出 2 收入
type TransactionType int

const (
	TypeExpense TransactionType = 1
	TypeIncome  TransactionType = 2
)

// Valid 是否为合法类型
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

func (t TransactionType) String() string {
	switch t {
	case TypeExpense:
		return "expense"
	case TypeIncome:
		return "income"
	default:
		return "unknown"
	}
}

// ParseTransactionType 解析 "expense"/"income"/"1"/"2"
func ParseTransactionType(s string) (TransactionType, bool) {
	switch s {
	case "1", "expense", "EXPENSE":
		return TypeExpense, true
	case "2", "income", "INCOME":
		return TypeIncome, true
	}
	return 0, false
}

// Transaction 记账流水，UUID 由客户端生成用于离线创建与重试去重
type Transaction struct {
	UUID       string          `json:"uuid" gorm:"primaryKey;size:36"`
	LedgerID   string          `json:"ledgerId" gorm:"size:36;index:idx_ledger_date;not null"`
	UserID     uint            `json:"userId" gorm:"index;not null"`
	AccountID  string          `json:"accountId" gorm:"size:32;not null"`
	CategoryID string          `json:"categoryId" gorm:"size:32;not null"`
	Type       TransactionType `json:"type" gorm:"not null"`
	Amount     int64           `json:"amount" gorm:"not null"` // 以分为单位
	Date       time.Time       `json:"date" gorm:"index:idx_ledger_date;not null"`
	Note       string          `json:"note,omitempty" gorm:"size:400"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// CategoryLabel 解析后的类别名称
func (t *Transaction) CategoryLabel() string {
	return LookupCategory(t.CategoryID).Label
}
