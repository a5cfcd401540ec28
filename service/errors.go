package service

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("记录不存在")
	// ErrForbidden 无权访问该账本
	ErrForbidden = errors.New("无权访问该账本")
	// ErrConflict uuid 已被其他账本占用
	ErrConflict = errors.New("流水ID冲突")
	// ErrInvalidCode 邀请码不存在或已过期
	ErrInvalidCode = errors.New("无效的邀请码")
	// ErrEmailDisabled 邮件服务未启用
	ErrEmailDisabled = errors.New("邮件服务未启用")
)

// GenerationError 生成邀请码失败，Err 为 ErrNotFound 或 ErrForbidden 等原因
type GenerationError struct {
	LedgerID string
	Err      error
}

func (e *GenerationError) Error() string {
	return "生成邀请码失败: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// mysqlDuplicateEntry MySQL 唯一键冲突错误码
const mysqlDuplicateEntry = 1062

// isDuplicateKey 判断是否为主键或唯一索引冲突
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
