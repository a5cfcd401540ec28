package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTx(now time.Time) *Transaction {
	return &Transaction{
		UUID:       "u-1",
		LedgerID:   "ledger-1",
		AccountID:  "cash",
		CategoryID: CategoryFood,
		Type:       TypeExpense,
		Amount:     3500,
		Date:       now.Add(-time.Hour),
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Field
}

func TestValidateTransaction(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.Local)
	assert.NoError(t, ValidateTransaction(validTx(now), now))

	tx := validTx(now)
	tx.Amount = 0
	assert.Equal(t, "amount", fieldOf(t, ValidateTransaction(tx, now)))

	tx = validTx(now)
	tx.Amount = -1
	assert.Equal(t, "amount", fieldOf(t, ValidateTransaction(tx, now)))

	tx = validTx(now)
	tx.LedgerID = " "
	assert.Equal(t, "ledgerId", fieldOf(t, ValidateTransaction(tx, now)))

	tx = validTx(now)
	tx.CategoryID = ""
	assert.Equal(t, "categoryId", fieldOf(t, ValidateTransaction(tx, now)))

	tx = validTx(now)
	tx.CategoryID = "spaceship"
	assert.Equal(t, "categoryId", fieldOf(t, ValidateTransaction(tx, now)))

	tx = validTx(now)
	tx.Type = 3
	assert.Equal(t, "type", fieldOf(t, ValidateTransaction(tx, now)))

	tx = validTx(now)
	tx.Note = strings.Repeat("备", MaxNoteLength)
	assert.NoError(t, ValidateTransaction(tx, now))
	tx.Note += "注"
	assert.Equal(t, "note", fieldOf(t, ValidateTransaction(tx, now)))

	tx = validTx(now)
	tx.Date = now.Add(time.Hour)
	assert.Equal(t, "date", fieldOf(t, ValidateTransaction(tx, now)))

	// 零值时间由调用方补为当前时间，这里不报错
	tx = validTx(now)
	tx.Date = time.Time{}
	assert.NoError(t, ValidateTransaction(tx, now))
}

func TestValidateLedgerName(t *testing.T) {
	assert.NoError(t, ValidateLedgerName("家庭账本"))
	assert.Error(t, ValidateLedgerName("   "))
	assert.Error(t, ValidateLedgerName(strings.Repeat("账", MaxLedgerNameLength+1)))
}
