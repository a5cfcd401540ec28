package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"flashbill/database"
	"flashbill/models"
	"flashbill/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB 临时目录下的真实 sqlite 库，已建表并写入账本 l1 及其 owner 1
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "flashbill.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Create(&models.Ledger{ID: "l1", Name: "日常", Cover: "📒", OwnerID: 1}).Error)
	require.NoError(t, db.Create(&models.LedgerMember{LedgerID: "l1", UserID: 1, Role: models.RoleOwner, JoinedAt: fixedNow}).Error)
	return db
}

func TestTransactionService_SQLiteMonthAcrossZones(t *testing.T) {
	db := newSQLiteDB(t)
	s := NewTransactionService(db)
	s.now = func() time.Time { return fixedNow }
	ctx := context.Background()
	shanghai := time.FixedZone("CST", 8*3600)

	// UTC 4 月 30 日 20 点，即东八区 5 月 1 日 4 点
	posted := []time.Time{
		time.Date(2024, 4, 30, 20, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 10, 12, 0, 0, 0, shanghai),
		time.Date(2024, 4, 30, 15, 0, 0, 0, time.UTC), // 东八区 4 月 30 日 23 点
	}
	for _, d := range posted {
		_, created, err := s.Create(ctx, 1, models.Transaction{
			LedgerID: "l1", CategoryID: models.CategoryFood, Type: models.TypeExpense, Amount: 100, Date: d,
		})
		require.NoError(t, err)
		require.True(t, created)
	}

	may, err := report.ParseMonth("2024-05")
	require.NoError(t, err)

	txs, err := s.FetchTransactions(ctx, 1, "l1", may, shanghai)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	sum, err := s.Summary(ctx, 1, "l1", report.Filter{Month: may, Location: shanghai})
	require.NoError(t, err)
	assert.Equal(t, int64(200), sum.TotalExpense)
	assert.Equal(t, report.Aggregate(txs, report.Filter{Month: may, Location: shanghai}).TotalExpense, sum.TotalExpense)

	page, err := s.List(ctx, 1, "l1", ListQuery{Month: may, Location: shanghai})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.List, 2)
	assert.Equal(t, "2024-05-10", report.DateKey(page.List[0].Date, shanghai))
	assert.Equal(t, "2024-05-01", report.DateKey(page.List[1].Date, shanghai))

	april, err := report.ParseMonth("2024-04")
	require.NoError(t, err)
	aprilTxs, err := s.FetchTransactions(ctx, 1, "l1", april, shanghai)
	require.NoError(t, err)
	assert.Len(t, aprilTxs, 1)
}

func TestTransactionService_SQLiteDuplicateInsert(t *testing.T) {
	db := newSQLiteDB(t)
	row := models.Transaction{
		UUID: "5f0c8a52-6a43-4f6e-9a53-0b0c7f1d2e3a", LedgerID: "l1", UserID: 1, AccountID: "cash",
		CategoryID: models.CategoryFood, Type: models.TypeExpense, Amount: 100, Date: fixedNow,
	}
	require.NoError(t, db.Create(&row).Error)

	dup := row
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))
}

func TestInviteService_SQLiteSingleActiveCode(t *testing.T) {
	db := newSQLiteDB(t)
	s := NewInviteService(db, 72*time.Hour, nil)
	s.now = func() time.Time { return fixedNow }
	var mu sync.Mutex
	next := 100000
	s.generate = func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		next++
		return fmt.Sprintf("%06d", next), nil
	}

	const workers = 4
	codes := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			invite, err := s.CreateInviteCode(context.Background(), 1, "l1")
			errs[i] = err
			if err == nil {
				codes[i] = invite.Code
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, codes[0], codes[i])
	}
	var n int64
	require.NoError(t, db.Model(&models.InviteCode{}).Where("ledger_id = ?", "l1").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
