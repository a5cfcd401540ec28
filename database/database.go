package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flashbill/config"
	flog "flashbill/logger"
	"flashbill/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 初始化数据库连接并迁移表结构
func Init(cfg *config.Config) error {
	dialector, err := openDialector(&cfg.Database)
	if err != nil {
		return err
	}

	level := logger.Warn
	if cfg.Server.Mode == "debug" {
		level = logger.Info
	}
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	if isSQLite(cfg.Database.Driver) {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
		_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
		_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	flog.WithComponent("database").WithField("driver", driverName(cfg.Database.Driver)).Info("数据库初始化成功")
	return nil
}

// Migrate 自动迁移全部表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Ledger{},
		&models.LedgerMember{},
		&models.InviteCode{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("迁移数据表失败: %w", err)
	}

	// 兼容历史数据：没有 status 的用户视为正常
	return db.Model(&models.User{}).
		Where("status IS NULL OR status = ''").
		Update("status", models.UserStatusActive).Error
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	if isSQLite(cfg.Driver) {
		path := cfg.Path
		if path == "" {
			path = "./data/flashbill.db"
		}
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("创建数据目录失败: %w", err)
			}
		}
		return sqlite.Open(path), nil
	}

	// parseTime + loc=Local 保证 DATETIME 按服务器本地时间还原
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
	)
	return mysql.Open(dsn), nil
}

func isSQLite(driver string) bool {
	return strings.EqualFold(driver, "sqlite")
}

func driverName(driver string) string {
	if isSQLite(driver) {
		return "sqlite"
	}
	return "mysql"
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
