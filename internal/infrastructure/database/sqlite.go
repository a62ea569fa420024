package database

import (
	"log"
	"os"
	"path/filepath"

	"gameportal/internal/config"
	"gameportal/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite 打开本地充值登记库
// 开启 TranslateError，让 transaction_id 唯一索引的冲突
// 统一映射成 gorm.ErrDuplicatedKey，仓储层据此识别重复提交。
func OpenSQLite(cfg *config.SQLiteConfig) *gorm.DB {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("创建数据目录失败: %v", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("打开 SQLite 失败: %v", err)
	}

	if err := db.AutoMigrate(&model.RechargeRecord{}); err != nil {
		log.Fatalf("迁移充值登记表失败: %v", err)
	}

	log.Println("SQLite 充值登记库就绪")
	return db
}
