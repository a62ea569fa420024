package database

import (
	"fmt"
	"log"
	"time"

	"gameportal/internal/config"

	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLServer 连接旧版账号库
// account1000y 表由游戏服务端建表和维护，这里只是共用，
// 千万不要对这个库做 AutoMigrate。
func OpenSQLServer(cfg *config.SQLServerConfig) *gorm.DB {
	encrypt := "disable"
	if cfg.Encrypt {
		encrypt = "true"
	}
	dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s&encrypt=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		encrypt,
	)

	db, err := gorm.Open(sqlserver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("连接 SQL Server 失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取底层 DB 失败: %v", err)
	}

	// 账号库是共享资源，连接池跨请求复用，断连后由驱动惰性重连
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("SQL Server 连接成功")
	return db
}
