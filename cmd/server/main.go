package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameportal/internal/config"
	"gameportal/internal/handler"
	"gameportal/internal/infrastructure/cache"
	"gameportal/internal/infrastructure/database"
	"gameportal/internal/infrastructure/mq"
	"gameportal/internal/session"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig("config/config.yaml")

	// 账号库（SQL Server，旧表共用）与充值登记库（SQLite）
	accountDB := database.OpenSQLServer(&cfg.SQLServer)
	rechargeDB := database.OpenSQLite(&cfg.SQLite)

	// Redis 会话存储
	redisClient := cache.NewRedis(&cfg.Redis)
	sessions := session.NewRedisStore(redisClient, time.Duration(cfg.Session.TTLHours)*time.Hour)

	// 审核事件生产者（可选）
	producer := mq.NewProducer(&cfg.Kafka)
	defer producer.Close()

	// 设置路由
	router := handler.SetupRouter(accountDB, rechargeDB, sessions, producer, cfg)

	// 启动 HTTP 服务
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Printf("服务启动，监听端口: %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 关闭 HTTP 服务（等待最多5秒）
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务关闭异常: %v", err)
	}

	// 归还两个库的连接
	if sqlDB, err := accountDB.DB(); err == nil {
		sqlDB.Close()
	}
	if sqlDB, err := rechargeDB.DB(); err == nil {
		sqlDB.Close()
	}
	redisClient.Close()

	log.Println("服务已关闭")
}
