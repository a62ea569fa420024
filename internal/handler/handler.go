package handler

import (
	"gameportal/internal/config"
	"gameportal/internal/infrastructure/mq"
	"gameportal/internal/service"
	"gameportal/internal/session"

	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	authService     *service.AuthService
	rechargeService *service.RechargeService
	sessions        session.Store
	cfg             *config.Config
}

// NewHandler 创建处理器实例
// accountDB 指向旧版账号库（SQL Server），rechargeDB 指向本地登记库（SQLite）
func NewHandler(accountDB, rechargeDB *gorm.DB, sessions session.Store, producer *mq.Producer, cfg *config.Config) *Handler {
	return &Handler{
		authService:     service.NewAuthService(accountDB, sessions),
		rechargeService: service.NewRechargeService(rechargeDB, producer),
		sessions:        sessions,
		cfg:             cfg,
	}
}
