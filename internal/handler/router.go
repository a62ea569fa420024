package handler

import (
	"gameportal/internal/config"
	"gameportal/internal/infrastructure/mq"
	"gameportal/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(accountDB, rechargeDB *gorm.DB, sessions session.Store, producer *mq.Producer, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(accountDB, rechargeDB, sessions, producer, cfg)

	api := r.Group("/api")
	{
		// 账号相关
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", AuthRequired(sessions), h.Logout)
			auth.GET("/profile", AuthRequired(sessions), h.GetProfile)
			auth.POST("/update-profile", AuthRequired(sessions), h.UpdateProfile)
			auth.POST("/change-password", AuthRequired(sessions), h.ChangePassword)
		}

		// 充值登记
		recharge := api.Group("/recharge")
		{
			recharge.POST("/submit", h.SubmitRecharge)
		}

		// 管理员审核
		admin := api.Group("/admin", AdminRequired(sessions))
		{
			admin.GET("/recharge-records", h.ListRechargeRecords)
			admin.GET("/recharge-stats", h.GetRechargeStats)
			admin.POST("/update-status", h.UpdateRechargeStatus)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
