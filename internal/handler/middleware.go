package handler

import (
	"log"
	"net"
	"strings"
	"time"

	"gameportal/internal/session"
	"gameportal/pkg/response"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			ClientIP(c),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"success": false,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Auth-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthRequired 登录校验中间件
// 令牌缺失、格式不对、会话不存在，一律按未登录返回 401，绝不向外抛解析错误
func AuthRequired(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := resolveIdentity(c, sessions)
		if identity == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// AdminRequired 管理员校验中间件
// 与旧版行为保持一致：管理接口的任何认证失败都返回 403
func AdminRequired(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := resolveIdentity(c, sessions)
		if identity == nil || !identity.IsAdmin {
			response.Forbidden(c, "没有管理员权限")
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, sessions session.Store) *session.Identity {
	token := session.ExtractToken(
		c.GetHeader("Authorization"),
		c.GetHeader("X-Auth-Token"),
	)
	if token == "" {
		return nil
	}

	identity, err := sessions.Get(c.Request.Context(), token)
	if err != nil {
		// 会话存储不可用属于服务端故障，但对客户端仍只表现为未登录
		log.Printf("[AUTH] 读取会话失败: %v", err)
		return nil
	}
	return identity
}

// currentIdentity 取出中间件写入的身份，只在挂了 AuthRequired/AdminRequired 的路由里用
func currentIdentity(c *gin.Context) *session.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*session.Identity)
	return identity
}

// ClientIP 取客户端真实 IP
// 依次看 X-Forwarded-For（取第一跳）、X-Real-IP、X-Client-IP、
// CF-Connecting-IP，都没有才退回 socket 地址
func ClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Client-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
