package response

import (
	"net/http"

	"gameportal/internal/validator"

	"github.com/gin-gonic/gin"
)

// 统一响应格式：{"success": bool, "message": string, ...}
// 业务结果用真实的 HTTP 状态码区分，校验失败额外带 errors 字段列出全部失败项。

func OK(c *gin.Context, message string, data gin.H) {
	respond(c, http.StatusOK, true, message, data)
}

func Created(c *gin.Context, message string) {
	respond(c, http.StatusCreated, true, message, nil)
}

// ValidationFailed 字段校验失败，带完整失败列表
func ValidationFailed(c *gin.Context, errs []validator.FieldError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": "输入验证失败",
		"errors":  errs,
	})
}

func BadRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, false, message, nil)
}

func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, false, message, nil)
}

func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, false, message, nil)
}

func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, false, message, nil)
}

// ServerError 内部错误统一返回笼统文案，细节只进日志，不外泄
func ServerError(c *gin.Context, message string) {
	respond(c, http.StatusInternalServerError, false, message, nil)
}

func respond(c *gin.Context, status int, success bool, message string, data gin.H) {
	body := gin.H{
		"success": success,
		"message": message,
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}
