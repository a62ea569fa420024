package handler

import (
	"errors"
	"log"
	"strconv"

	"gameportal/internal/model"
	"gameportal/internal/repository"
	"gameportal/internal/validator"
	"gameportal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 管理员审核接口（都挂在 AdminRequired 后面）
// ============================================================

// ListRechargeRecords 获取充值记录列表
// GET /api/admin/recharge-records?page&limit&status&search
func (h *Handler) ListRechargeRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")
	search := c.Query("search")

	if status != "" && !model.ValidRechargeStatus[status] {
		response.BadRequest(c, "无效的状态")
		return
	}

	records, hasMore, err := h.rechargeService.List(c.Request.Context(), page, limit, status, search)
	if err != nil {
		log.Printf("[ADMIN] 查询充值记录失败: %v", err)
		response.ServerError(c, "获取充值记录失败")
		return
	}

	response.OK(c, "", gin.H{
		"records": records,
		"hasMore": hasMore,
	})
}

// GetRechargeStats 获取充值统计
// GET /api/admin/recharge-stats
func (h *Handler) GetRechargeStats(c *gin.Context) {
	stats, err := h.rechargeService.Stats(c.Request.Context())
	if err != nil {
		log.Printf("[ADMIN] 统计失败: %v", err)
		response.ServerError(c, "获取充值统计失败")
		return
	}

	response.OK(c, "", gin.H{"stats": stats})
}

// UpdateStatusRequest 审核请求
type UpdateStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// UpdateRechargeStatus 更新充值状态
// POST /api/admin/update-status
func (h *Handler) UpdateRechargeStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数格式错误")
		return
	}

	var errs []validator.FieldError
	if req.ID <= 0 {
		errs = append(errs, validator.FieldError{Field: "id", Message: "记录ID不能为空"})
	}
	if !model.ValidRechargeStatus[req.Status] {
		errs = append(errs, validator.FieldError{Field: "status", Message: "无效的状态"})
	}
	if len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	err := h.rechargeService.UpdateStatus(c.Request.Context(), req.ID, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrRechargeNotFound) {
			response.NotFound(c, "充值记录不存在")
			return
		}
		log.Printf("[ADMIN] 更新充值状态失败: %v", err)
		response.ServerError(c, "更新充值状态失败")
		return
	}

	response.OK(c, "充值记录已标记为"+model.RechargeStatusText[req.Status], nil)
}
