package handler

import (
	"errors"
	"log"

	"gameportal/internal/repository"
	"gameportal/internal/service"
	"gameportal/internal/validator"
	"gameportal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 充值登记接口
// ============================================================

// SubmitRechargeRequest 充值登记请求
type SubmitRechargeRequest struct {
	PaymentTime   string   `json:"payment_time"`
	TransactionID string   `json:"transaction_id"`
	Amount        string   `json:"amount"`
	Items         []string `json:"items"`
	GameAccount   string   `json:"game_account"`
	CharacterName string   `json:"character_name"`
	Server        string   `json:"server"`
	Remark        string   `json:"remark"`
}

// SubmitRecharge 提交充值登记
// POST /api/recharge/submit
func (h *Handler) SubmitRecharge(c *gin.Context) {
	var req SubmitRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数格式错误")
		return
	}

	errs := validator.Validate(
		validator.Field{Name: "payment_time", Value: req.PaymentTime, Checks: []validator.Checker{
			validator.Required("请选择付款时间"),
			validator.Datetime("请输入有效的付款时间"),
		}},
		validator.Field{Name: "transaction_id", Value: req.TransactionID, Checks: validator.TransactionID()},
		validator.Field{Name: "amount", Value: req.Amount, Checks: []validator.Checker{
			validator.Required("请输入付款金额"),
			validator.PositiveAmount("付款金额必须大于0"),
		}},
		validator.Field{Name: "game_account", Value: req.GameAccount, Checks: []validator.Checker{
			validator.Required("请输入游戏账号"),
			validator.Length(5, 12, "游戏账号长度必须在5-12个字符之间"),
		}},
		validator.Field{Name: "character_name", Value: req.CharacterName, Checks: []validator.Checker{
			validator.Required("请输入角色名称"),
			validator.Length(1, 20, "角色名称长度必须在1-20个字符之间"),
		}},
		validator.Field{Name: "server", Value: req.Server, Checks: []validator.Checker{
			validator.Required("请选择游戏分区"),
			validator.In(h.cfg.Business.Servers, "请选择有效的游戏分区"),
		}},
		validator.Field{Name: "remark", Value: req.Remark, Checks: []validator.Checker{
			validator.Optional(validator.MaxLength(200, "备注说明不能超过200个字符")),
		}},
	)
	errs = append(errs, validator.Items(req.Items, h.cfg.Business.Items)...)
	if len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	_, err := h.rechargeService.Submit(c.Request.Context(), &service.SubmitRequest{
		PaymentTime:   req.PaymentTime,
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Items:         req.Items,
		GameAccount:   req.GameAccount,
		CharacterName: req.CharacterName,
		Server:        req.Server,
		Remark:        req.Remark,
		IP:            ClientIP(c),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateTransaction) {
			response.BadRequest(c, "该交易单号已提交，请勿重复提交")
			return
		}
		log.Printf("[RECHARGE] 提交失败: %v", err)
		response.ServerError(c, "提交失败，请稍后再试")
		return
	}

	response.Created(c, "充值登记提交成功！GM确认后24小时内完成交付，请耐心等待。")
}
