package handler

import (
	"errors"
	"log"

	"gameportal/internal/repository"
	"gameportal/internal/service"
	"gameportal/internal/session"
	"gameportal/internal/validator"
	"gameportal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 账号相关接口
// ============================================================

// RegisterRequest 注册请求
type RegisterRequest struct {
	Account         string `json:"account"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email"`
	Telephone       string `json:"telephone"`
}

// Register 用户注册
// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数格式错误")
		return
	}

	errs := validator.Validate(
		validator.Field{Name: "account", Value: req.Account, Checks: validator.Account()},
		validator.Field{Name: "password", Value: req.Password, Checks: validator.Password()},
		validator.Field{Name: "confirmPassword", Value: req.ConfirmPassword, Checks: []validator.Checker{
			validator.Equals(req.Password, "确认密码与密码不匹配"),
		}},
		validator.Field{Name: "email", Value: req.Email, Checks: []validator.Checker{
			validator.Email("请输入有效的邮箱地址"),
		}},
		validator.Field{Name: "telephone", Value: req.Telephone, Checks: []validator.Checker{
			validator.Telephone("请输入有效的手机号码"),
		}},
	)
	if len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	err := h.authService.Register(c.Request.Context(), &service.RegisterRequest{
		Account:   req.Account,
		Password:  req.Password,
		Telephone: req.Telephone,
		Email:     req.Email,
		IP:        ClientIP(c),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			response.BadRequest(c, "该账号已被注册")
			return
		}
		log.Printf("[AUTH] 注册失败: %v", err)
		response.ServerError(c, "注册失败，请稍后再试")
		return
	}

	response.Created(c, "注册成功！")
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// Login 用户登录
// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数格式错误")
		return
	}

	errs := validator.Validate(
		validator.Field{Name: "account", Value: req.Account, Checks: []validator.Checker{
			validator.Required("请输入账号"),
		}},
		validator.Field{Name: "password", Value: req.Password, Checks: []validator.Checker{
			validator.Required("请输入密码"),
		}},
	)
	if len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Account, req.Password, ClientIP(c))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "账号或密码错误")
			return
		}
		log.Printf("[AUTH] 登录失败: %v", err)
		response.ServerError(c, "登录失败，请稍后再试")
		return
	}

	message := "登录成功！"
	if result.Identity.IsAdmin {
		message = "登录成功！欢迎管理员"
	}

	response.OK(c, message, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":       result.Identity.ID,
			"account":  result.Identity.Account,
			"username": result.Identity.Username,
			"email":    result.Identity.Email,
			"isAdmin":  result.Identity.IsAdmin,
		},
	})
}

// Logout 注销登录
// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	token := session.ExtractToken(
		c.GetHeader("Authorization"),
		c.GetHeader("X-Auth-Token"),
	)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		log.Printf("[AUTH] 注销失败: %v", err)
		response.ServerError(c, "注销失败，请稍后再试")
		return
	}
	response.OK(c, "已退出登录", nil)
}

// GetProfile 获取用户详细信息
// GET /api/auth/profile
func (h *Handler) GetProfile(c *gin.Context) {
	identity := currentIdentity(c)

	profile, err := h.authService.GetProfile(c.Request.Context(), identity.Account)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		log.Printf("[AUTH] 获取资料失败: %v", err)
		response.ServerError(c, "获取信息失败，请稍后再试")
		return
	}

	response.OK(c, "", gin.H{"profile": profile})
}

// UpdateProfileRequest 资料更新请求
type UpdateProfileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Telephone string `json:"telephone"`
	Birth     string `json:"birth"`
	Address   string `json:"address"`
}

// UpdateProfile 更新用户资料
// POST /api/auth/update-profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数格式错误")
		return
	}

	errs := validator.Validate(
		validator.Field{Name: "username", Value: req.Username, Checks: []validator.Checker{
			validator.Optional(validator.MaxLength(20, "用户名长度不能超过20个字符")),
		}},
		validator.Field{Name: "email", Value: req.Email, Checks: []validator.Checker{
			validator.Optional(validator.Email("请输入有效的邮箱地址")),
		}},
		validator.Field{Name: "telephone", Value: req.Telephone, Checks: []validator.Checker{
			validator.Optional(validator.Telephone("请输入有效的手机号码")),
		}},
		validator.Field{Name: "birth", Value: req.Birth, Checks: []validator.Checker{
			validator.Optional(validator.Date("请输入有效的出生日期")),
		}},
		validator.Field{Name: "address", Value: req.Address, Checks: []validator.Checker{
			validator.Optional(validator.MaxLength(50, "地址长度不能超过50个字符")),
		}},
	)
	if len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	identity := currentIdentity(c)
	err := h.authService.UpdateProfile(c.Request.Context(), identity.Account, &repository.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		Telephone: req.Telephone,
		Birth:     req.Birth,
		Address:   req.Address,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		log.Printf("[AUTH] 更新资料失败: %v", err)
		response.ServerError(c, "更新失败，请稍后再试")
		return
	}

	response.OK(c, "资料更新成功！", nil)
}

// ChangePasswordRequest 改密请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword 修改密码
// POST /api/auth/change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数格式错误")
		return
	}

	errs := validator.Validate(
		validator.Field{Name: "oldPassword", Value: req.OldPassword, Checks: []validator.Checker{
			validator.Required("请输入原密码"),
		}},
		validator.Field{Name: "newPassword", Value: req.NewPassword, Checks: []validator.Checker{
			validator.Length(6, 20, "新密码长度必须在6-20个字符之间"),
		}},
	)
	if len(errs) > 0 {
		response.ValidationFailed(c, errs)
		return
	}

	identity := currentIdentity(c)
	err := h.authService.ChangePassword(c.Request.Context(), identity.Account, req.OldPassword, req.NewPassword, ClientIP(c))
	if err != nil {
		if errors.Is(err, service.ErrWrongOldPassword) {
			response.BadRequest(c, "原密码不正确")
			return
		}
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		log.Printf("[AUTH] 修改密码失败: %v", err)
		response.ServerError(c, "修改密码失败，请稍后再试")
		return
	}

	response.OK(c, "密码修改成功！", nil)
}
