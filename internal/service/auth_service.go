package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gameportal/internal/model"
	"gameportal/internal/repository"
	"gameportal/internal/session"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("账号或密码错误")
	ErrWrongOldPassword   = errors.New("原密码不正确")
)

// AuthService 账号注册、登录与资料维护
type AuthService struct {
	userRepo *repository.UserRepository
	sessions session.Store
}

func NewAuthService(db *gorm.DB, sessions session.Store) *AuthService {
	return &AuthService{
		userRepo: repository.NewUserRepository(db),
		sessions: sessions,
	}
}

// RegisterRequest 注册参数（已通过校验层）
type RegisterRequest struct {
	Account   string
	Password  string
	Telephone string
	Email     string
	IP        string
}

// Register 注册新账号
// 账号查重后落库，用户名默认取账号，密码只存 bcrypt 哈希。
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) error {
	exists, err := s.userRepo.ExistsByAccount(ctx, req.Account)
	if err != nil {
		return fmt.Errorf("查询账号失败: %w", err)
	}
	if exists {
		return repository.ErrDuplicateAccount
	}

	hashed, err := model.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	user := &model.User{
		Account:   req.Account,
		Password:  hashed,
		Username:  req.Account,
		Telephone: req.Telephone,
		Email:     req.Email,
		IPAddr:    req.IP,
		MakeDate:  formatDatetime(time.Now()),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("创建账号失败: %w", err)
	}
	return nil
}

// LoginResult 登录成功返回的身份与会话令牌
type LoginResult struct {
	Token    string
	Identity *session.Identity
}

// Login 校验密码并签发会话
// 任何不匹配（含大小写、尾部空格差异）都按统一的“账号或密码错误”处理，
// 不区分账号不存在和密码不对。
func (s *AuthService) Login(ctx context.Context, account, password, ip string) (*LoginResult, error) {
	user, err := s.userRepo.FindByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("查询账号失败: %w", err)
	}

	ok, legacyPlaintext := user.VerifyPassword(password)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	// 存量明文密码登录成功后顺手升级成哈希，升级失败不影响本次登录
	if legacyPlaintext {
		if hashed, hashErr := model.HashPassword(password); hashErr == nil {
			if upErr := s.userRepo.UpdatePassword(ctx, account, hashed, ip); upErr != nil {
				log.Printf("[AUTH] 明文密码升级失败 account=%s: %v", account, upErr)
			}
		}
	}

	if err := s.userRepo.UpdateLastLogin(ctx, account, formatDatetime(time.Now()), ip); err != nil {
		return nil, fmt.Errorf("更新登录时间失败: %w", err)
	}

	identity := &session.Identity{
		ID:       user.ID,
		Account:  account,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin(),
	}
	token, err := s.sessions.Issue(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("签发会话失败: %w", err)
	}

	return &LoginResult{Token: token, Identity: identity}, nil
}

// Logout 注销会话
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// Profile 用户资料视图
type Profile struct {
	Account    string   `json:"account"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Characters []string `json:"characters"`
	LastDate   string   `json:"lastdate"`
}

// GetProfile 取资料，角色列表由 char1~char5 槽位过滤得出
func (s *AuthService) GetProfile(ctx context.Context, account string) (*Profile, error) {
	user, err := s.userRepo.FindByAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Account:    account,
		Username:   user.Username,
		Email:      user.Email,
		Characters: user.Characters(),
		LastDate:   user.LastDate,
	}, nil
}

// UpdateProfile 覆盖式更新资料
func (s *AuthService) UpdateProfile(ctx context.Context, account string, update *repository.ProfileUpdate) error {
	return s.userRepo.UpdateProfile(ctx, account, update)
}

// ChangePassword 改密：先按登录同款逻辑验原密码，再写入新哈希
func (s *AuthService) ChangePassword(ctx context.Context, account, oldPassword, newPassword, ip string) error {
	user, err := s.userRepo.FindByAccount(ctx, account)
	if err != nil {
		return err
	}

	ok, _ := user.VerifyPassword(oldPassword)
	if !ok {
		return ErrWrongOldPassword
	}

	hashed, err := model.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, account, hashed, ip)
}

// formatDatetime 旧库的时间列都是格式化字符串
func formatDatetime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
