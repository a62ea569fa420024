package repository

import (
	"context"
	"errors"

	"gameportal/internal/model"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrDuplicateAccount = errors.New("该账号已被注册")
)

// UserRepository 账号表访问层
// 表在外部 SQL Server 里，account 是 CHAR 定宽列，所有按账号的条件
// 都要用 RTRIM(account) 去掉右侧填充后再比较。
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByAccount(ctx context.Context, account string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("RTRIM(account) = ?", account).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByAccount 注册前的查重
func (r *UserRepository) ExistsByAccount(ctx context.Context, account string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("RTRIM(account) = ?", account).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateLastLogin 登录成功后回写最后登录时间和来源 IP
func (r *UserRepository) UpdateLastLogin(ctx context.Context, account, lastdate, ipaddr string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("RTRIM(account) = ?", account).
		Updates(map[string]interface{}{
			"lastdate": lastdate,
			"ipaddr":   ipaddr,
		}).Error
}

// UpdatePassword 覆盖密码列（写入的是 bcrypt 哈希），同时记录操作来源 IP
func (r *UserRepository) UpdatePassword(ctx context.Context, account, hashedPassword, ipaddr string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("RTRIM(account) = ?", account).
		Updates(map[string]interface{}{
			"password": hashedPassword,
			"ipaddr":   ipaddr,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ProfileUpdate 资料更新字段，零值直接覆盖（与旧版行为一致）
type ProfileUpdate struct {
	Username  string
	Email     string
	Telephone string
	Birth     string
	Address   string
}

func (r *UserRepository) UpdateProfile(ctx context.Context, account string, update *ProfileUpdate) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("RTRIM(account) = ?", account).
		Updates(map[string]interface{}{
			"username":  update.Username,
			"email":     update.Email,
			"telephone": update.Telephone,
			"birth":     update.Birth,
			"address":   update.Address,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
