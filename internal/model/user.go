package model

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminUserID 管理员账号的固定 id（旧库里只有一条超级用户记录，没有角色表）
const AdminUserID = 1

// User 游戏账号表
// 对应 SQL Server 里的旧表 dbo.account1000y，表结构由游戏服务端维护，
// 本服务只读写其中一部分列，绝对不能对它做迁移。
// account / password 是 CHAR 定宽字段，右侧会被空格填充，比较前必须去掉填充。
type User struct {
	ID        int    `gorm:"column:id;primaryKey" json:"id"`
	Account   string `gorm:"column:account" json:"account"`
	Password  string `gorm:"column:password" json:"-"`
	Username  string `gorm:"column:username" json:"username"`
	Email     string `gorm:"column:email" json:"email"`
	Telephone string `gorm:"column:telephone" json:"telephone"`
	Birth     string `gorm:"column:birth" json:"birth"`
	Address   string `gorm:"column:address" json:"address"`
	IPAddr    string `gorm:"column:ipaddr" json:"-"`
	LastDate  string `gorm:"column:lastdate" json:"lastdate"`
	MakeDate  string `gorm:"column:makedate" json:"-"`
	Char1     string `gorm:"column:char1" json:"-"`
	Char2     string `gorm:"column:char2" json:"-"`
	Char3     string `gorm:"column:char3" json:"-"`
	Char4     string `gorm:"column:char4" json:"-"`
	Char5     string `gorm:"column:char5" json:"-"`
}

func (User) TableName() string {
	return "account1000y"
}

// IsAdmin 管理员即 id=1 的那一行，没有更细的权限模型
func (u *User) IsAdmin() bool {
	return u.ID == AdminUserID
}

// Characters 返回账号下已创建的角色名列表
// char1~char5 是定宽槽位，空槽位可能是空串或全空格，过滤后只留有效角色
func (u *User) Characters() []string {
	slots := []string{u.Char1, u.Char2, u.Char3, u.Char4, u.Char5}
	characters := make([]string, 0, len(slots))
	for _, s := range slots {
		if name := strings.TrimSpace(s); name != "" {
			characters = append(characters, name)
		}
	}
	return characters
}

// VerifyPassword 校验密码
//
// 旧库的 password 列是明文 CHAR 字段（历史遗留），新写入的密码统一存 bcrypt 哈希。
// 这里两种格式都认：存量明文走常数时间的修剪比较，哈希走 bcrypt 比较。
// 返回值第二项表示该行还是旧明文格式，调用方可借机升级成哈希。
func (u *User) VerifyPassword(password string) (ok bool, legacy bool) {
	stored := strings.TrimSpace(u.Password)
	supplied := strings.TrimSpace(password)

	if isBcryptHash(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied))
		return err == nil, false
	}

	// 明文比较也走常数时间，避免逐字节短路泄露前缀信息
	match := len(stored) == len(supplied) &&
		subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
	return match, true
}

// HashPassword 生成密码哈希（注册、改密、明文升级共用）
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}
