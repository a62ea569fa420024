package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RechargeStatusPending  = "pending"  // 待审核
	RechargeStatusVerified = "verified" // 已通过
	RechargeStatusRejected = "rejected" // 已拒绝
)

// ValidRechargeStatus 审核状态集合
var ValidRechargeStatus = map[string]bool{
	RechargeStatusPending:  true,
	RechargeStatusVerified: true,
	RechargeStatusRejected: true,
}

// RechargeStatusText 状态的展示文案
var RechargeStatusText = map[string]string{
	RechargeStatusPending:  "待审核",
	RechargeStatusVerified: "已通过",
	RechargeStatusRejected: "已拒绝",
}

// ItemList 付款项列表，按提交顺序保存，落库时序列化为 JSON 文本
type ItemList []string

func (l ItemList) Value() (driver.Value, error) {
	if l == nil {
		l = ItemList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *ItemList) Scan(value interface{}) error {
	if value == nil {
		*l = ItemList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("无法解析付款项字段: %T", value)
	}
	if len(data) == 0 {
		*l = ItemList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// RechargeRecord 充值登记表
// 玩家线下付款后在网页上登记，由 GM 逐条人工审核。
// 记录只增不删，提交之后唯一会变的字段是 status（以及 updated_at）。
// transaction_id 在库级别加唯一索引，并发重复提交由索引兜底，
// 不依赖“先查后插”的应用层检查。
type RechargeRecord struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentTime   string          `gorm:"type:varchar(32);not null" json:"payment_time"`
	TransactionID string          `gorm:"type:varchar(6);uniqueIndex;not null" json:"transaction_id"` // 交易单号后6位，统一大写
	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Items         ItemList        `gorm:"type:text;not null" json:"items"`
	GameAccount   string          `gorm:"type:varchar(12);index;not null" json:"game_account"`
	CharacterName string          `gorm:"type:varchar(20);not null" json:"character_name"`
	Server        string          `gorm:"type:varchar(32);not null" json:"server"`
	Remark        string          `gorm:"type:varchar(200)" json:"remark"`
	Status        string          `gorm:"type:varchar(10);index;not null;default:pending" json:"status"`
	IPAddress     string          `gorm:"type:varchar(45)" json:"ip_address"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RechargeRecord) TableName() string {
	return "recharge_records"
}

// NormalizeAmount 金额归一到两位小数
// 先换算成整数“分”再四舍五入，避免浮点累计误差：19.995 -> 20.00，10.004 -> 10.00
func NormalizeAmount(amount decimal.Decimal) decimal.Decimal {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0)
	return cents.Div(decimal.NewFromInt(100))
}

// RechargeStats 审核统计
type RechargeStats struct {
	Total       int64  `json:"total"`
	Pending     int64  `json:"pending"`
	Verified    int64  `json:"verified"`
	Rejected    int64  `json:"rejected"`
	TotalAmount string `json:"totalAmount"` // 已通过记录的金额合计，两位小数字符串
}
