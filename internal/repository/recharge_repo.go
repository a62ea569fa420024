package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gameportal/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRechargeNotFound     = errors.New("充值记录不存在")
	ErrDuplicateTransaction = errors.New("该交易单号已提交，请勿重复提交")
)

// RechargeRepository 充值登记表访问层（本地 SQLite）
type RechargeRepository struct {
	db *gorm.DB
}

func NewRechargeRepository(db *gorm.DB) *RechargeRepository {
	return &RechargeRepository{db: db}
}

// Create 写入一条登记
// transaction_id 上有唯一索引，并发下重复提交由索引兜底，
// 这里把唯一冲突翻译成 ErrDuplicateTransaction（依赖连接开启 TranslateError）。
func (r *RechargeRepository) Create(ctx context.Context, record *model.RechargeRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

// ExistsByTransactionID 提交前的友好查重（最终一致性仍由唯一索引保证）
func (r *RechargeRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RechargeRecord{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RechargeRepository) GetByID(ctx context.Context, id int64) (*model.RechargeRecord, error) {
	var record model.RechargeRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRechargeNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListFilter 列表过滤条件
type ListFilter struct {
	Status string // 为空表示不过滤
	Search string // 模糊匹配游戏账号或角色名，忽略大小写
}

// List 分页查询，过滤和搜索都下推到 SQL 里执行
// 多取一条用来判断是否还有下一页，返回前裁掉。
func (r *RechargeRepository) List(ctx context.Context, page, limit int, filter *ListFilter) ([]*model.RechargeRecord, bool, error) {
	query := r.db.WithContext(ctx).Model(&model.RechargeRecord{})

	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			pattern := "%" + strings.ToLower(filter.Search) + "%"
			query = query.Where("LOWER(game_account) LIKE ? OR LOWER(character_name) LIKE ?", pattern, pattern)
		}
	}

	var records []*model.RechargeRecord
	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit + 1).
		Find(&records).Error
	if err != nil {
		return nil, false, err
	}

	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}
	return records, hasMore, nil
}

// UpdateStatus 改写审核状态并刷新 updated_at
// 重复写同一个状态是幂等空操作，不报错。
func (r *RechargeRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	var record model.RechargeRecord
	err := r.db.WithContext(ctx).Select("id").First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRechargeNotFound
		}
		return err
	}

	return r.db.WithContext(ctx).Model(&model.RechargeRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// Stats 按状态计数，并对已通过的记录求金额合计
// 合计在应用层用 decimal 累加，金额列不能走浮点 SUM。
func (r *RechargeRepository) Stats(ctx context.Context) (*model.RechargeStats, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err := r.db.WithContext(ctx).Model(&model.RechargeRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	stats := &model.RechargeStats{}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case model.RechargeStatusPending:
			stats.Pending = c.Count
		case model.RechargeStatusVerified:
			stats.Verified = c.Count
		case model.RechargeStatusRejected:
			stats.Rejected = c.Count
		}
	}

	var amounts []decimal.Decimal
	err = r.db.WithContext(ctx).Model(&model.RechargeRecord{}).
		Where("status = ?", model.RechargeStatusVerified).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	stats.TotalAmount = total.StringFixed(2)

	return stats, nil
}
