package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gameportal/internal/infrastructure/mq"
	"gameportal/internal/model"
	"gameportal/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RechargeService 充值登记与审核流程
//
// 状态机：pending -> verified 或 pending -> rejected。
// verified / rejected 是终态，重复写同一状态是幂等空操作。
type RechargeService struct {
	rechargeRepo *repository.RechargeRepository
	producer     *mq.Producer
}

func NewRechargeService(db *gorm.DB, producer *mq.Producer) *RechargeService {
	return &RechargeService{
		rechargeRepo: repository.NewRechargeRepository(db),
		producer:     producer,
	}
}

// SubmitRequest 登记参数（已通过校验层）
type SubmitRequest struct {
	PaymentTime   string
	TransactionID string
	Amount        string
	Items         []string
	GameAccount   string
	CharacterName string
	Server        string
	Remark        string
	IP            string
}

// Submit 提交充值登记
// 交易单号统一转大写后查重落库；唯一索引负责并发下的最终防线。
func (s *RechargeService) Submit(ctx context.Context, req *SubmitRequest) (*model.RechargeRecord, error) {
	transactionID := strings.ToUpper(req.TransactionID)

	exists, err := s.rechargeRepo.ExistsByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("查询交易单号失败: %w", err)
	}
	if exists {
		return nil, repository.ErrDuplicateTransaction
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return nil, fmt.Errorf("金额格式错误: %w", err)
	}

	record := &model.RechargeRecord{
		PaymentTime:   req.PaymentTime,
		TransactionID: transactionID,
		Amount:        model.NormalizeAmount(amount),
		Items:         model.ItemList(req.Items),
		GameAccount:   req.GameAccount,
		CharacterName: req.CharacterName,
		Server:        req.Server,
		Remark:        req.Remark,
		Status:        model.RechargeStatusPending,
		IPAddress:     req.IP,
	}
	if err := s.rechargeRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Printf("[RECHARGE] 登记成功 id=%d account=%s amount=%s", record.ID, record.GameAccount, record.Amount.StringFixed(2))

	s.producer.PublishSubmitted(map[string]interface{}{
		"id":             record.ID,
		"transaction_id": record.TransactionID,
		"game_account":   record.GameAccount,
		"server":         record.Server,
		"amount":         record.Amount.StringFixed(2),
		"submitted_at":   time.Now().Format(time.RFC3339),
	})

	return record, nil
}

// List 审核列表，分页、状态过滤和搜索都在库里完成
func (s *RechargeService) List(ctx context.Context, page, limit int, status, search string) ([]*model.RechargeRecord, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return s.rechargeRepo.List(ctx, page, limit, &repository.ListFilter{
		Status: status,
		Search: search,
	})
}

// UpdateStatus GM 审核：写状态并广播事件
func (s *RechargeService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if err := s.rechargeRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	log.Printf("[RECHARGE] 审核更新 id=%d status=%s", id, status)

	s.producer.PublishReview(map[string]interface{}{
		"id":          id,
		"status":      status,
		"reviewed_at": time.Now().Format(time.RFC3339),
	})
	return nil
}

// Stats 审核统计
func (s *RechargeService) Stats(ctx context.Context) (*model.RechargeStats, error) {
	return s.rechargeRepo.Stats(ctx)
}
