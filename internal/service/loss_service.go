package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"

	"github.com/shopspring/decimal"
)

// costEstimateRatio 损失成本估算系数：菜品成本约为售价的三成
var costEstimateRatio = decimal.NewFromFloat(0.3)

var validLossTypes = map[string]bool{
	constants.LossTypeWalkout:           true,
	constants.LossTypeCancelledOrder:    true,
	constants.LossTypeKitchenError:      true,
	constants.LossTypeStaffError:        true,
	constants.LossTypeCustomerComplaint: true,
	constants.LossTypeOrphanOrder:       true,
	constants.LossTypeExpiredProduct:    true,
	constants.LossTypeSystemError:       true,
	constants.LossTypeOther:             true,
}

// LossService 损失工单服务
// 工单在上报时刻把会话快照与责任链冻结进记录本身，
// 审核是单向终态操作，通过或驳回后不可再改
type LossService struct {
	lossRepo           repository.LossRepository
	sessionRepo        repository.SessionRepository
	orderRepo          repository.OrderRepository
	staffRepo          repository.StaffRepository
	notifyService      *NotificationService
	queueClient        *queue.Client
	blacklistThreshold decimal.Decimal
}

// NewLossService 创建损失工单服务
func NewLossService(lossRepo repository.LossRepository, sessionRepo repository.SessionRepository, orderRepo repository.OrderRepository, staffRepo repository.StaffRepository, notifyService *NotificationService, queueClient *queue.Client, blacklistThreshold int) *LossService {
	return &LossService{
		lossRepo:           lossRepo,
		sessionRepo:        sessionRepo,
		orderRepo:          orderRepo,
		staffRepo:          staffRepo,
		notifyService:      notifyService,
		queueClient:        queueClient,
		blacklistThreshold: decimal.NewFromInt(int64(blacklistThreshold)),
	}
}

// ReportLossInput 上报损失输入
type ReportLossInput struct {
	TenantID    uint
	Type        string
	SessionID   uint
	Description string
	Evidence    []string
	Reporter    models.StaffRef
}

// ReportLoss 上报损失
// 损失金额 = 会话累计消费 - 实收；责任链从会话与派送记录快照：
// 谁开的台、谁服务过、谁送过菜、最后接触的是谁
func (s *LossService) ReportLoss(ctx context.Context, input ReportLossInput) (*models.LossIncident, error) {
	if !validLossTypes[input.Type] {
		return nil, ErrInvalidLossType
	}
	session, err := s.sessionRepo.GetByID(input.TenantID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	amount := session.TotalAmount.Sub(session.TotalPaid.Decimal)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	cost := amount.Mul(costEstimateRatio).Round(2)

	deliveredBy, lastTouch := s.resolveDeliveryChain(input.TenantID, session)
	if lastTouch.ID == 0 {
		if n := len(session.AttendedBy); n > 0 {
			lastTouch = session.AttendedBy[n-1]
		} else if session.OpenedByID > 0 {
			lastTouch = models.StaffRef{ID: session.OpenedByID, Name: session.OpenedByName}
		}
	}

	now := time.Now()
	incident := &models.LossIncident{
		TenantID:       input.TenantID,
		Type:           input.Type,
		SessionID:      session.ID,
		TableLabel:     session.TableLabel,
		CustomerName:   session.CustomerName,
		CustomerPhone:  session.CustomerPhone,
		TotalOrdered:   session.TotalAmount,
		TotalPaid:      session.TotalPaid,
		Amount:         models.NewMoneyFromDecimal(amount),
		Cost:           models.NewMoneyFromDecimal(cost),
		Description:    strings.TrimSpace(input.Description),
		Evidence:       models.StringArray(input.Evidence),
		OpenedByID:     session.OpenedByID,
		OpenedByName:   session.OpenedByName,
		AttendedBy:     session.AttendedBy,
		DeliveredBy:    deliveredBy,
		LastTouchID:    lastTouch.ID,
		LastTouchName:  lastTouch.Name,
		ReportedByID:   input.Reporter.ID,
		ReportedByName: input.Reporter.Name,
		Status:         constants.LossStatusPending,
		Timeline: models.TimelineArray{{
			Event:  constants.LossEventReported,
			At:     now,
			ByID:   input.Reporter.ID,
			ByName: input.Reporter.Name,
			Notes:  strings.TrimSpace(input.Description),
		}},
	}
	if err := s.lossRepo.Create(incident); err != nil {
		return nil, err
	}

	// 拉黑在上报时刻触发，不等审核：跑单顾客可能在审核前再次光顾
	if s.shouldBlacklist(incident) {
		s.flagBlacklist(incident)
	}

	s.notifyService.Notify(ctx, NotifyInput{
		TenantID:     input.TenantID,
		Type:         constants.NotifyTypeLossReported,
		Priority:     constants.NotifyPriorityHigh,
		Title:        "损失工单待审核",
		Message:      fmt.Sprintf("桌台 %s 上报%s损失 %s，请审核", incident.TableLabel, input.Type, incident.Amount.String()),
		TableID:      session.TableID,
		SessionID:    session.ID,
		AudienceType: constants.NotifyAudienceRole,
		Role:         constants.StaffRoleManager,
		DedupeKey:    fmt.Sprintf("loss:%d", incident.ID),
	})

	logger.Infow("loss_reported", "incident_id", incident.ID, "type", input.Type, "session_id", session.ID, "amount", incident.Amount.String())
	return incident, nil
}

// ReviewIncident 审核损失工单：仅经理可操作，结果不可逆
func (s *LossService) ReviewIncident(ctx context.Context, tenantID, incidentID, reviewerID uint, approve bool, notes string) (*models.LossIncident, error) {
	reviewer, err := s.staffRepo.GetByID(tenantID, reviewerID)
	if err != nil {
		return nil, err
	}
	if reviewer == nil {
		return nil, ErrStaffNotFound
	}
	if reviewer.Role != constants.StaffRoleManager {
		return nil, ErrManagerRequired
	}

	incident, err := s.lossRepo.GetByID(tenantID, incidentID)
	if err != nil {
		return nil, err
	}
	if incident == nil {
		return nil, ErrIncidentNotFound
	}
	if incident.Status != constants.LossStatusPending {
		return nil, ErrIncidentFinalized
	}

	now := time.Now()
	event := constants.LossEventRejected
	status := constants.LossStatusRejected
	if approve {
		event = constants.LossEventApproved
		status = constants.LossStatusApproved
	}
	incident.Status = status
	incident.ReviewedByID = &reviewer.ID
	incident.ReviewedByName = reviewer.Name
	incident.ReviewNotes = strings.TrimSpace(notes)
	incident.ReviewedAt = &now
	incident.Timeline = append(incident.Timeline, models.TimelineEvent{
		Event:  event,
		At:     now,
		ByID:   reviewer.ID,
		ByName: reviewer.Name,
		Notes:  strings.TrimSpace(notes),
	})
	if err := s.lossRepo.Save(incident); err != nil {
		return nil, err
	}

	s.notifyService.Notify(ctx, NotifyInput{
		TenantID:     tenantID,
		Type:         constants.NotifyTypeLossReviewed,
		Priority:     constants.NotifyPriorityNormal,
		Title:        "损失工单已审核",
		Message:      fmt.Sprintf("工单 #%d 审核结果：%s", incident.ID, status),
		SessionID:    incident.SessionID,
		AudienceType: constants.NotifyAudienceStaff,
		RecipientID:  incident.ReportedByID,
	})

	logger.Infow("loss_reviewed", "incident_id", incident.ID, "status", status, "reviewer_id", reviewer.ID)
	return incident, nil
}

// GetIncident 获取损失工单
func (s *LossService) GetIncident(tenantID, id uint) (*models.LossIncident, error) {
	incident, err := s.lossRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if incident == nil {
		return nil, ErrIncidentNotFound
	}
	return incident, nil
}

// ListIncidents 查询损失工单列表
func (s *LossService) ListIncidents(filter repository.LossListFilter) ([]models.LossIncident, int64, error) {
	return s.lossRepo.List(filter)
}

// ListBlacklistFlags 查询拉黑标记留档
func (s *LossService) ListBlacklistFlags(tenantID uint, phone string) ([]models.BlacklistFlag, error) {
	return s.lossRepo.ListBlacklistFlags(tenantID, phone)
}

// shouldBlacklist 跑单且留有手机号时判定：单笔超过阈值直接拉黑，
// 未超阈值则累加该手机号历史已审核通过的损失，惯犯同样拉黑
func (s *LossService) shouldBlacklist(incident *models.LossIncident) bool {
	if incident.Type != constants.LossTypeWalkout {
		return false
	}
	phone := strings.TrimSpace(incident.CustomerPhone)
	if phone == "" {
		return false
	}
	if incident.Amount.GreaterThan(s.blacklistThreshold) {
		return true
	}
	prior, err := s.lossRepo.SumApprovedByPhone(incident.TenantID, phone)
	if err != nil {
		logger.Warnw("blacklist_history_sum_failed", "phone", phone, "error", err)
		return false
	}
	return incident.Amount.Add(prior.Decimal).GreaterThan(s.blacklistThreshold)
}

// flagBlacklist 本地留档 + 异步推送，推送失败只影响外部名单，不影响审核结果
func (s *LossService) flagBlacklist(incident *models.LossIncident) {
	flag := &models.BlacklistFlag{
		TenantID:      incident.TenantID,
		IncidentID:    incident.ID,
		CustomerName:  incident.CustomerName,
		CustomerPhone: incident.CustomerPhone,
		Amount:        incident.Amount,
	}
	if err := s.lossRepo.CreateBlacklistFlag(flag); err != nil {
		logger.Errorw("blacklist_flag_persist_failed", "incident_id", incident.ID, "error", err)
		return
	}
	if err := s.queueClient.EnqueueBlacklistFlag(queue.BlacklistFlagPayload{
		FlagID:   flag.ID,
		TenantID: incident.TenantID,
	}); err != nil {
		logger.Warnw("blacklist_flag_enqueue_failed", "flag_id", flag.ID, "error", err)
	}
	logger.Infow("blacklist_flagged", "incident_id", incident.ID, "phone", incident.CustomerPhone, "amount", incident.Amount.String())
}

// resolveDeliveryChain 从会话订单的认领记录还原派送链
func (s *LossService) resolveDeliveryChain(tenantID uint, session *models.TableSession) (models.StaffRefArray, models.StaffRef) {
	orders, err := s.orderRepo.ListBySession(tenantID, session.ID)
	if err != nil {
		logger.Warnw("delivery_chain_resolve_failed", "session_id", session.ID, "error", err)
		return models.StaffRefArray{}, models.StaffRef{}
	}
	deliveredBy := models.StaffRefArray{}
	var lastTouch models.StaffRef
	for i := range orders {
		order := &orders[i]
		if order.ClaimedBy == nil {
			continue
		}
		if order.Status != constants.OrderStatusReady && order.Status != constants.OrderStatusDelivered {
			continue
		}
		ref := models.StaffRef{ID: *order.ClaimedBy, Name: order.ClaimedByName}
		if !deliveredBy.Contains(ref.ID) {
			deliveredBy = append(deliveredBy, ref)
		}
		lastTouch = ref
	}
	return deliveredBy, lastTouch
}
