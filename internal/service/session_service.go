package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/stream"

	"github.com/shopspring/decimal"
)

// sessionTransitions 会话状态机：active → bill_requested → paying → closed
// 只能向前推进；关台可从任意非终态直达（跑单等异常场景由员工直接关台）
var sessionTransitions = map[string][]string{
	constants.SessionStatusActive:        {constants.SessionStatusBillRequested, constants.SessionStatusClosed},
	constants.SessionStatusBillRequested: {constants.SessionStatusPaying, constants.SessionStatusClosed},
	constants.SessionStatusPaying:        {constants.SessionStatusClosed},
}

// CanTransition 判断会话状态能否迁移
func CanTransition(from, to string) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SessionService 桌台会话服务
type SessionService struct {
	sessionRepo          repository.SessionRepository
	tableRepo            repository.TableRepository
	orderRepo            repository.OrderRepository
	notifyService        *NotificationService
	broker               *stream.Broker
	serviceChargePercent int
}

// NewSessionService 创建会话服务
func NewSessionService(sessionRepo repository.SessionRepository, tableRepo repository.TableRepository, orderRepo repository.OrderRepository, notifyService *NotificationService, broker *stream.Broker, serviceChargePercent int) *SessionService {
	return &SessionService{
		sessionRepo:          sessionRepo,
		tableRepo:            tableRepo,
		orderRepo:            orderRepo,
		notifyService:        notifyService,
		broker:               broker,
		serviceChargePercent: serviceChargePercent,
	}
}

// OpenSessionInput 开台输入
// TableCode 为扫码入口（顾客自助），TableID 为员工代开入口，二选一
type OpenSessionInput struct {
	TenantID      uint
	TableID       uint
	TableCode     string
	CustomerName  string
	CustomerPhone string
	OpenedBy      *models.StaffRef
}

// OpenSession 开台
// 桌台已有未关闭会话时直接复用，避免扫同一张码开出多条账单；
// 该检查是尽力而为的，不依赖数据库唯一约束
func (s *SessionService) OpenSession(ctx context.Context, input OpenSessionInput) (*models.TableSession, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, ErrCustomerNameRequired
	}

	var table *models.DiningTable
	var err error
	if input.TableCode != "" {
		table, err = s.tableRepo.GetByCode(strings.TrimSpace(input.TableCode))
	} else {
		table, err = s.tableRepo.GetByID(input.TenantID, input.TableID)
	}
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	if input.TableCode != "" {
		// 扫码入口没有租户先验，以桌台归属为准
		input.TenantID = table.TenantID
	}
	if !table.IsActive {
		return nil, ErrTableInactive
	}

	if existing, err := s.sessionRepo.GetOpenByTable(table.TenantID, table.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	now := time.Now()
	session := &models.TableSession{
		TenantID:       table.TenantID,
		TableID:        table.ID,
		TableLabel:     table.Label,
		CustomerName:   name,
		CustomerPhone:  strings.TrimSpace(input.CustomerPhone),
		Status:         constants.SessionStatusActive,
		OrderIDs:       models.UintArray{},
		AttendedBy:     models.StaffRefArray{},
		OpenedAt:       now,
		LastActivityAt: now,
	}
	if input.OpenedBy != nil {
		session.OpenedByID = input.OpenedBy.ID
		session.OpenedByName = input.OpenedBy.Name
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	s.publish(ctx, "session_opened", session)
	logger.Infow("session_opened", "session_id", session.ID, "table_id", table.ID, "customer", name)
	return session, nil
}

// GetSession 获取会话
func (s *SessionService) GetSession(tenantID, id uint) (*models.TableSession, error) {
	session, err := s.sessionRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// SessionView 会话详情视图
type SessionView struct {
	Session *models.TableSession `json:"session"`
	Orders  []models.Order       `json:"orders"`
	Bill    *BillView            `json:"bill,omitempty"`
}

// BillView 账单视图
type BillView struct {
	Subtotal      models.Money `json:"subtotal"`
	ServiceCharge models.Money `json:"service_charge"`
	Total         models.Money `json:"total"`
}

// GetSessionView 获取会话详情（含订单与账单预览）
func (s *SessionService) GetSessionView(tenantID, id uint) (*SessionView, error) {
	session, err := s.GetSession(tenantID, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListBySession(tenantID, id)
	if err != nil {
		return nil, err
	}
	view := &SessionView{Session: session, Orders: orders}
	if session.Status != constants.SessionStatusActive {
		view.Bill = s.buildBill(session)
	}
	return view, nil
}

// ListSessions 查询会话列表
func (s *SessionService) ListSessions(filter repository.SessionListFilter) ([]models.TableSession, int64, error) {
	return s.sessionRepo.List(filter)
}

// RequestBill 请求结账：active → bill_requested
// 账单金额 = 累计消费 + 服务费，计算后通知值台员工
func (s *SessionService) RequestBill(ctx context.Context, tenantID, sessionID uint) (*BillView, error) {
	session, err := s.GetSession(tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(session.Status, constants.SessionStatusBillRequested) {
		if session.IsTerminal() {
			return nil, ErrSessionClosed
		}
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	if err := s.sessionRepo.Updates(session.ID, map[string]interface{}{
		"status":           constants.SessionStatusBillRequested,
		"last_activity_at": now,
	}); err != nil {
		return nil, err
	}
	session.Status = constants.SessionStatusBillRequested
	bill := s.buildBill(session)

	s.publish(ctx, "bill_requested", session)
	s.notifyService.Notify(ctx, NotifyInput{
		TenantID:     tenantID,
		Type:         constants.NotifyTypeBillRequested,
		Priority:     constants.NotifyPriorityHigh,
		Title:        "请求结账",
		Message:      fmt.Sprintf("桌台 %s 请求结账，应收 %s", session.TableLabel, bill.Total.String()),
		TableID:      session.TableID,
		SessionID:    session.ID,
		AudienceType: constants.NotifyAudienceRole,
		Role:         constants.StaffRoleWaiter,
		DedupeKey:    fmt.Sprintf("bill:%d", session.ID),
	})
	return bill, nil
}

// StartPaying 标记开始支付：bill_requested → paying
func (s *SessionService) StartPaying(ctx context.Context, tenantID, sessionID uint, staff models.StaffRef) error {
	session, err := s.GetSession(tenantID, sessionID)
	if err != nil {
		return err
	}
	if !CanTransition(session.Status, constants.SessionStatusPaying) {
		if session.IsTerminal() {
			return ErrSessionClosed
		}
		return ErrInvalidTransition
	}

	attended := session.AttendedBy
	if !attended.Contains(staff.ID) {
		attended = append(attended, staff)
	}
	if err := s.sessionRepo.Updates(session.ID, map[string]interface{}{
		"status":           constants.SessionStatusPaying,
		"attended_by":      attended,
		"last_activity_at": time.Now(),
	}); err != nil {
		return err
	}
	session.Status = constants.SessionStatusPaying
	s.publish(ctx, "paying_started", session)
	return nil
}

// CloseSession 关台：任意非终态 → closed
// 实收金额入账后会话终态，之后任何写操作都被拒绝
func (s *SessionService) CloseSession(ctx context.Context, tenantID, sessionID uint, staff models.StaffRef, amountPaid models.Money) (*models.TableSession, error) {
	session, err := s.GetSession(tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(session.Status, constants.SessionStatusClosed) {
		if session.IsTerminal() {
			return nil, ErrSessionClosed
		}
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	attended := session.AttendedBy
	if !attended.Contains(staff.ID) {
		attended = append(attended, staff)
	}
	if err := s.sessionRepo.Updates(session.ID, map[string]interface{}{
		"status":           constants.SessionStatusClosed,
		"total_paid":       amountPaid,
		"attended_by":      attended,
		"closed_at":        now,
		"last_activity_at": now,
	}); err != nil {
		return nil, err
	}
	session.Status = constants.SessionStatusClosed
	session.TotalPaid = amountPaid
	session.ClosedAt = &now
	session.AttendedBy = attended

	s.publish(ctx, "session_closed", session)
	s.notifyService.Notify(ctx, NotifyInput{
		TenantID:     tenantID,
		Type:         constants.NotifyTypeSessionClosed,
		Priority:     constants.NotifyPriorityNormal,
		Title:        "桌台已结账",
		Message:      fmt.Sprintf("桌台 %s 已关台，实收 %s", session.TableLabel, amountPaid.String()),
		TableID:      session.TableID,
		SessionID:    session.ID,
		AudienceType: constants.NotifyAudienceRole,
		Role:         constants.StaffRoleManager,
	})
	logger.Infow("session_closed", "session_id", session.ID, "total_amount", session.TotalAmount.String(), "total_paid", amountPaid.String())
	return session, nil
}

// RecordAttendant 把员工追加进会话服务名单，已在名单时不重复
func (s *SessionService) RecordAttendant(tenantID, sessionID uint, staff models.StaffRef) error {
	session, err := s.sessionRepo.GetByID(tenantID, sessionID)
	if err != nil || session == nil {
		return err
	}
	if session.AttendedBy.Contains(staff.ID) {
		return nil
	}
	attended := append(session.AttendedBy, staff)
	return s.sessionRepo.Updates(session.ID, map[string]interface{}{"attended_by": attended})
}

func (s *SessionService) buildBill(session *models.TableSession) *BillView {
	subtotal := session.TotalAmount.Decimal
	percent := decimal.NewFromInt(int64(s.serviceChargePercent))
	charge := subtotal.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
	return &BillView{
		Subtotal:      models.NewMoneyFromDecimal(subtotal),
		ServiceCharge: models.NewMoneyFromDecimal(charge),
		Total:         models.NewMoneyFromDecimal(subtotal.Add(charge)),
	}
}

func (s *SessionService) publish(ctx context.Context, eventType string, session *models.TableSession) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(ctx, stream.Event{
		Topic:     constants.StreamTopicSession,
		Type:      eventType,
		TenantID:  session.TenantID,
		TableID:   session.TableID,
		SessionID: session.ID,
		Payload:   session,
	})
}
