package service

import (
	"context"
	"fmt"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/stream"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	sessionRepo   repository.SessionRepository
	cartRepo      repository.CartRepository
	notifyService *NotificationService
	broker        *stream.Broker
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, sessionRepo repository.SessionRepository, cartRepo repository.CartRepository, notifyService *NotificationService, broker *stream.Broker) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		sessionRepo:   sessionRepo,
		cartRepo:      cartRepo,
		notifyService: notifyService,
		broker:        broker,
	}
}

// SubmitOrderInput 提交订单输入
type SubmitOrderInput struct {
	TenantID  uint
	SessionID uint
	ClientKey string
}

// SubmitOrder 提交订单流水线：
// 校验会话 active → 整车转订单项 → 同一事务内落单、累加会话流水、清空购物车。
// 订单项落库后不可变，改量只能再下一单
func (s *OrderService) SubmitOrder(ctx context.Context, input SubmitOrderInput) (*models.Order, error) {
	session, err := s.sessionRepo.GetByID(input.TenantID, input.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status != constants.SessionStatusActive {
		if session.IsTerminal() {
			return nil, ErrSessionClosed
		}
		return nil, ErrSessionNotActive
	}

	cartItems, err := s.cartRepo.ListItems(input.TenantID, session.TableID, input.ClientKey)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	now := time.Now()
	subtotal := decimal.Zero
	hasHighPriority := false
	items := make([]models.OrderItem, 0, len(cartItems))
	for i := range cartItems {
		ci := &cartItems[i]
		if ci.Quantity <= 0 {
			return nil, ErrInvalidCartItem
		}
		lineTotal := ci.LineTotal()
		subtotal = subtotal.Add(lineTotal.Decimal)
		if ci.HighPriority {
			hasHighPriority = true
		}
		items = append(items, models.OrderItem{
			ProductID:    ci.ProductID,
			Name:         ci.Name,
			CategoryName: ci.CategoryName,
			Quantity:     ci.Quantity,
			UnitPrice:    ci.UnitPrice,
			LineTotal:    lineTotal,
			HighPriority: ci.HighPriority,
		})
	}

	order := &models.Order{
		TenantID:        input.TenantID,
		SessionID:       session.ID,
		TableID:         session.TableID,
		TableLabel:      session.TableLabel,
		CustomerName:    session.CustomerName,
		CustomerPhone:   session.CustomerPhone,
		Status:          constants.OrderStatusPending,
		Subtotal:        models.NewMoneyFromDecimal(subtotal),
		HasHighPriority: hasHighPriority,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}

		orderIDs := append(session.OrderIDs, order.ID)
		updates := map[string]interface{}{
			"order_ids":        orderIDs,
			"total_amount":     models.NewMoneyFromDecimal(session.TotalAmount.Add(subtotal)),
			"last_order_at":    now,
			"last_activity_at": now,
		}
		if session.FirstOrderAt == nil {
			updates["first_order_at"] = now
		}
		if err := s.sessionRepo.WithTx(tx).Updates(session.ID, updates); err != nil {
			return err
		}

		return s.cartRepo.WithTx(tx).Clear(input.TenantID, session.TableID, input.ClientKey)
	})
	if err != nil {
		logger.Errorw("order_submit_failed", "session_id", session.ID, "error", err)
		return nil, ErrOrderCreateFailed
	}
	order.Items = items

	if s.broker != nil {
		s.broker.Publish(ctx, stream.Event{
			Topic:     constants.StreamTopicOrder,
			Type:      "order_submitted",
			TenantID:  order.TenantID,
			TableID:   order.TableID,
			SessionID: order.SessionID,
			OrderID:   order.ID,
			Payload:   order,
		})
	}

	priority := constants.NotifyPriorityNormal
	if hasHighPriority {
		priority = constants.NotifyPriorityHigh
	}
	s.notifyService.Notify(ctx, NotifyInput{
		TenantID:     order.TenantID,
		Type:         constants.NotifyTypeNewOrder,
		Priority:     priority,
		Title:        "新订单待认领",
		Message:      fmt.Sprintf("桌台 %s 新订单 #%d，共 %d 项", order.TableLabel, order.ID, len(items)),
		TableID:      order.TableID,
		SessionID:    order.SessionID,
		OrderID:      order.ID,
		AudienceType: constants.NotifyAudienceRole,
		Role:         constants.StaffRoleWaiter,
	})

	logger.Infow("order_submitted", "order_id", order.ID, "session_id", session.ID, "subtotal", order.Subtotal.String(), "high_priority", hasHighPriority)
	return order, nil
}

// GetOrder 获取订单
func (s *OrderService) GetOrder(tenantID, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUnclaimed 查询待认领订单，优先派送项置顶
func (s *OrderService) ListUnclaimed(tenantID uint) ([]models.Order, error) {
	return s.orderRepo.ListUnclaimed(tenantID, time.Now())
}

// ListOrders 查询订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}
