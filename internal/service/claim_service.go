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

// ClaimService 订单认领仲裁服务
// 同一订单同一时刻至多一条有效认领；竞争裁决靠订单表上的
// 条件更新乐观锁，输家拿到结构化失败结果而不是错误
type ClaimService struct {
	orderRepo      repository.OrderRepository
	claimRepo      repository.ClaimRepository
	staffRepo      repository.StaffRepository
	sessionService *SessionService
	notifyService  *NotificationService
	broker         *stream.Broker
	expireMinutes  int
}

// NewClaimService 创建认领服务
func NewClaimService(orderRepo repository.OrderRepository, claimRepo repository.ClaimRepository, staffRepo repository.StaffRepository, sessionService *SessionService, notifyService *NotificationService, broker *stream.Broker, expireMinutes int) *ClaimService {
	if expireMinutes <= 0 {
		expireMinutes = 5
	}
	return &ClaimService{
		orderRepo:      orderRepo,
		claimRepo:      claimRepo,
		staffRepo:      staffRepo,
		sessionService: sessionService,
		notifyService:  notifyService,
		broker:         broker,
		expireMinutes:  expireMinutes,
	}
}

// ClaimResult 认领结果
// 竞争失败不是错误：Success=false 时附带当前持单人，前端据此提示
type ClaimResult struct {
	Success   bool               `json:"success"`
	Claim     *models.OrderClaim `json:"claim,omitempty"`
	Points    int                `json:"points,omitempty"`
	ClaimedBy string             `json:"claimed_by,omitempty"`
	Message   string             `json:"message,omitempty"`
}

// CalculatePoints 计算认领积分：基础 10 分，响应越快加成越高，
// 订单每满 10 元再加 1 分。纯函数，认领成功时刻计算后冻结
func CalculatePoints(responseSeconds int, subtotal decimal.Decimal) int {
	points := 10
	switch {
	case responseSeconds < 30:
		points += 20
	case responseSeconds < 60:
		points += 10
	case responseSeconds < 120:
		points += 5
	}
	points += int(subtotal.Div(decimal.NewFromInt(10)).IntPart())
	return points
}

// ClaimOrder 抢单
// 乐观锁写入成功即为赢家；上一认领过期的订单可被直接重抢，
// 过期认领在同一事务内标记为 expired
func (s *ClaimService) ClaimOrder(ctx context.Context, tenantID, orderID uint, staffID uint) (*ClaimResult, error) {
	staff, err := s.staffRepo.GetByID(tenantID, staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	if !staff.IsActive {
		return nil, ErrStaffInactive
	}

	order, err := s.orderRepo.GetByID(tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending && order.Status != constants.OrderStatusPreparing {
		return nil, ErrOrderNotClaimable
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.expireMinutes) * time.Minute)
	responseSeconds := int(now.Sub(order.CreatedAt).Seconds())
	if responseSeconds < 0 {
		responseSeconds = 0
	}
	points := CalculatePoints(responseSeconds, order.Subtotal.Decimal)

	var claim *models.OrderClaim
	won := false
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.WithTx(tx).TryClaim(tenantID, orderID, staffID, staff.Name, expiresAt, now)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		won = true

		// 被重抢的过期认领在此一并归档
		if prev, err := s.claimRepo.WithTx(tx).GetActiveByOrder(tenantID, orderID); err != nil {
			return err
		} else if prev != nil {
			if err := s.claimRepo.WithTx(tx).Updates(prev.ID, map[string]interface{}{
				"status": constants.ClaimStatusExpired,
			}); err != nil {
				return err
			}
		}

		claim = &models.OrderClaim{
			TenantID:            tenantID,
			OrderID:             orderID,
			StaffID:             staffID,
			StaffName:           staff.Name,
			Status:              constants.ClaimStatusClaimed,
			ResponseTimeSeconds: responseSeconds,
			Points:              points,
			ExpiresAt:           expiresAt,
		}
		items := make([]models.OrderClaimItem, 0, len(order.Items))
		for i := range order.Items {
			oi := &order.Items[i]
			items = append(items, models.OrderClaimItem{
				OrderItemID:  oi.ID,
				Name:         oi.Name,
				Quantity:     oi.Quantity,
				HighPriority: oi.HighPriority,
			})
		}
		return s.claimRepo.WithTx(tx).Create(claim, items)
	})
	if err != nil {
		return nil, err
	}

	if !won {
		current, err := s.orderRepo.GetByID(tenantID, orderID)
		if err != nil {
			return nil, err
		}
		holder := ""
		if current != nil {
			holder = current.ClaimedByName
		}
		return &ClaimResult{
			Success:   false,
			ClaimedBy: holder,
			Message:   fmt.Sprintf("订单已被 %s 认领", holder),
		}, nil
	}

	if err := s.sessionService.RecordAttendant(tenantID, order.SessionID, staff.Ref()); err != nil {
		logger.Warnw("record_attendant_failed", "session_id", order.SessionID, "staff_id", staffID, "error", err)
	}

	if s.broker != nil {
		s.broker.Publish(ctx, stream.Event{
			Topic:     constants.StreamTopicClaim,
			Type:      "order_claimed",
			TenantID:  tenantID,
			TableID:   order.TableID,
			SessionID: order.SessionID,
			OrderID:   orderID,
			Payload:   claim,
		})
	}
	s.notifyService.Notify(ctx, NotifyInput{
		TenantID:     tenantID,
		Type:         constants.NotifyTypeClaimResult,
		Priority:     constants.NotifyPriorityNormal,
		Title:        "订单已被认领",
		Message:      fmt.Sprintf("订单 #%d 由 %s 认领", orderID, staff.Name),
		TableID:      order.TableID,
		SessionID:    order.SessionID,
		OrderID:      orderID,
		AudienceType: constants.NotifyAudienceRole,
		Role:         constants.StaffRoleWaiter,
		DedupeKey:    fmt.Sprintf("claim:%d:%d", orderID, claim.ID),
	})

	logger.Infow("order_claimed", "order_id", orderID, "staff_id", staffID, "response_seconds", responseSeconds, "points", points)
	return &ClaimResult{Success: true, Claim: claim, Points: points}, nil
}

// MarkItemsDelivered 逐项勾选送达
// 认领过期后拒绝继续勾选；重复勾选同一项是幂等空操作；
// 全部送达后认领完成，积分此刻才记入员工累计
func (s *ClaimService) MarkItemsDelivered(ctx context.Context, tenantID, claimID, staffID uint, itemIDs []uint) (*models.OrderClaim, error) {
	claim, err := s.claimRepo.GetByID(tenantID, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}
	if claim.StaffID != staffID {
		return nil, ErrClaimNotOwned
	}
	if claim.Status == constants.ClaimStatusDelivered {
		return nil, ErrClaimCompleted
	}
	now := time.Now()
	if claim.Status == constants.ClaimStatusExpired || claim.ExpiredAt(now) {
		return nil, ErrClaimExpired
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.claimRepo.WithTx(tx).MarkItemsDelivered(claimID, itemIDs, map[string]interface{}{
			"delivered":    true,
			"delivered_at": now,
		}); err != nil {
			return err
		}

		remaining, err := s.claimRepo.WithTx(tx).CountUndelivered(claimID)
		if err != nil {
			return err
		}

		if remaining > 0 {
			if claim.Status == constants.ClaimStatusClaimed {
				return s.claimRepo.WithTx(tx).Updates(claimID, map[string]interface{}{
					"status": constants.ClaimStatusDelivering,
				})
			}
			return nil
		}

		// 全部送达：认领完成，订单转 ready，积分入账
		if err := s.claimRepo.WithTx(tx).Updates(claimID, map[string]interface{}{
			"status": constants.ClaimStatusDelivered,
		}); err != nil {
			return err
		}
		if err := s.orderRepo.WithTx(tx).UpdateStatus(claim.OrderID, constants.OrderStatusReady, nil); err != nil {
			return err
		}
		return s.staffRepo.WithTx(tx).AddPoints(claim.StaffID, claim.Points)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.claimRepo.GetByID(tenantID, claimID)
	if err != nil {
		return nil, err
	}

	if updated != nil && updated.Status == constants.ClaimStatusDelivered && s.broker != nil {
		s.broker.Publish(ctx, stream.Event{
			Topic:    constants.StreamTopicClaim,
			Type:     "claim_delivered",
			TenantID: tenantID,
			OrderID:  claim.OrderID,
			Payload:  updated,
		})
		logger.Infow("claim_delivered", "claim_id", claimID, "order_id", claim.OrderID, "staff_id", staffID, "points", claim.Points)
	}
	return updated, nil
}

// SweepExpired 回收过期认领：订单回到待抢池，认领归档为 expired
// 列表查询本身已按过期时间过滤，清扫只是把惰性判定落库
func (s *ClaimService) SweepExpired(ctx context.Context) (int, error) {
	now := time.Now()
	orders, err := s.orderRepo.ListExpiredClaimed(now)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range orders {
		order := &orders[i]
		err := models.DB.Transaction(func(tx *gorm.DB) error {
			ok, err := s.orderRepo.WithTx(tx).ReleaseClaim(order.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			claim, err := s.claimRepo.WithTx(tx).GetActiveByOrder(order.TenantID, order.ID)
			if err != nil {
				return err
			}
			if claim != nil {
				if err := s.claimRepo.WithTx(tx).Updates(claim.ID, map[string]interface{}{
					"status": constants.ClaimStatusExpired,
				}); err != nil {
					return err
				}
			}
			released++
			return nil
		})
		if err != nil {
			logger.Errorw("claim_sweep_failed", "order_id", order.ID, "error", err)
			continue
		}

		if s.broker != nil {
			s.broker.Publish(ctx, stream.Event{
				Topic:    constants.StreamTopicClaim,
				Type:     "claim_expired",
				TenantID: order.TenantID,
				OrderID:  order.ID,
			})
		}
	}
	if released > 0 {
		logger.Infow("claim_sweep_done", "released", released)
	}
	return released, nil
}

// GetClaim 获取认领
func (s *ClaimService) GetClaim(tenantID, id uint) (*models.OrderClaim, error) {
	claim, err := s.claimRepo.GetByID(tenantID, id)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}
	return claim, nil
}

// ListClaims 查询认领记录
func (s *ClaimService) ListClaims(filter repository.ClaimListFilter) ([]models.OrderClaim, int64, error) {
	return s.claimRepo.List(filter)
}

// Leaderboard 抢单积分榜
func (s *ClaimService) Leaderboard(tenantID uint, limit int) ([]repository.LeaderboardEntry, error) {
	return s.claimRepo.Leaderboard(tenantID, limit)
}
