package service

import (
	"context"
	"fmt"
	"time"

	"github.com/comanda-next/internal/cache"
	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/stream"
)

// NotificationService 通知服务
// 通知是尽力而为的旁路：入库失败、队列不可用都只记日志，
// 绝不把失败传导回触发它的业务操作
type NotificationService struct {
	notifyRepo  repository.NotificationRepository
	queueClient *queue.Client
	broker      *stream.Broker
	dedupeTTL   time.Duration
}

// NewNotificationService 创建通知服务
func NewNotificationService(notifyRepo repository.NotificationRepository, queueClient *queue.Client, broker *stream.Broker, dedupeTTLSeconds int) *NotificationService {
	ttl := time.Duration(dedupeTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NotificationService{
		notifyRepo:  notifyRepo,
		queueClient: queueClient,
		broker:      broker,
		dedupeTTL:   ttl,
	}
}

// NotifyInput 通知输入
type NotifyInput struct {
	TenantID     uint
	Type         string
	Priority     string
	Title        string
	Message      string
	TableID      uint
	SessionID    uint
	OrderID      uint
	AudienceType string
	RecipientID  uint
	Role         string
	DedupeKey    string
}

// Notify 持久化通知并异步分发
// DedupeKey 非空时在去重窗口内只发一次（同一订单的重复提醒等）
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) {
	if input.DedupeKey != "" {
		key := fmt.Sprintf("notify:dedupe:%d:%s", input.TenantID, input.DedupeKey)
		ok, err := cache.SetNX(ctx, key, 1, s.dedupeTTL)
		if err != nil {
			logger.Warnw("notify_dedupe_check_failed", "key", key, "error", err)
		} else if !ok {
			return
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = constants.NotifyPriorityNormal
	}
	audience := input.AudienceType
	if audience == "" {
		audience = constants.NotifyAudienceRole
	}

	notification := &models.Notification{
		TenantID:     input.TenantID,
		Type:         input.Type,
		Priority:     priority,
		Title:        input.Title,
		Message:      input.Message,
		AudienceType: audience,
		Role:         input.Role,
	}
	if input.TableID > 0 {
		notification.TableID = &input.TableID
	}
	if input.SessionID > 0 {
		notification.SessionID = &input.SessionID
	}
	if input.OrderID > 0 {
		notification.OrderID = &input.OrderID
	}
	if input.RecipientID > 0 {
		notification.RecipientID = &input.RecipientID
	}

	if err := s.notifyRepo.Create(notification); err != nil {
		logger.Errorw("notification_persist_failed", "type", input.Type, "tenant_id", input.TenantID, "error", err)
		return
	}

	if s.broker != nil {
		s.broker.Publish(ctx, stream.Event{
			Topic:     constants.StreamTopicNotification,
			Type:      input.Type,
			TenantID:  input.TenantID,
			TableID:   input.TableID,
			SessionID: input.SessionID,
			OrderID:   input.OrderID,
			Payload:   notification,
		})
	}

	if err := s.queueClient.EnqueueNotifyDispatch(queue.NotifyDispatchPayload{
		NotificationID: notification.ID,
		TenantID:       input.TenantID,
	}); err != nil {
		logger.Warnw("notification_enqueue_failed", "notification_id", notification.ID, "error", err)
	}
}

// ListForStaff 查询员工可见的通知
func (s *NotificationService) ListForStaff(filter repository.NotificationListFilter) ([]models.Notification, int64, error) {
	return s.notifyRepo.ListForStaff(filter)
}

// MarkRead 标记通知已读
func (s *NotificationService) MarkRead(tenantID, id uint) error {
	notification, err := s.notifyRepo.GetByID(tenantID, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	return s.notifyRepo.MarkRead(tenantID, id, time.Now())
}
