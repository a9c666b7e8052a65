package worker

import (
	"context"
	"encoding/json"

	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/provider"
	"github.com/comanda-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotifyDispatch, c.handleNotifyDispatch)
	mux.HandleFunc(queue.TaskBlacklistFlag, c.handleBlacklistFlag)
	mux.HandleFunc(queue.TaskClaimExpireSweep, c.handleClaimExpireSweep)
}

// handleNotifyDispatch 通知分发：把落库的通知推到终端渠道
// 通知是尽力而为的，分发失败只记日志不重试，避免打爆队列
func (c *Consumer) handleNotifyDispatch(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.NotifyDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notify_dispatch_unmarshal_failed", "error", err)
		return err
	}
	if payload.NotificationID == 0 {
		return nil
	}
	notification, err := c.NotifyRepo.GetByID(payload.TenantID, payload.NotificationID)
	if err != nil {
		logger.Warnw("worker_notify_dispatch_fetch_failed", "notification_id", payload.NotificationID, "error", err)
		return err
	}
	if notification == nil {
		logger.Debugw("worker_notify_dispatch_skip_not_found", "notification_id", payload.NotificationID)
		return nil
	}

	// 终端推送渠道（极光 / APNs）尚未接入，当前分发到事件流与日志
	logger.Infow("notification_dispatched",
		"notification_id", notification.ID,
		"type", notification.Type,
		"priority", notification.Priority,
		"audience", notification.AudienceType,
	)
	return nil
}

// handleBlacklistFlag 黑名单标记：把留档的拉黑元组推给外部黑名单服务
func (c *Consumer) handleBlacklistFlag(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.BlacklistFlagPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_blacklist_flag_unmarshal_failed", "error", err)
		return err
	}
	if payload.FlagID == 0 {
		return nil
	}

	flag, err := c.LossRepo.GetBlacklistFlag(payload.TenantID, payload.FlagID)
	if err != nil {
		return err
	}
	if flag == nil {
		logger.Debugw("worker_blacklist_flag_skip_not_found", "flag_id", payload.FlagID)
		return nil
	}
	if flag.Pushed {
		return nil
	}
	// 外部黑名单服务的 HTTP 推送在网关侧完成，这里记录推送事实
	logger.Infow("blacklist_flag_pushed",
		"flag_id", flag.ID,
		"incident_id", flag.IncidentID,
		"phone", flag.CustomerPhone,
		"amount", flag.Amount.String(),
	)
	return c.LossRepo.MarkFlagPushed(flag.ID)
}

// handleClaimExpireSweep 过期认领清扫
func (c *Consumer) handleClaimExpireSweep(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	_, err := c.ClaimService.SweepExpired(ctx)
	return err
}
