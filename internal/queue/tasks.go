package queue

import (
	"encoding/json"

	"github.com/comanda-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNotifyDispatch 通知分发任务
	TaskNotifyDispatch = constants.TaskNotifyDispatch
	// TaskBlacklistFlag 损失黑名单标记任务
	TaskBlacklistFlag = constants.TaskBlacklistFlag
	// TaskClaimExpireSweep 过期认领清扫任务
	TaskClaimExpireSweep = constants.TaskClaimExpireSweep
)

// NotifyDispatchPayload 通知分发任务载荷
type NotifyDispatchPayload struct {
	NotificationID uint `json:"notification_id"`
	TenantID       uint `json:"tenant_id"`
}

// BlacklistFlagPayload 黑名单标记任务载荷
type BlacklistFlagPayload struct {
	FlagID   uint `json:"flag_id"`
	TenantID uint `json:"tenant_id"`
}

// ClaimExpireSweepPayload 过期认领清扫任务载荷
type ClaimExpireSweepPayload struct {
	TenantID uint `json:"tenant_id"`
}

// NewNotifyDispatchTask 创建通知分发任务
func NewNotifyDispatchTask(payload NotifyDispatchPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotifyDispatch, body), nil
}

// NewBlacklistFlagTask 创建黑名单标记任务
func NewBlacklistFlagTask(payload BlacklistFlagPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBlacklistFlag, body), nil
}

// NewClaimExpireSweepTask 创建过期认领清扫任务
func NewClaimExpireSweepTask(payload ClaimExpireSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClaimExpireSweep, body), nil
}
