package constants

// 桌台会话状态常量
const (
	SessionStatusActive        = "active"
	SessionStatusBillRequested = "bill_requested"
	SessionStatusPaying        = "paying"
	SessionStatusClosed        = "closed"
)

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
)

// 认领状态常量
const (
	ClaimStatusClaimed    = "claimed"
	ClaimStatusDelivering = "delivering"
	ClaimStatusDelivered  = "delivered"
	ClaimStatusExpired    = "expired"
)

// 员工角色常量
const (
	StaffRoleWaiter  = "waiter"
	StaffRoleManager = "manager"
)

// 损失工单类型常量
const (
	LossTypeWalkout           = "walkout"
	LossTypeCancelledOrder    = "cancelled_order"
	LossTypeKitchenError      = "kitchen_error"
	LossTypeStaffError        = "staff_error"
	LossTypeCustomerComplaint = "customer_complaint"
	LossTypeOrphanOrder       = "orphan_order"
	LossTypeExpiredProduct    = "expired_product"
	LossTypeSystemError       = "system_error"
	LossTypeOther             = "other"
)

// 损失工单审核状态常量
const (
	LossStatusPending  = "pending"
	LossStatusApproved = "approved"
	LossStatusRejected = "rejected"
)

// 损失工单时间线事件常量
const (
	LossEventReported = "incident_reported"
	LossEventApproved = "incident_approved"
	LossEventRejected = "incident_rejected"
)

// 通知类型常量
const (
	NotifyTypeNewOrder      = "new_order"
	NotifyTypeClaimResult   = "claim_result"
	NotifyTypeBillRequested = "bill_requested"
	NotifyTypeSessionClosed = "session_closed"
	NotifyTypeLossReported  = "loss_reported"
	NotifyTypeLossReviewed  = "loss_reviewed"
)

// 通知优先级常量
const (
	NotifyPriorityLow    = "low"
	NotifyPriorityNormal = "normal"
	NotifyPriorityHigh   = "high"
)

// 通知受众类型常量
const (
	NotifyAudienceStaff = "staff"
	NotifyAudienceRole  = "role"
)

// 异步任务名称常量
const (
	TaskNotifyDispatch   = "notify:dispatch"
	TaskBlacklistFlag    = "loss:blacklist_flag"
	TaskClaimExpireSweep = "claim:expire_sweep"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 支持的语言常量
const (
	LocaleZhCN = "zh-CN"
	LocaleEn   = "en"
)

// 事件流主题常量
const (
	StreamTopicSession      = "session"
	StreamTopicOrder        = "order"
	StreamTopicClaim        = "claim"
	StreamTopicNotification = "notification"
)
