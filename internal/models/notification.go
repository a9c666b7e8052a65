package models

import (
	"time"
)

// Notification 通知表
// 纯咨询性质：落库即算扇出成功，投递由后台任务尽力而为，失败不回滚业务
type Notification struct {
	ID           uint       `gorm:"primarykey" json:"id"`                            // 主键
	TenantID     uint       `gorm:"index;not null" json:"tenant_id"`                 // 租户ID
	Type         string     `gorm:"index;type:varchar(30);not null" json:"type"`     // 事件类型
	Priority     string     `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"` // 优先级
	Title        string     `gorm:"type:varchar(200)" json:"title"`                  // 标题
	Message      string     `gorm:"type:varchar(500)" json:"message"`                // 内容
	TableID      *uint      `gorm:"index" json:"table_id,omitempty"`                 // 关联桌台
	SessionID    *uint      `gorm:"index" json:"session_id,omitempty"`               // 关联会话
	OrderID      *uint      `gorm:"index" json:"order_id,omitempty"`                 // 关联订单
	AudienceType string     `gorm:"type:varchar(10);not null" json:"audience_type"`  // 受众类型（staff/role）
	RecipientID  *uint      `gorm:"index" json:"recipient_id,omitempty"`             // 指定员工
	Role         string     `gorm:"index;type:varchar(20)" json:"role,omitempty"`    // 广播角色
	Read         bool       `gorm:"not null;default:false" json:"read"`              // 是否已读
	ReadAt       *time.Time `json:"read_at,omitempty"`                               // 已读时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                         // 创建时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
