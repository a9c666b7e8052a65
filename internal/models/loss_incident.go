package models

import (
	"time"
)

// LossIncident 损失工单表
// 责任链字段在上报时刻快照，后续不随员工表重取；工单只追加，不删除
type LossIncident struct {
	ID             uint          `gorm:"primarykey" json:"id"`                                     // 主键
	TenantID       uint          `gorm:"index;not null" json:"tenant_id"`                          // 租户ID
	Type           string        `gorm:"index;type:varchar(30);not null" json:"type"`              // 损失类型
	SessionID      uint          `gorm:"index;not null" json:"session_id"`                         // 关联会话
	TableLabel     string        `gorm:"type:varchar(50)" json:"table_label"`                      // 桌号快照
	CustomerName   string        `gorm:"type:varchar(100)" json:"customer_name"`                   // 顾客姓名快照
	CustomerPhone  string        `gorm:"index;type:varchar(32)" json:"customer_phone"`             // 顾客手机号快照
	TotalOrdered   Money         `gorm:"type:decimal(20,2);not null;default:0" json:"total_ordered"` // 会话累计消费
	TotalPaid      Money         `gorm:"type:decimal(20,2);not null;default:0" json:"total_paid"`  // 会话实收
	Amount         Money         `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`      // 损失金额（面向顾客口径）
	Cost           Money         `gorm:"type:decimal(20,2);not null;default:0" json:"cost"`        // 估算成本损失
	Description    string        `gorm:"type:varchar(1000)" json:"description"`                    // 情况说明
	Evidence       StringArray   `gorm:"type:json" json:"evidence,omitempty"`                      // 证据附件路径
	OpenedByID     uint          `gorm:"not null;default:0" json:"opened_by_id"`                   // 开台人ID
	OpenedByName   string        `gorm:"type:varchar(100)" json:"opened_by_name"`                  // 开台人快照
	AttendedBy     StaffRefArray `gorm:"type:json" json:"attended_by"`                             // 服务员工快照
	DeliveredBy    StaffRefArray `gorm:"type:json" json:"delivered_by"`                            // 派送员工快照（可多人）
	LastTouchID    uint          `gorm:"not null;default:0" json:"last_touch_id"`                  // 最后责任人ID
	LastTouchName  string        `gorm:"type:varchar(100)" json:"last_touch_name"`                 // 最后责任人快照
	ReportedByID   uint          `gorm:"not null;default:0" json:"reported_by_id"`                 // 上报人ID
	ReportedByName string        `gorm:"type:varchar(100)" json:"reported_by_name"`                // 上报人快照
	Status         string        `gorm:"index;type:varchar(20);not null;default:'pending'" json:"status"` // 审核状态
	ReviewedByID   *uint         `json:"reviewed_by_id,omitempty"`                                 // 审核人ID
	ReviewedByName string        `gorm:"type:varchar(100)" json:"reviewed_by_name,omitempty"`      // 审核人快照
	ReviewNotes    string        `gorm:"type:varchar(500)" json:"review_notes,omitempty"`          // 审核备注
	ReviewedAt     *time.Time    `json:"reviewed_at,omitempty"`                                    // 审核时间
	Timeline       TimelineArray `gorm:"type:json" json:"timeline"`                                // 事件时间线
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt      time.Time     `json:"updated_at"`                                               // 更新时间
}

// TableName 指定表名
func (LossIncident) TableName() string {
	return "loss_incidents"
}

// BlacklistFlag 拉黑标记留档表
// 推送给外部黑名单服务的 (手机号, 姓名, 工单, 金额) 元组的本地审计记录
type BlacklistFlag struct {
	ID            uint      `gorm:"primarykey" json:"id"`                         // 主键
	TenantID      uint      `gorm:"index;not null" json:"tenant_id"`              // 租户ID
	IncidentID    uint      `gorm:"index;not null" json:"incident_id"`            // 关联损失工单
	CustomerName  string    `gorm:"type:varchar(100)" json:"customer_name"`       // 顾客姓名
	CustomerPhone string    `gorm:"index;type:varchar(32)" json:"customer_phone"` // 顾客手机号
	Amount        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 涉案金额
	Pushed        bool      `gorm:"not null;default:false" json:"pushed"`         // 是否已推送外部服务
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (BlacklistFlag) TableName() string {
	return "blacklist_flags"
}
