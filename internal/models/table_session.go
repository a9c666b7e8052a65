package models

import (
	"time"
)

// TableSession 桌台会话表
// 一张桌台同一时刻至多一条 active 会话；TotalAmount 只由下单流水线累加，
// 接口层不得直接改写
type TableSession struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                       // 主键
	TenantID      uint       `gorm:"index:idx_session_tenant_table;not null" json:"tenant_id"`   // 租户ID
	TableID       uint       `gorm:"index:idx_session_tenant_table;not null" json:"table_id"`    // 桌台ID
	TableLabel    string     `gorm:"type:varchar(50)" json:"table_label"`                        // 桌号快照
	CustomerName  string     `gorm:"type:varchar(100)" json:"customer_name"`                     // 顾客姓名
	CustomerPhone string     `gorm:"index;type:varchar(32)" json:"customer_phone"`               // 顾客手机号（弱身份键）
	Status        string     `gorm:"index;type:varchar(20);not null" json:"status"`              // 会话状态
	OrderIDs      UintArray  `gorm:"type:json" json:"order_ids"`                                 // 挂载订单ID列表
	TotalAmount   Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`  // 累计消费金额
	TotalPaid     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_paid"`    // 已支付金额
	OpenedByID    uint       `gorm:"not null;default:0" json:"opened_by_id"`                     // 开台员工ID（0 表示顾客自助）
	OpenedByName  string     `gorm:"type:varchar(100)" json:"opened_by_name"`                    // 开台人快照
	AttendedBy    StaffRefArray `gorm:"type:json" json:"attended_by"`                            // 服务过的员工快照
	OpenedAt      time.Time  `gorm:"index;not null" json:"opened_at"`                            // 开台时间
	FirstOrderAt  *time.Time `json:"first_order_at"`                                             // 首单时间
	LastOrderAt   *time.Time `json:"last_order_at"`                                              // 末单时间
	ClosedAt      *time.Time `gorm:"index" json:"closed_at"`                                     // 关台时间
	LastActivityAt time.Time `json:"last_activity_at"`                                           // 最近活动时间
	CreatedAt     time.Time  `json:"created_at"`                                                 // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                                 // 更新时间
}

// TableName 指定表名
func (TableSession) TableName() string {
	return "table_sessions"
}

// IsTerminal 会话是否已终态
func (s *TableSession) IsTerminal() bool {
	return s != nil && s.Status == "closed"
}
