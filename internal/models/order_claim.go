package models

import (
	"time"
)

// OrderClaim 订单认领表
// ResponseTimeSeconds / Points 在认领成功时刻计算并冻结，不随后续变化重算
type OrderClaim struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                          // 主键
	TenantID            uint      `gorm:"index;not null" json:"tenant_id"`               // 租户ID
	OrderID             uint      `gorm:"index;not null" json:"order_id"`                // 订单ID
	StaffID             uint      `gorm:"index;not null" json:"staff_id"`                // 认领员工ID
	StaffName           string    `gorm:"type:varchar(100)" json:"staff_name"`           // 认领人快照
	Status              string    `gorm:"index;type:varchar(20);not null" json:"status"` // 认领状态
	ResponseTimeSeconds int       `gorm:"not null;default:0" json:"response_time_seconds"` // 下单到认领耗时（秒）
	Points              int       `gorm:"not null;default:0" json:"points"`              // 认领积分
	ExpiresAt           time.Time `gorm:"index;not null" json:"expires_at"`              // 认领过期时间
	CreatedAt           time.Time `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt           time.Time `json:"updated_at"`                                    // 更新时间

	Items []OrderClaimItem `gorm:"foreignKey:ClaimID" json:"items,omitempty"` // 待派送项
}

// TableName 指定表名
func (OrderClaim) TableName() string {
	return "order_claims"
}

// ExpiredAt 判断认领在给定时刻是否已过期（读取时惰性计算，不依赖回写）
func (c *OrderClaim) ExpiredAt(now time.Time) bool {
	if c == nil {
		return false
	}
	if c.Status != "claimed" && c.Status != "delivering" {
		return false
	}
	return now.After(c.ExpiresAt)
}

// OrderClaimItem 认领派送项表；逐项勾选送达，全部送达后认领完成
type OrderClaimItem struct {
	ID           uint       `gorm:"primarykey" json:"id"`                        // 主键
	ClaimID      uint       `gorm:"index;not null" json:"claim_id"`              // 认领ID
	OrderItemID  uint       `gorm:"index;not null" json:"order_item_id"`         // 订单项ID
	Name         string     `gorm:"type:varchar(200);not null" json:"name"`      // 菜品名称快照
	Quantity     int        `gorm:"not null" json:"quantity"`                    // 数量
	HighPriority bool       `gorm:"not null;default:false" json:"high_priority"` // 是否优先派送
	Delivered    bool       `gorm:"not null;default:false" json:"delivered"`     // 是否已送达
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`                      // 送达时间
	CreatedAt    time.Time  `json:"created_at"`                                  // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                  // 更新时间
}

// TableName 指定表名
func (OrderClaimItem) TableName() string {
	return "order_claim_items"
}
