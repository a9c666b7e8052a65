package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 顾客身份在提交时从会话冗余拷贝，保证会话变更后账目仍可审计；
// ClaimedBy / ClaimExpiresAt 是认领仲裁的乐观锁列：条件更新
// （claimed_by IS NULL 或已过期）保证同一订单至多一条有效认领
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                      // 主键
	TenantID       uint           `gorm:"index;not null" json:"tenant_id"`                           // 租户ID
	SessionID      uint           `gorm:"index;not null" json:"session_id"`                          // 所属会话ID
	TableID        uint           `gorm:"index;not null" json:"table_id"`                            // 桌台ID
	TableLabel     string         `gorm:"type:varchar(50)" json:"table_label"`                       // 桌号快照
	CustomerName   string         `gorm:"type:varchar(100)" json:"customer_name"`                    // 顾客姓名快照
	CustomerPhone  string         `gorm:"type:varchar(32)" json:"customer_phone"`                    // 顾客手机号快照
	Status         string         `gorm:"index;type:varchar(20);not null" json:"status"`             // 订单状态
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`     // 小计（服务费结账时另算）
	HasHighPriority bool          `gorm:"not null;default:false" json:"has_high_priority"`           // 含优先派送项（待抢列表置顶用）
	ClaimedBy      *uint          `gorm:"index" json:"claimed_by,omitempty"`                         // 认领员工ID（乐观锁列）
	ClaimedByName  string         `gorm:"type:varchar(100)" json:"claimed_by_name,omitempty"`        // 认领人快照
	ClaimExpiresAt *time.Time     `json:"claim_expires_at,omitempty"`                                // 认领过期时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单项表；订单创建后不可变
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                   // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                         // 订单ID
	ProductID    uint      `gorm:"index;not null" json:"product_id"`                       // 菜品ID
	Name         string    `gorm:"type:varchar(200);not null" json:"name"`                 // 菜品名称快照
	CategoryName string    `gorm:"type:varchar(100)" json:"category_name"`                 // 分类名称快照
	Quantity     int       `gorm:"not null" json:"quantity"`                               // 数量
	UnitPrice    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价快照
	LineTotal    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"` // 行小计
	HighPriority bool      `gorm:"not null;default:false" json:"high_priority"`            // 是否优先派送（饮品类）
	CreatedAt    time.Time `json:"created_at"`                                             // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
