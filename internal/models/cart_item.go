package models

import (
	"time"
)

// CartItem 购物车项
// 以（桌台, 客户端标识）为作用域，提交或清空后即丢弃，不做跨端可见保证
type CartItem struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                          // 主键
	TenantID     uint           `gorm:"uniqueIndex:idx_cart_scope_product;not null" json:"tenant_id"`  // 租户ID
	TableID      uint           `gorm:"uniqueIndex:idx_cart_scope_product;not null" json:"table_id"`   // 桌台ID
	ClientKey    string         `gorm:"uniqueIndex:idx_cart_scope_product;type:varchar(64);not null" json:"client_key"` // 浏览端标识
	ProductID    uint           `gorm:"uniqueIndex:idx_cart_scope_product;not null" json:"product_id"` // 菜品ID
	Name         string         `gorm:"type:varchar(200);not null" json:"name"`                        // 菜品名称快照
	CategoryName string         `gorm:"type:varchar(100)" json:"category_name"`                        // 分类名称快照
	Quantity     int            `gorm:"not null" json:"quantity"`                                      // 数量
	UnitPrice    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`       // 单价快照
	HighPriority bool           `gorm:"not null;default:false" json:"high_priority"`                   // 是否优先派送
	CreatedAt    time.Time      `json:"created_at"`                                                    // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal 行小计（单价 × 数量）
func (i *CartItem) LineTotal() Money {
	if i == nil {
		return Money{}
	}
	return NewMoneyFromDecimal(i.UnitPrice.Mul(quantityDecimal(i.Quantity)))
}
