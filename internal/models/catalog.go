package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 菜品分类表
// 名称用于与高优先派送品类列表做大小写不敏感匹配
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	TenantID  uint      `gorm:"index;not null" json:"tenant_id"`        // 租户ID
	Name      string    `gorm:"type:varchar(100);not null" json:"name"` // 分类名称
	SortOrder int       `gorm:"default:0;index" json:"sort_order"`      // 排序权重
	CreatedAt time.Time `json:"created_at"`                             // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// Product 菜品表（目录服务的只读投影）
type Product struct {
	ID         uint           `gorm:"primarykey" json:"id"`                   // 主键
	TenantID   uint           `gorm:"index;not null" json:"tenant_id"`        // 租户ID
	CategoryID uint           `gorm:"index;not null" json:"category_id"`      // 分类ID
	Name       string         `gorm:"type:varchar(200);not null" json:"name"` // 菜品名称
	Price      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 堂食单价
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"` // 是否上架
	CreatedAt  time.Time      `json:"created_at"`                             // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 关联分类
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
