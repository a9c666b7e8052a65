package models

import (
	"time"

	"gorm.io/gorm"
)

// DiningTable 桌台表
// Code 是打印二维码所编码的随机串，顾客扫码后凭此定位桌台
type DiningTable struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                    // 主键
	TenantID  uint           `gorm:"index:idx_table_tenant_label;not null" json:"tenant_id"`  // 租户ID
	Label     string         `gorm:"index:idx_table_tenant_label;type:varchar(50);not null" json:"label"` // 桌号展示名
	Code      string         `gorm:"uniqueIndex;type:varchar(64);not null" json:"code"`       // 扫码识别串
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`                  // 是否启用
	CreatedAt time.Time      `json:"created_at"`                                              // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (DiningTable) TableName() string {
	return "dining_tables"
}
