package models

import (
	"time"

	"gorm.io/gorm"
)

// Staff 员工表
type Staff struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                    // 主键
	TenantID     uint           `gorm:"index:idx_staff_tenant_phone;not null" json:"tenant_id"`  // 租户ID
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`                  // 展示名
	Phone        string         `gorm:"index:idx_staff_tenant_phone;type:varchar(32)" json:"phone"` // 登录手机号
	Role         string         `gorm:"type:varchar(20);not null;default:'waiter'" json:"role"`  // 角色（waiter/manager）
	PasswordHash string         `gorm:"type:varchar(200)" json:"-"`                              // 登录密码哈希
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`                  // 是否在职
	Points       int            `gorm:"not null;default:0" json:"points"`                        // 累计积分
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt    time.Time      `json:"updated_at"`                                              // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (Staff) TableName() string {
	return "staff"
}

// Ref 生成责任链留档用的快照引用
func (s *Staff) Ref() StaffRef {
	if s == nil {
		return StaffRef{}
	}
	return StaffRef{ID: s.ID, Name: s.Name}
}
