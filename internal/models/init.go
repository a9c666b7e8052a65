package models

import (
	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultManager 初始化默认门店经理账号
// 每个租户至少需要一名经理才能审核损失工单，首次启动时为默认租户创建
func InitDefaultManager(tenantID uint, phone, password string) error {
	var count int64
	DB.Model(&Staff{}).Where("tenant_id = ? AND role = ?", tenantID, constants.StaffRoleManager).Count(&count)
	if count > 0 {
		return nil
	}

	if phone == "" {
		phone = "10000000000"
	}
	if password == "" {
		password = "manager123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	manager := Staff{
		TenantID:     tenantID,
		Name:         "店长",
		Phone:        phone,
		Role:         constants.StaffRoleManager,
		PasswordHash: string(hash),
		IsActive:     true,
	}

	if err := DB.Create(&manager).Error; err != nil {
		return err
	}

	if password == "manager123" {
		logger.Warnw("default_manager_created_with_default_password", "phone", phone, "password", password)
		logger.Warnw("default_manager_password_change_required", "phone", phone)
	} else {
		logger.Warnw("default_manager_created", "phone", phone, "password_hidden", true)
	}

	return nil
}
