package repository

import (
	"errors"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByID(tenantID, id uint) (*models.Notification, error)
	ListForStaff(filter NotificationListFilter) ([]models.Notification, int64, error)
	MarkRead(tenantID, id uint, now time.Time) error
	WithTx(tx *gorm.DB) *GormNotificationRepository
}

// GormNotificationRepository GORM 实现
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormNotificationRepository) WithTx(tx *gorm.DB) *GormNotificationRepository {
	if tx == nil {
		return r
	}
	return &GormNotificationRepository{db: tx}
}

// Create 创建通知
func (r *GormNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// GetByID 根据 ID 获取通知
func (r *GormNotificationRepository) GetByID(tenantID, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.Where("tenant_id = ?", tenantID).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

// ListForStaff 查询面向某员工可见的通知：
// 指定该员工为收件人的定向通知，加上该员工角色的广播通知
func (r *GormNotificationRepository) ListForStaff(filter NotificationListFilter) ([]models.Notification, int64, error) {
	query := r.db.Model(&models.Notification{}).Where("tenant_id = ?", filter.TenantID)
	if filter.RecipientID > 0 || filter.Role != "" {
		query = query.Where(
			r.db.Where("audience_type = ? AND recipient_id = ?", constants.NotifyAudienceStaff, filter.RecipientID).
				Or("audience_type = ? AND role = ?", constants.NotifyAudienceRole, filter.Role),
		)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OnlyUnread {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	query = applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead 标记通知已读
func (r *GormNotificationRepository) MarkRead(tenantID, id uint, now time.Time) error {
	return r.db.Model(&models.Notification{}).
		Where("tenant_id = ? AND id = ? AND read = ?", tenantID, id, false).
		Updates(map[string]interface{}{"read": true, "read_at": now}).Error
}
