package repository

import (
	"errors"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(tenantID, id uint) (*models.Order, error)
	ListBySession(tenantID, sessionID uint) ([]models.Order, error)
	ListUnclaimed(tenantID uint, now time.Time) ([]models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	TryClaim(tenantID, orderID, staffID uint, staffName string, expiresAt, now time.Time) (bool, error)
	ReleaseClaim(orderID uint, now time.Time) (bool, error)
	ListExpiredClaimed(now time.Time) ([]models.Order, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// claimableStatuses 可参与认领竞争的订单状态：
// 未认领的 pending，以及认领已过期但尚未被清扫回写的 preparing
var claimableStatuses = []string{constants.OrderStatusPending, constants.OrderStatusPreparing}

// priorityItemOrder 明细项排序：优先派送项置顶，其余按录入先后稳定排列
func priorityItemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("high_priority DESC, id ASC")
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(tenantID, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items", priorityItemOrder).Where("tenant_id = ?", tenantID).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListBySession 查询会话下全部订单
func (r *GormOrderRepository) ListBySession(tenantID, sessionID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items", priorityItemOrder).
		Where("tenant_id = ? AND session_id = ?", tenantID, sessionID).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// ListUnclaimed 查询当前可抢的订单，含优先派送项的置顶，其余按提交先后
// 有效认领过期后订单自动重新入列，无需等待后台清扫
func (r *GormOrderRepository) ListUnclaimed(tenantID uint, now time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items", priorityItemOrder).
		Where("tenant_id = ? AND status IN ?", tenantID, claimableStatuses).
		Where("claimed_by IS NULL OR claim_expires_at < ?", now).
		Order("has_high_priority DESC, id ASC").
		Find(&orders).Error
	return orders, err
}

// List 查询订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("tenant_id = ?", filter.TenantID)
	if filter.SessionID > 0 {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.TableID > 0 {
		query = query.Where("table_id = ?", filter.TableID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ClaimedBy > 0 {
		query = query.Where("claimed_by = ?", filter.ClaimedBy)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query.Preload("Items", priorityItemOrder).Order("id DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TryClaim 条件更新实现的认领乐观锁：
// 仅当订单无人认领、或上一认领已过期时写入新认领人，
// RowsAffected == 0 表示竞争失败，调用方据此返回抢单失败
func (r *GormOrderRepository) TryClaim(tenantID, orderID, staffID uint, staffName string, expiresAt, now time.Time) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("tenant_id = ? AND id = ? AND status IN ?", tenantID, orderID, claimableStatuses).
		Where("claimed_by IS NULL OR claim_expires_at < ?", now).
		Updates(map[string]interface{}{
			"claimed_by":       staffID,
			"claimed_by_name":  staffName,
			"claim_expires_at": expiresAt,
			"status":           constants.OrderStatusPreparing,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseClaim 释放过期认领，订单回到待抢状态
func (r *GormOrderRepository) ReleaseClaim(orderID uint, now time.Time) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND claimed_by IS NOT NULL AND claim_expires_at < ?", orderID, now).
		Updates(map[string]interface{}{
			"claimed_by":       nil,
			"claimed_by_name":  "",
			"claim_expires_at": nil,
			"status":           constants.OrderStatusPending,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListExpiredClaimed 查询认领已过期但尚未释放的订单，供后台清扫
func (r *GormOrderRepository) ListExpiredClaimed(now time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.
		Where("claimed_by IS NOT NULL AND claim_expires_at < ?", now).
		Where("status IN ?", []string{constants.OrderStatusPreparing}).
		Find(&orders).Error
	return orders, err
}

// UpdateStatus 更新订单状态与附加字段
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}
