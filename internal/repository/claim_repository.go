package repository

import (
	"errors"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// ClaimRepository 订单认领数据访问接口
type ClaimRepository interface {
	Create(claim *models.OrderClaim, items []models.OrderClaimItem) error
	GetByID(tenantID, id uint) (*models.OrderClaim, error)
	GetActiveByOrder(tenantID, orderID uint) (*models.OrderClaim, error)
	List(filter ClaimListFilter) ([]models.OrderClaim, int64, error)
	Updates(id uint, updates map[string]interface{}) error
	MarkItemsDelivered(claimID uint, itemIDs []uint, updates map[string]interface{}) (int64, error)
	CountUndelivered(claimID uint) (int64, error)
	Leaderboard(tenantID uint, limit int) ([]LeaderboardEntry, error)
	WithTx(tx *gorm.DB) *GormClaimRepository
}

// LeaderboardEntry 抢单积分榜条目
type LeaderboardEntry struct {
	StaffID     uint   `json:"staff_id"`
	StaffName   string `json:"staff_name"`
	TotalPoints int    `json:"total_points"`
	ClaimCount  int    `json:"claim_count"`
}

// GormClaimRepository GORM 实现
type GormClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository 创建认领仓库
func NewClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimRepository) WithTx(tx *gorm.DB) *GormClaimRepository {
	if tx == nil {
		return r
	}
	return &GormClaimRepository{db: tx}
}

// Create 创建认领与派送项
func (r *GormClaimRepository) Create(claim *models.OrderClaim, items []models.OrderClaimItem) error {
	if err := r.db.Create(claim).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ClaimID = claim.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取认领
func (r *GormClaimRepository) GetByID(tenantID, id uint) (*models.OrderClaim, error) {
	var claim models.OrderClaim
	if err := r.db.Preload("Items", priorityItemOrder).Where("tenant_id = ?", tenantID).First(&claim, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// GetActiveByOrder 获取订单当前有效认领（claimed / delivering）
func (r *GormClaimRepository) GetActiveByOrder(tenantID, orderID uint) (*models.OrderClaim, error) {
	var claim models.OrderClaim
	err := r.db.Preload("Items", priorityItemOrder).
		Where("tenant_id = ? AND order_id = ? AND status IN ?",
			tenantID, orderID, []string{constants.ClaimStatusClaimed, constants.ClaimStatusDelivering}).
		Order("id DESC").
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &claim, nil
}

// List 查询认领记录列表
func (r *GormClaimRepository) List(filter ClaimListFilter) ([]models.OrderClaim, int64, error) {
	query := r.db.Model(&models.OrderClaim{}).Where("tenant_id = ?", filter.TenantID)
	if filter.StaffID > 0 {
		query = query.Where("staff_id = ?", filter.StaffID)
	}
	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claims []models.OrderClaim
	query = applyPagination(query.Preload("Items", priorityItemOrder).Order("id DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&claims).Error; err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

// Updates 按字段更新认领
func (r *GormClaimRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.OrderClaim{}).Where("id = ?", id).Updates(updates).Error
}

// MarkItemsDelivered 勾选派送项为已送达，重复勾选不再计数
func (r *GormClaimRepository) MarkItemsDelivered(claimID uint, itemIDs []uint, updates map[string]interface{}) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.OrderClaimItem{}).
		Where("claim_id = ? AND id IN ? AND delivered = ?", claimID, itemIDs, false).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CountUndelivered 统计认领下未送达的派送项数
func (r *GormClaimRepository) CountUndelivered(claimID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.OrderClaimItem{}).
		Where("claim_id = ? AND delivered = ?", claimID, false).
		Count(&count).Error
	return count, err
}

// Leaderboard 统计员工完成派送的积分榜
func (r *GormClaimRepository) Leaderboard(tenantID uint, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []LeaderboardEntry
	err := r.db.Model(&models.OrderClaim{}).
		Select("staff_id, staff_name, SUM(points) AS total_points, COUNT(*) AS claim_count").
		Where("tenant_id = ? AND status = ?", tenantID, constants.ClaimStatusDelivered).
		Group("staff_id, staff_name").
		Order("total_points DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}
