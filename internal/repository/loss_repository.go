package repository

import (
	"errors"

	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// LossRepository 损失工单数据访问接口
type LossRepository interface {
	Create(incident *models.LossIncident) error
	GetByID(tenantID, id uint) (*models.LossIncident, error)
	List(filter LossListFilter) ([]models.LossIncident, int64, error)
	Save(incident *models.LossIncident) error
	SumApprovedByPhone(tenantID uint, phone string) (models.Money, error)
	CreateBlacklistFlag(flag *models.BlacklistFlag) error
	GetBlacklistFlag(tenantID, id uint) (*models.BlacklistFlag, error)
	MarkFlagPushed(id uint) error
	ListBlacklistFlags(tenantID uint, phone string) ([]models.BlacklistFlag, error)
	WithTx(tx *gorm.DB) *GormLossRepository
}

// GormLossRepository GORM 实现
type GormLossRepository struct {
	db *gorm.DB
}

// NewLossRepository 创建损失工单仓库
func NewLossRepository(db *gorm.DB) *GormLossRepository {
	return &GormLossRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLossRepository) WithTx(tx *gorm.DB) *GormLossRepository {
	if tx == nil {
		return r
	}
	return &GormLossRepository{db: tx}
}

// Create 创建损失工单
func (r *GormLossRepository) Create(incident *models.LossIncident) error {
	return r.db.Create(incident).Error
}

// GetByID 根据 ID 获取损失工单
func (r *GormLossRepository) GetByID(tenantID, id uint) (*models.LossIncident, error) {
	var incident models.LossIncident
	if err := r.db.Where("tenant_id = ?", tenantID).First(&incident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &incident, nil
}

// List 查询损失工单列表
func (r *GormLossRepository) List(filter LossListFilter) ([]models.LossIncident, int64, error) {
	query := r.db.Model(&models.LossIncident{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Phone != "" {
		query = query.Where("customer_phone = ?", filter.Phone)
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

	var incidents []models.LossIncident
	query = applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&incidents).Error; err != nil {
		return nil, 0, err
	}
	return incidents, total, nil
}

// Save 保存整条工单记录（时间线追加后整体回写）
func (r *GormLossRepository) Save(incident *models.LossIncident) error {
	return r.db.Save(incident).Error
}

// SumApprovedByPhone 统计同一手机号审核通过的累计损失金额
func (r *GormLossRepository) SumApprovedByPhone(tenantID uint, phone string) (models.Money, error) {
	if phone == "" {
		return models.Money{}, nil
	}
	var row struct {
		Total models.Money
	}
	err := r.db.Model(&models.LossIncident{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND customer_phone = ? AND status = ?", tenantID, phone, "approved").
		Scan(&row).Error
	return row.Total, err
}

// CreateBlacklistFlag 创建拉黑标记留档
func (r *GormLossRepository) CreateBlacklistFlag(flag *models.BlacklistFlag) error {
	return r.db.Create(flag).Error
}

// GetBlacklistFlag 获取拉黑标记留档
func (r *GormLossRepository) GetBlacklistFlag(tenantID, id uint) (*models.BlacklistFlag, error) {
	var flag models.BlacklistFlag
	if err := r.db.Where("tenant_id = ?", tenantID).First(&flag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

// MarkFlagPushed 标记拉黑元组已推送外部服务
func (r *GormLossRepository) MarkFlagPushed(id uint) error {
	return r.db.Model(&models.BlacklistFlag{}).Where("id = ?", id).
		Update("pushed", true).Error
}

// ListBlacklistFlags 查询拉黑标记留档
func (r *GormLossRepository) ListBlacklistFlags(tenantID uint, phone string) ([]models.BlacklistFlag, error) {
	query := r.db.Where("tenant_id = ?", tenantID)
	if phone != "" {
		query = query.Where("customer_phone = ?", phone)
	}
	var flags []models.BlacklistFlag
	err := query.Order("id DESC").Find(&flags).Error
	return flags, err
}
