package repository

import (
	"errors"

	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// TableRepository 桌台数据访问接口
type TableRepository interface {
	Create(table *models.DiningTable) error
	GetByID(tenantID, id uint) (*models.DiningTable, error)
	GetByCode(code string) (*models.DiningTable, error)
	List(tenantID uint, onlyActive bool) ([]models.DiningTable, error)
	Updates(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormTableRepository
}

// GormTableRepository GORM 实现
type GormTableRepository struct {
	db *gorm.DB
}

// NewTableRepository 创建桌台仓库
func NewTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTableRepository) WithTx(tx *gorm.DB) *GormTableRepository {
	if tx == nil {
		return r
	}
	return &GormTableRepository{db: tx}
}

// Create 创建桌台
func (r *GormTableRepository) Create(table *models.DiningTable) error {
	return r.db.Create(table).Error
}

// GetByID 根据 ID 获取桌台
func (r *GormTableRepository) GetByID(tenantID, id uint) (*models.DiningTable, error) {
	var table models.DiningTable
	if err := r.db.Where("tenant_id = ?", tenantID).First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &table, nil
}

// GetByCode 根据桌台码获取桌台（扫码开台入口，无租户先验）
func (r *GormTableRepository) GetByCode(code string) (*models.DiningTable, error) {
	var table models.DiningTable
	if err := r.db.Where("code = ?", code).First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &table, nil
}

// List 查询桌台列表
func (r *GormTableRepository) List(tenantID uint, onlyActive bool) ([]models.DiningTable, error) {
	query := r.db.Where("tenant_id = ?", tenantID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var tables []models.DiningTable
	err := query.Order("id ASC").Find(&tables).Error
	return tables, err
}

// Updates 按字段更新桌台
func (r *GormTableRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.DiningTable{}).Where("id = ?", id).Updates(updates).Error
}
