package repository

import (
	"errors"

	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 菜品数据访问接口
type ProductRepository interface {
	GetByID(tenantID, id uint) (*models.Product, error)
	GetActiveByIDs(tenantID uint, ids []uint) ([]models.Product, error)
	List(filter ProductListFilter) ([]models.Product, int64, error)
	ListCategories(tenantID uint) ([]models.Category, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建菜品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetByID 根据 ID 获取菜品
func (r *GormProductRepository) GetByID(tenantID, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").Where("tenant_id = ?", tenantID).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetActiveByIDs 批量获取上架菜品
func (r *GormProductRepository) GetActiveByIDs(tenantID uint, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.Preload("Category").
		Where("tenant_id = ? AND id IN ? AND is_active = ?", tenantID, ids, true).
		Find(&products).Error
	return products, err
}

// List 查询菜品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{}).Where("tenant_id = ?", filter.TenantID)
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithCategory {
		query = query.Preload("Category")
	}
	var products []models.Product
	query = applyPagination(query.Order("id ASC"), filter.Page, filter.PageSize)
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListCategories 查询分类列表
func (r *GormProductRepository) ListCategories(tenantID uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("sort_order ASC, id ASC").
		Find(&categories).Error
	return categories, err
}
