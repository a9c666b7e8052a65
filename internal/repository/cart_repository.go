package repository

import (
	"errors"

	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 点餐购物车数据访问接口
// 购物车按 (桌台, 客户端标识) 维度隔离，提交订单后整车清空
type CartRepository interface {
	GetItem(tenantID, tableID uint, clientKey string, productID uint) (*models.CartItem, error)
	ListItems(tenantID, tableID uint, clientKey string) ([]models.CartItem, error)
	Save(item *models.CartItem) error
	DeleteItem(tenantID, tableID uint, clientKey string, productID uint) error
	Clear(tenantID, tableID uint, clientKey string) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetItem 获取购物车中指定菜品行
func (r *GormCartRepository) GetItem(tenantID, tableID uint, clientKey string, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("tenant_id = ? AND table_id = ? AND client_key = ? AND product_id = ?",
		tenantID, tableID, clientKey, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems 列出购物车全部行
func (r *GormCartRepository) ListItems(tenantID, tableID uint, clientKey string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Where("tenant_id = ? AND table_id = ? AND client_key = ?", tenantID, tableID, clientKey).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// Save 新增或保存购物车行
func (r *GormCartRepository) Save(item *models.CartItem) error {
	return r.db.Save(item).Error
}

// DeleteItem 删除购物车指定菜品行
func (r *GormCartRepository) DeleteItem(tenantID, tableID uint, clientKey string, productID uint) error {
	return r.db.Where("tenant_id = ? AND table_id = ? AND client_key = ? AND product_id = ?",
		tenantID, tableID, clientKey, productID).
		Delete(&models.CartItem{}).Error
}

// Clear 清空购物车
func (r *GormCartRepository) Clear(tenantID, tableID uint, clientKey string) error {
	return r.db.Where("tenant_id = ? AND table_id = ? AND client_key = ?", tenantID, tableID, clientKey).
		Delete(&models.CartItem{}).Error
}
