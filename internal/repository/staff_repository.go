package repository

import (
	"errors"

	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// StaffRepository 员工数据访问接口
type StaffRepository interface {
	Create(staff *models.Staff) error
	GetByID(tenantID, id uint) (*models.Staff, error)
	GetByPhone(tenantID uint, phone string) (*models.Staff, error)
	List(filter StaffListFilter) ([]models.Staff, int64, error)
	Updates(id uint, updates map[string]interface{}) error
	AddPoints(id uint, points int) error
	WithTx(tx *gorm.DB) *GormStaffRepository
}

// GormStaffRepository GORM 实现
type GormStaffRepository struct {
	db *gorm.DB
}

// NewStaffRepository 创建员工仓库
func NewStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStaffRepository) WithTx(tx *gorm.DB) *GormStaffRepository {
	if tx == nil {
		return r
	}
	return &GormStaffRepository{db: tx}
}

// Create 创建员工
func (r *GormStaffRepository) Create(staff *models.Staff) error {
	return r.db.Create(staff).Error
}

// GetByID 根据 ID 获取员工
func (r *GormStaffRepository) GetByID(tenantID, id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.Where("tenant_id = ?", tenantID).First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// GetByPhone 根据手机号获取员工（登录用）
func (r *GormStaffRepository) GetByPhone(tenantID uint, phone string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.Where("tenant_id = ? AND phone = ?", tenantID, phone).First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// List 查询员工列表
func (r *GormStaffRepository) List(filter StaffListFilter) ([]models.Staff, int64, error) {
	query := r.db.Model(&models.Staff{}).Where("tenant_id = ?", filter.TenantID)
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var staff []models.Staff
	query = applyPagination(query.Order("points DESC, id ASC"), filter.Page, filter.PageSize)
	if err := query.Find(&staff).Error; err != nil {
		return nil, 0, err
	}
	return staff, total, nil
}

// Updates 按字段更新员工
func (r *GormStaffRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Staff{}).Where("id = ?", id).Updates(updates).Error
}

// AddPoints 累加员工积分
func (r *GormStaffRepository) AddPoints(id uint, points int) error {
	if points == 0 {
		return nil
	}
	return r.db.Model(&models.Staff{}).Where("id = ?", id).
		UpdateColumn("points", gorm.Expr("points + ?", points)).Error
}
