package repository

import (
	"errors"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"

	"gorm.io/gorm"
)

// SessionRepository 桌台会话数据访问接口
type SessionRepository interface {
	Create(session *models.TableSession) error
	Get(id uint) (*models.TableSession, error)
	GetByID(tenantID, id uint) (*models.TableSession, error)
	GetOpenByTable(tenantID, tableID uint) (*models.TableSession, error)
	List(filter SessionListFilter) ([]models.TableSession, int64, error)
	Updates(id uint, updates map[string]interface{}) error
	Save(session *models.TableSession) error
	WithTx(tx *gorm.DB) *GormSessionRepository
}

// GormSessionRepository GORM 实现
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 创建会话仓库
func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSessionRepository) WithTx(tx *gorm.DB) *GormSessionRepository {
	if tx == nil {
		return r
	}
	return &GormSessionRepository{db: tx}
}

// Create 创建会话
func (r *GormSessionRepository) Create(session *models.TableSession) error {
	return r.db.Create(session).Error
}

// Get 根据 ID 获取会话（顾客端入口，无租户先验）
func (r *GormSessionRepository) Get(id uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := r.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetByID 根据 ID 获取会话
func (r *GormSessionRepository) GetByID(tenantID, id uint) (*models.TableSession, error) {
	var session models.TableSession
	if err := r.db.Where("tenant_id = ?", tenantID).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// GetOpenByTable 获取指定桌台当前未关闭的会话
func (r *GormSessionRepository) GetOpenByTable(tenantID, tableID uint) (*models.TableSession, error) {
	var session models.TableSession
	err := r.db.Where("tenant_id = ? AND table_id = ? AND status <> ?",
		tenantID, tableID, constants.SessionStatusClosed).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// List 查询会话列表
func (r *GormSessionRepository) List(filter SessionListFilter) ([]models.TableSession, int64, error) {
	query := r.db.Model(&models.TableSession{}).Where("tenant_id = ?", filter.TenantID)
	if filter.TableID > 0 {
		query = query.Where("table_id = ?", filter.TableID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OnlyOpen {
		query = query.Where("status <> ?", constants.SessionStatusClosed)
	}
	if filter.Phone != "" {
		query = query.Where("customer_phone = ?", filter.Phone)
	}
	if filter.OpenedFrom != nil {
		query = query.Where("opened_at >= ?", *filter.OpenedFrom)
	}
	if filter.OpenedTo != nil {
		query = query.Where("opened_at <= ?", *filter.OpenedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []models.TableSession
	query = applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// Updates 按字段更新会话
func (r *GormSessionRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.TableSession{}).Where("id = ?", id).Updates(updates).Error
}

// Save 保存整条会话记录
func (r *GormSessionRepository) Save(session *models.TableSession) error {
	return r.db.Save(session).Error
}
