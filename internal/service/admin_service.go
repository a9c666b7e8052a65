package service

import (
	"strings"

	"github.com/comanda-next/internal/authz"
	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminService 门店管理面：员工与桌台维护
type AdminService struct {
	staffRepo repository.StaffRepository
	tableRepo repository.TableRepository
	authz     *authz.Service
}

// NewAdminService 创建管理面服务实例
func NewAdminService(staffRepo repository.StaffRepository, tableRepo repository.TableRepository, authzService *authz.Service) *AdminService {
	return &AdminService{
		staffRepo: staffRepo,
		tableRepo: tableRepo,
		authz:     authzService,
	}
}

// StaffInput 创建/更新员工的输入
type StaffInput struct {
	Name     string
	Phone    string
	Role     string
	Password string
	IsActive *bool
}

// CreateStaff 创建员工并绑定角色
func (s *AdminService) CreateStaff(tenantID uint, input StaffInput) (*models.Staff, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" || input.Password == "" {
		return nil, ErrInvalidStaffInput
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.StaffRoleWaiter
	}
	if role != constants.StaffRoleWaiter && role != constants.StaffRoleManager {
		return nil, ErrInvalidStaffRole
	}

	existing, err := s.staffRepo.GetByPhone(tenantID, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	staff := &models.Staff{
		TenantID:     tenantID,
		Name:         name,
		Phone:        phone,
		Role:         role,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if input.IsActive != nil {
		staff.IsActive = *input.IsActive
	}
	if err := s.staffRepo.Create(staff); err != nil {
		return nil, err
	}

	if s.authz != nil {
		if err := s.authz.AssignStaffRole(staff.ID, staff.Role); err != nil {
			logger.Errorw("assign_staff_role_failed", "staff_id", staff.ID, "role", staff.Role, "error", err)
		}
	}
	return staff, nil
}

// UpdateStaff 更新员工资料；角色变更会同步调整授权绑定
func (s *AdminService) UpdateStaff(tenantID, staffID uint, input StaffInput) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(tenantID, staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" && phone != staff.Phone {
		existing, err := s.staffRepo.GetByPhone(tenantID, phone)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != staff.ID {
			return nil, ErrPhoneTaken
		}
		updates["phone"] = phone
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = string(hash)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	newRole := strings.TrimSpace(input.Role)
	if newRole != "" && newRole != staff.Role {
		if newRole != constants.StaffRoleWaiter && newRole != constants.StaffRoleManager {
			return nil, ErrInvalidStaffRole
		}
		updates["role"] = newRole
	}

	if len(updates) == 0 {
		return staff, nil
	}
	if err := s.staffRepo.Updates(staff.ID, updates); err != nil {
		return nil, err
	}

	if role, ok := updates["role"].(string); ok && s.authz != nil {
		if err := s.authz.RevokeStaffRole(staff.ID, staff.Role); err != nil {
			logger.Errorw("revoke_staff_role_failed", "staff_id", staff.ID, "role", staff.Role, "error", err)
		}
		if err := s.authz.AssignStaffRole(staff.ID, role); err != nil {
			logger.Errorw("assign_staff_role_failed", "staff_id", staff.ID, "role", role, "error", err)
		}
	}
	return s.staffRepo.GetByID(tenantID, staffID)
}

// ListStaff 分页查询员工
func (s *AdminService) ListStaff(filter repository.StaffListFilter) ([]models.Staff, int64, error) {
	return s.staffRepo.List(filter)
}

// GetStaff 查询单个员工
func (s *AdminService) GetStaff(tenantID, staffID uint) (*models.Staff, error) {
	staff, err := s.staffRepo.GetByID(tenantID, staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, ErrStaffNotFound
	}
	return staff, nil
}

// TableInput 创建/更新桌台的输入
type TableInput struct {
	Label    string
	IsActive *bool
}

// CreateTable 创建桌台并生成扫码识别串
func (s *AdminService) CreateTable(tenantID uint, input TableInput) (*models.DiningTable, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, ErrInvalidTableInput
	}
	table := &models.DiningTable{
		TenantID: tenantID,
		Label:    label,
		Code:     uuid.NewString(),
		IsActive: true,
	}
	if input.IsActive != nil {
		table.IsActive = *input.IsActive
	}
	if err := s.tableRepo.Create(table); err != nil {
		return nil, err
	}
	return table, nil
}

// UpdateTable 更新桌台
func (s *AdminService) UpdateTable(tenantID, tableID uint, input TableInput) (*models.DiningTable, error) {
	table, err := s.tableRepo.GetByID(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}

	updates := map[string]interface{}{}
	if label := strings.TrimSpace(input.Label); label != "" {
		updates["label"] = label
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return table, nil
	}
	if err := s.tableRepo.Updates(table.ID, updates); err != nil {
		return nil, err
	}
	return s.tableRepo.GetByID(tenantID, tableID)
}

// RegenerateTableCode 重新生成扫码识别串（旧二维码立即失效）
func (s *AdminService) RegenerateTableCode(tenantID, tableID uint) (*models.DiningTable, error) {
	table, err := s.tableRepo.GetByID(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	if err := s.tableRepo.Updates(table.ID, map[string]interface{}{"code": uuid.NewString()}); err != nil {
		return nil, err
	}
	return s.tableRepo.GetByID(tenantID, tableID)
}

// ListTables 查询桌台列表
func (s *AdminService) ListTables(tenantID uint, onlyActive bool) ([]models.DiningTable, error) {
	return s.tableRepo.List(tenantID, onlyActive)
}
