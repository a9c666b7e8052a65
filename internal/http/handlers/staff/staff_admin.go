package staff

import (
	"strconv"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
)

// StaffUpsertRequest 创建/更新员工请求
type StaffUpsertRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Password string `json:"password"`
	IsActive *bool  `json:"is_active"`
}

// ListStaff 员工列表（经理）
func (h *Handler) ListStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	list, total, err := h.AdminService.ListStaff(repository.StaffListFilter{
		Page:       page,
		PageSize:   pageSize,
		TenantID:   tenantID,
		Role:       c.Query("role"),
		OnlyActive: c.Query("only_active") == "true",
		Search:     c.Query("search"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, list, response.NewPagination(page, pageSize, total))
}

// GetStaff 员工详情
func (h *Handler) GetStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	staff, err := h.AdminService.GetStaff(tenantID, id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, staff)
}

// CreateStaff 新建员工账号
func (h *Handler) CreateStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	var req StaffUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	staff, err := h.AdminService.CreateStaff(tenantID, service.StaffInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, staff)
}

// UpdateStaff 更新员工资料
func (h *Handler) UpdateStaff(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req StaffUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	staff, err := h.AdminService.UpdateStaff(tenantID, id, service.StaffInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
		IsActive: req.IsActive,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, staff)
}
