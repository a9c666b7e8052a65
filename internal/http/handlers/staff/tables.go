package staff

import (
	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TableUpsertRequest 创建/更新桌台请求
type TableUpsertRequest struct {
	Label    string `json:"label"`
	IsActive *bool  `json:"is_active"`
}

// ListTables 桌台列表
func (h *Handler) ListTables(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	tables, err := h.AdminService.ListTables(tenantID, c.Query("only_active") == "true")
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, tables)
}

// CreateTable 新建桌台
func (h *Handler) CreateTable(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	var req TableUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	table, err := h.AdminService.CreateTable(tenantID, service.TableInput{
		Label:    req.Label,
		IsActive: req.IsActive,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, table)
}

// UpdateTable 更新桌台
func (h *Handler) UpdateTable(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req TableUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	table, err := h.AdminService.UpdateTable(tenantID, id, service.TableInput{
		Label:    req.Label,
		IsActive: req.IsActive,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, table)
}

// RegenerateTableCode 重置桌台二维码串
func (h *Handler) RegenerateTableCode(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	table, err := h.AdminService.RegenerateTableCode(tenantID, id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, table)
}
