package staff

import (
	"strconv"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ReportLossRequest 上报损失请求
type ReportLossRequest struct {
	Type        string   `json:"type" binding:"required"`
	SessionID   uint     `json:"session_id" binding:"required"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence"`
}

// ReportLoss 上报损失工单
func (h *Handler) ReportLoss(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	ref, ok := getStaffRef(c)
	if !ok {
		return
	}
	var req ReportLossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	incident, err := h.LossService.ReportLoss(c.Request.Context(), service.ReportLossInput{
		TenantID:    tenantID,
		Type:        req.Type,
		SessionID:   req.SessionID,
		Description: req.Description,
		Evidence:    req.Evidence,
		Reporter:    ref,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, incident)
}

// ReviewLossRequest 审核损失工单请求
type ReviewLossRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

// ReviewLoss 审核损失工单（仅经理，结果不可逆）
func (h *Handler) ReviewLoss(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req ReviewLossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	incident, err := h.LossService.ReviewIncident(c.Request.Context(), tenantID, id, staffID, req.Approve, req.Notes)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, incident)
}

// GetLoss 损失工单详情
func (h *Handler) GetLoss(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	incident, err := h.LossService.GetIncident(tenantID, id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, incident)
}

// ListLosses 损失工单列表
func (h *Handler) ListLosses(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	incidents, total, err := h.LossService.ListIncidents(repository.LossListFilter{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Phone:    c.Query("phone"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, incidents, response.NewPagination(page, pageSize, total))
}

// ListBlacklistFlags 拉黑标记留档列表（仅经理）
func (h *Handler) ListBlacklistFlags(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	flags, err := h.LossService.ListBlacklistFlags(tenantID, c.Query("phone"))
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, flags)
}
