package staff

import (
	"strconv"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListClaims 查询当前员工的认领记录
func (h *Handler) ListClaims(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	claims, total, err := h.ClaimService.ListClaims(repository.ClaimListFilter{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		StaffID:  staffID,
		Status:   c.Query("status"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, claims, response.NewPagination(page, pageSize, total))
}

// GetClaim 认领详情
func (h *Handler) GetClaim(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	claim, err := h.ClaimService.GetClaim(tenantID, uint(id))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// DeliverRequest 勾选送达请求
type DeliverRequest struct {
	ItemIDs []uint `json:"item_ids" binding:"required"`
}

// MarkDelivered 逐项勾选送达，全部送达后认领完成并记分
func (h *Handler) MarkDelivered(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	claim, err := h.ClaimService.MarkItemsDelivered(c.Request.Context(), tenantID, uint(id), staffID, req.ItemIDs)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}
