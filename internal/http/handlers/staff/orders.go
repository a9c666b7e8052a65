package staff

import (
	"strconv"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrders 订单列表：默认返回待认领队列，优先派送项置顶
func (h *Handler) ListOrders(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}

	if c.Query("status") == "" && c.Query("claimed_by") == "" {
		orders, err := h.OrderService.ListUnclaimed(tenantID)
		if err != nil {
			shared.RespondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		response.Success(c, orders)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)
	claimedBy, _ := strconv.ParseUint(c.Query("claimed_by"), 10, 64)

	orders, total, err := h.OrderService.ListOrders(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		TenantID:  tenantID,
		Status:    c.Query("status"),
		ClaimedBy: uint(claimedBy),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrder(tenantID, uint(id))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ClaimOrder 抢单
// 竞争失败返回成功响应 + success=false 的结果体，前端据此提示手慢
func (h *Handler) ClaimOrder(c *gin.Context) {
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

	result, err := h.ClaimService.ClaimOrder(c.Request.Context(), tenantID, uint(id), staffID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, result)
}
