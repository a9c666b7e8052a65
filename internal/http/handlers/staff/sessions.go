package staff

import (
	"strconv"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest 员工代开台请求
type OpenSessionRequest struct {
	TableID       uint   `json:"table_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
}

// OpenSession 员工代顾客开台
func (h *Handler) OpenSession(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	ref, ok := getStaffRef(c)
	if !ok {
		return
	}
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	session, err := h.SessionService.OpenSession(c.Request.Context(), service.OpenSessionInput{
		TenantID:      tenantID,
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		OpenedBy:      &ref,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

// ListSessions 会话列表
func (h *Handler) ListSessions(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	sessions, total, err := h.SessionService.ListSessions(repository.SessionListFilter{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		Status:   c.Query("status"),
		OnlyOpen: c.Query("only_open") == "true",
		Phone:    c.Query("phone"),
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, sessions, response.NewPagination(page, pageSize, total))
}

// GetSession 会话详情
func (h *Handler) GetSession(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	view, err := h.SessionService.GetSessionView(tenantID, id)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// StartPaying 标记顾客开始支付
func (h *Handler) StartPaying(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	ref, ok := getStaffRef(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.SessionService.StartPaying(c.Request.Context(), tenantID, id, ref); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// CloseSessionRequest 关台请求
type CloseSessionRequest struct {
	AmountPaid string `json:"amount_paid" binding:"required"`
}

// CloseSession 关台入账
func (h *Handler) CloseSession(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	ref, ok := getStaffRef(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	amount, err := decimal.NewFromString(req.AmountPaid)
	if err != nil || amount.IsNegative() {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	session, err := h.SessionService.CloseSession(c.Request.Context(), tenantID, id, ref, models.NewMoneyFromDecimal(amount))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
