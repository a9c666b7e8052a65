package public

import (
	"strconv"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OpenSessionRequest 扫码开台请求
type OpenSessionRequest struct {
	TableCode     string `json:"table_code" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone"`
}

// OpenSession 顾客扫码开台
// 桌台已有未关闭会话时直接返回该会话（拼桌加入）
func (h *Handler) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	session, err := h.SessionService.OpenSession(c.Request.Context(), service.OpenSessionInput{
		TableCode:     req.TableCode,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, session)
}

// GetSession 查询会话详情（含订单与账单预览）
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}
	view, err := h.SessionService.GetSessionView(session.TenantID, session.ID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// RequestBill 顾客请求结账
func (h *Handler) RequestBill(c *gin.Context) {
	session, ok := h.resolveSession(c)
	if !ok {
		return
	}
	bill, err := h.SessionService.RequestBill(c.Request.Context(), session.TenantID, session.ID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, bill)
}

// resolveSession 解析路径中的会话并确定租户归属
// 顾客端没有登录态，租户从会话本身读取
func (h *Handler) resolveSession(c *gin.Context) (*models.TableSession, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return nil, false
	}
	session, err := h.SessionRepo.Get(uint(id))
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return nil, false
	}
	if session == nil {
		shared.RespondError(c, response.CodeNotFound, "error.session_not_found", nil)
		return nil, false
	}
	return session, true
}
