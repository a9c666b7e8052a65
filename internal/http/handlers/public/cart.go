package public

import (
	"strconv"
	"strings"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/models"

	"github.com/gin-gonic/gin"
)

// clientKeyHeader 浏览端标识头：由前端生成并随后续请求携带，
// 购物车按（桌台, 该标识）隔离
const clientKeyHeader = "X-Client-Key"

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	session, clientKey, ok := h.resolveCartScope(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCart(session.TenantID, session.TableID, clientKey)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// UpsertCartItem 写入购物车行：数量归零即删除该行
func (h *Handler) UpsertCartItem(c *gin.Context) {
	session, clientKey, ok := h.resolveCartScope(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	view, err := h.CartService.UpsertItem(session.TenantID, session.TableID, clientKey, req.ProductID, req.Quantity)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	session, clientKey, ok := h.resolveCartScope(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	view, err := h.CartService.RemoveItem(session.TenantID, session.TableID, clientKey, uint(productID))
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// resolveCartScope 解析购物车作用域：会话 + 浏览端标识
func (h *Handler) resolveCartScope(c *gin.Context) (*models.TableSession, string, bool) {
	session, ok := h.resolveSession(c)
	if !ok {
		return nil, "", false
	}
	clientKey := strings.TrimSpace(c.GetHeader(clientKeyHeader))
	if clientKey == "" {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return nil, "", false
	}
	return session, clientKey, true
}
