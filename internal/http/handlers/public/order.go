package public

import (
	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitOrder 把当前购物车提交为一笔订单
func (h *Handler) SubmitOrder(c *gin.Context) {
	session, clientKey, ok := h.resolveCartScope(c)
	if !ok {
		return
	}
	order, err := h.OrderService.SubmitOrder(c.Request.Context(), service.SubmitOrderInput{
		TenantID:  session.TenantID,
		SessionID: session.ID,
		ClientKey: clientKey,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
