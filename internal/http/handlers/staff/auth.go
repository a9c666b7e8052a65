package staff

import (
	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 员工登录请求
type LoginRequest struct {
	TenantID uint   `json:"tenant_id" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 员工手机号登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	staff, token, expiresAt, err := h.AuthService.Login(req.TenantID, req.Phone, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"staff": gin.H{
			"id":     staff.ID,
			"name":   staff.Name,
			"role":   staff.Role,
			"points": staff.Points,
		},
	})
}
