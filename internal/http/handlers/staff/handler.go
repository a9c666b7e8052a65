package staff

import (
	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 员工端处理器
type Handler struct {
	*provider.Container
}

// New 创建员工端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// getStaffID 读取登录员工 ID
func getStaffID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, "staff_id")
}

// getTenantID 读取登录员工所属租户
func getTenantID(c *gin.Context) (uint, bool) {
	return shared.GetContextUint(c, "tenant_id")
}

// getStaffRef 读取登录员工快照
func getStaffRef(c *gin.Context) (models.StaffRef, bool) {
	id, ok := getStaffID(c)
	if !ok {
		return models.StaffRef{}, false
	}
	return models.StaffRef{
		ID:   id,
		Name: shared.GetContextString(c, "staff_name"),
	}, true
}
