package public

import (
	"strings"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMenu 按桌台码返回菜单（分类 + 上架菜品）
// 顾客端无登录态，租户从桌台码解析
func (h *Handler) GetMenu(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	table, err := h.TableRepo.GetByCode(code)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if table == nil {
		shared.RespondError(c, response.CodeNotFound, "error.table_not_found", nil)
		return
	}

	categories, err := h.ProductRepo.ListCategories(table.TenantID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	products, _, err := h.ProductRepo.List(repository.ProductListFilter{
		TenantID:     table.TenantID,
		OnlyActive:   true,
		WithCategory: true,
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{
		"table":      table,
		"categories": categories,
		"products":   products,
	})
}
