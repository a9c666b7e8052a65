package staff

import (
	"strconv"

	"github.com/comanda-next/internal/http/handlers/shared"
	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListNotifications 查询当前员工可见的通知
func (h *Handler) ListNotifications(c *gin.Context) {
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

	notifications, total, err := h.NotificationService.ListForStaff(repository.NotificationListFilter{
		Page:        page,
		PageSize:    pageSize,
		TenantID:    tenantID,
		RecipientID: staffID,
		Role:        shared.GetContextString(c, "staff_role"),
		Type:        c.Query("type"),
		OnlyUnread:  c.Query("only_unread") == "true",
	})
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}

// MarkNotificationRead 标记通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.NotificationService.MarkRead(tenantID, id); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// Leaderboard 抢单积分榜
func (h *Handler) Leaderboard(c *gin.Context) {
	tenantID, ok := getTenantID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.ClaimService.Leaderboard(tenantID, limit)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, entries)
}
