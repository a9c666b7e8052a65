package shared

import (
	"errors"

	"github.com/comanda-next/internal/http/response"
	"github.com/comanda-next/internal/i18n"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// serviceErrorKeys 业务错误到文案键与状态码的映射
var serviceErrorKeys = []struct {
	err  error
	code int
	key  string
}{
	{service.ErrTableNotFound, response.CodeNotFound, "error.table_not_found"},
	{service.ErrTableInactive, response.CodeBadRequest, "error.table_inactive"},
	{service.ErrSessionNotFound, response.CodeNotFound, "error.session_not_found"},
	{service.ErrSessionClosed, response.CodeConflict, "error.session_closed"},
	{service.ErrSessionNotActive, response.CodeConflict, "error.session_not_active"},
	{service.ErrInvalidTransition, response.CodeConflict, "error.invalid_transition"},
	{service.ErrCustomerNameRequired, response.CodeBadRequest, "error.customer_name_required"},
	{service.ErrCartEmpty, response.CodeBadRequest, "error.cart_empty"},
	{service.ErrInvalidCartItem, response.CodeBadRequest, "error.invalid_cart_item"},
	{service.ErrProductNotFound, response.CodeNotFound, "error.product_not_found"},
	{service.ErrProductInactive, response.CodeBadRequest, "error.product_inactive"},
	{service.ErrOrderNotFound, response.CodeNotFound, "error.order_not_found"},
	{service.ErrOrderCreateFailed, response.CodeInternal, "error.order_create_failed"},
	{service.ErrOrderNotClaimable, response.CodeConflict, "error.order_not_claimable"},
	{service.ErrClaimNotFound, response.CodeNotFound, "error.claim_not_found"},
	{service.ErrClaimExpired, response.CodeConflict, "error.claim_expired"},
	{service.ErrClaimNotOwned, response.CodeForbidden, "error.claim_not_owned"},
	{service.ErrClaimCompleted, response.CodeConflict, "error.claim_completed"},
	{service.ErrStaffNotFound, response.CodeNotFound, "error.not_found"},
	{service.ErrStaffInactive, response.CodeForbidden, "error.staff_inactive"},
	{service.ErrInvalidCredentials, response.CodeUnauthorized, "error.invalid_credentials"},
	{service.ErrManagerRequired, response.CodeForbidden, "error.manager_required"},
	{service.ErrInvalidStaffInput, response.CodeBadRequest, "error.bad_request"},
	{service.ErrInvalidStaffRole, response.CodeBadRequest, "error.invalid_staff_role"},
	{service.ErrPhoneTaken, response.CodeConflict, "error.phone_taken"},
	{service.ErrInvalidTableInput, response.CodeBadRequest, "error.bad_request"},
	{service.ErrIncidentNotFound, response.CodeNotFound, "error.incident_not_found"},
	{service.ErrIncidentFinalized, response.CodeConflict, "error.incident_finalized"},
	{service.ErrInvalidLossType, response.CodeBadRequest, "error.invalid_loss_type"},
	{service.ErrNotificationNotFound, response.CodeNotFound, "error.notification_not_found"},
}

// RespondServiceError 把业务错误翻译成统一响应，未识别的错误按 500 处理。
func RespondServiceError(c *gin.Context, err error) {
	for _, m := range serviceErrorKeys {
		if errors.Is(err, m.err) {
			RespondError(c, m.code, m.key, nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, "error.internal", err)
}
