package i18n

import (
	"fmt"
	"strings"

	"github.com/comanda-next/internal/constants"

	"github.com/gin-gonic/gin"
)

const defaultLocale = constants.LocaleZhCN

// catalogs 文案目录：按 locale → key 组织，缺失时回落默认语言
var catalogs = map[string]map[string]string{
	constants.LocaleZhCN: {
		"error.bad_request":             "请求参数有误",
		"error.unauthorized":            "请先登录",
		"error.forbidden":               "没有操作权限",
		"error.not_found":               "资源不存在",
		"error.internal":                "服务器开小差了，请稍后再试",
		"error.too_many_requests":       "请求过于频繁，请稍后再试",
		"error.jwt_secret_missing":      "服务端未配置签名密钥",
		"error.auth_header_missing":     "缺少认证信息",
		"error.auth_header_invalid":     "认证信息格式不正确",
		"error.token_invalid":           "登录凭证无效或已过期",
		"error.login_too_many":          "登录尝试过于频繁，请 %d 秒后再试",
		"error.rate_limited":            "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":  "限流服务暂不可用，请稍后再试",
		"error.invalid_credentials":     "手机号或密码错误",
		"error.staff_inactive":          "账号已停用",
		"error.manager_required":        "该操作需要经理权限",
		"error.invalid_staff_role":      "员工角色不合法",
		"error.phone_taken":             "该手机号已被使用",
		"error.table_not_found":         "桌台不存在",
		"error.table_inactive":          "桌台已停用",
		"error.session_not_found":       "会话不存在",
		"error.session_closed":          "会话已关闭",
		"error.session_not_active":      "会话当前不可下单",
		"error.invalid_transition":      "会话状态不允许该操作",
		"error.customer_name_required":  "请填写顾客姓名",
		"error.cart_empty":              "购物车是空的",
		"error.invalid_cart_item":       "购物车数据有误",
		"error.product_not_found":       "菜品不存在",
		"error.product_inactive":        "菜品已下架",
		"error.order_not_found":         "订单不存在",
		"error.order_create_failed":     "下单失败，请重试",
		"error.order_not_claimable":     "订单当前不可认领",
		"error.claim_not_found":         "认领记录不存在",
		"error.claim_expired":           "认领已过期，订单已重新放回待抢池",
		"error.claim_not_owned":         "该订单由他人认领",
		"error.claim_completed":         "该认领已全部送达",
		"error.claim_race_lost":         "手慢了，订单已被认领",
		"error.incident_not_found":      "损失工单不存在",
		"error.incident_finalized":      "损失工单已审核，不可更改",
		"error.invalid_loss_type":       "损失类型不合法",
		"error.notification_not_found":  "通知不存在",
	},
	constants.LocaleEn: {
		"error.bad_request":             "Invalid request parameters",
		"error.unauthorized":            "Please sign in first",
		"error.forbidden":               "Permission denied",
		"error.not_found":               "Resource not found",
		"error.internal":                "Something went wrong, please try again later",
		"error.too_many_requests":       "Too many requests, please slow down",
		"error.jwt_secret_missing":      "Server signing key is not configured",
		"error.auth_header_missing":     "Missing authorization header",
		"error.auth_header_invalid":     "Malformed authorization header",
		"error.token_invalid":           "Invalid or expired token",
		"error.login_too_many":          "Too many login attempts, retry in %d seconds",
		"error.rate_limited":            "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":  "Rate limiter unavailable, please try again later",
		"error.invalid_credentials":     "Invalid phone or password",
		"error.staff_inactive":          "Account disabled",
		"error.manager_required":        "Manager role required",
		"error.invalid_staff_role":      "Invalid staff role",
		"error.phone_taken":             "Phone number already in use",
		"error.table_not_found":         "Table not found",
		"error.table_inactive":          "Table disabled",
		"error.session_not_found":       "Session not found",
		"error.session_closed":          "Session already closed",
		"error.session_not_active":      "Session not accepting orders",
		"error.invalid_transition":      "Operation not allowed in current session status",
		"error.customer_name_required":  "Customer name is required",
		"error.cart_empty":              "Cart is empty",
		"error.invalid_cart_item":       "Invalid cart item",
		"error.product_not_found":       "Product not found",
		"error.product_inactive":        "Product unavailable",
		"error.order_not_found":         "Order not found",
		"error.order_create_failed":     "Failed to submit order, please retry",
		"error.order_not_claimable":     "Order is not claimable",
		"error.claim_not_found":         "Claim not found",
		"error.claim_expired":           "Claim expired, order returned to the pool",
		"error.claim_not_owned":         "Order claimed by another staff member",
		"error.claim_completed":         "All items already delivered",
		"error.claim_race_lost":         "Too slow, order already claimed",
		"error.incident_not_found":      "Loss incident not found",
		"error.incident_finalized":      "Loss incident already reviewed",
		"error.invalid_loss_type":       "Invalid loss type",
		"error.notification_not_found":  "Notification not found",
	},
}

// ResolveLocale 解析请求语言：lang 查询参数优先，其次 Accept-Language
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	if lang := normalizeLocale(c.Query("lang")); lang != "" {
		return lang
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := part
		if idx := strings.Index(tag, ";"); idx >= 0 {
			tag = tag[:idx]
		}
		if lang := normalizeLocale(tag); lang != "" {
			return lang
		}
	}
	return defaultLocale
}

// T 查找文案：目标语言缺失时回落默认语言，再缺失时原样返回 key
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if locale != defaultLocale {
		if msg, ok := catalogs[defaultLocale][key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 查找带占位符的文案并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

func normalizeLocale(tag string) string {
	tag = strings.TrimSpace(strings.ToLower(tag))
	switch {
	case tag == "":
		return ""
	case strings.HasPrefix(tag, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(tag, "en"):
		return constants.LocaleEn
	default:
		return ""
	}
}
