package service

import "errors"

// 业务错误统一在此声明，handler 层据此映射错误码与文案
var (
	ErrTableNotFound        = errors.New("table not found")
	ErrTableInactive        = errors.New("table inactive")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionClosed        = errors.New("session closed")
	ErrSessionNotActive     = errors.New("session not active")
	ErrSessionHasOpenOrders = errors.New("session has undelivered orders")
	ErrInvalidTransition    = errors.New("invalid session status transition")
	ErrCustomerNameRequired = errors.New("customer name required")

	ErrCartEmpty          = errors.New("cart empty")
	ErrInvalidCartItem    = errors.New("invalid cart item")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductInactive    = errors.New("product inactive")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderCreateFailed  = errors.New("order create failed")
	ErrOrderNotClaimable  = errors.New("order not claimable")

	ErrClaimNotFound   = errors.New("claim not found")
	ErrClaimExpired    = errors.New("claim expired")
	ErrClaimNotOwned   = errors.New("claim belongs to another staff")
	ErrClaimCompleted  = errors.New("claim already completed")

	ErrStaffNotFound    = errors.New("staff not found")
	ErrStaffInactive    = errors.New("staff inactive")
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrManagerRequired  = errors.New("manager role required")
	ErrInvalidStaffInput = errors.New("invalid staff input")
	ErrInvalidStaffRole  = errors.New("invalid staff role")
	ErrPhoneTaken        = errors.New("phone already registered")
	ErrInvalidTableInput = errors.New("invalid table input")

	ErrIncidentNotFound  = errors.New("loss incident not found")
	ErrIncidentFinalized = errors.New("loss incident already reviewed")
	ErrInvalidLossType   = errors.New("invalid loss type")

	ErrNotificationNotFound = errors.New("notification not found")
)
