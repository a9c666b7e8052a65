package repository

import "time"

// SessionListFilter 查询桌台会话列表的过滤条件
type SessionListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	TableID    uint
	Status     string
	OnlyOpen   bool
	Phone      string
	OpenedFrom *time.Time
	OpenedTo   *time.Time
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	TenantID    uint
	SessionID   uint
	TableID     uint
	Status      string
	Unclaimed   bool
	ClaimedBy   uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ClaimListFilter 查询抢单记录列表的过滤条件
type ClaimListFilter struct {
	Page     int
	PageSize int
	TenantID uint
	StaffID  uint
	OrderID  uint
	Status   string
	From     *time.Time
	To       *time.Time
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page        int
	PageSize    int
	TenantID    uint
	RecipientID uint
	Role        string
	Type        string
	OnlyUnread  bool
}

// LossListFilter 查询损失工单列表的过滤条件
type LossListFilter struct {
	Page        int
	PageSize    int
	TenantID    uint
	Type        string
	Status      string
	Phone       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// StaffListFilter 查询员工列表的过滤条件
type StaffListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	Role       string
	OnlyActive bool
	Search     string
}

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	TenantID     uint
	CategoryID   uint
	Search       string
	OnlyActive   bool
	WithCategory bool
}
