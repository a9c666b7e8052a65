package service

import (
	"strings"

	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService 点餐购物车服务
// 购物车只是提交前的本地草稿：价格、品类在加购时快照，
// 提交订单时整车转为不可变订单项
type CartService struct {
	cartRepo               repository.CartRepository
	productRepo            repository.ProductRepository
	highPriorityCategories []string
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, highPriorityCategories []string) *CartService {
	return &CartService{
		cartRepo:               cartRepo,
		productRepo:            productRepo,
		highPriorityCategories: highPriorityCategories,
	}
}

// CartView 购物车视图
type CartView struct {
	Items    []models.CartItem `json:"items"`
	Subtotal models.Money      `json:"subtotal"`
}

// UpsertItem 写入购物车行：同一菜品重复加购覆盖数量，数量归零即删除
func (s *CartService) UpsertItem(tenantID, tableID uint, clientKey string, productID uint, quantity int) (*CartView, error) {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" || productID == 0 {
		return nil, ErrInvalidCartItem
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(tenantID, tableID, clientKey, productID); err != nil {
			return nil, err
		}
		return s.GetCart(tenantID, tableID, clientKey)
	}

	product, err := s.productRepo.GetByID(tenantID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	categoryName := ""
	if product.Category != nil {
		categoryName = product.Category.Name
	}

	item, err := s.cartRepo.GetItem(tenantID, tableID, clientKey, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		item = &models.CartItem{
			TenantID:  tenantID,
			TableID:   tableID,
			ClientKey: clientKey,
			ProductID: productID,
		}
	}
	item.Name = product.Name
	item.CategoryName = categoryName
	item.Quantity = quantity
	item.UnitPrice = product.Price
	item.HighPriority = s.IsHighPriorityCategory(categoryName)
	if err := s.cartRepo.Save(item); err != nil {
		return nil, err
	}
	return s.GetCart(tenantID, tableID, clientKey)
}

// RemoveItem 删除购物车行
func (s *CartService) RemoveItem(tenantID, tableID uint, clientKey string, productID uint) (*CartView, error) {
	if err := s.cartRepo.DeleteItem(tenantID, tableID, strings.TrimSpace(clientKey), productID); err != nil {
		return nil, err
	}
	return s.GetCart(tenantID, tableID, clientKey)
}

// GetCart 获取购物车及小计
func (s *CartService) GetCart(tenantID, tableID uint, clientKey string) (*CartView, error) {
	items, err := s.cartRepo.ListItems(tenantID, tableID, strings.TrimSpace(clientKey))
	if err != nil {
		return nil, err
	}
	subtotal := decimal.Zero
	for i := range items {
		subtotal = subtotal.Add(items[i].LineTotal().Decimal)
	}
	return &CartView{Items: items, Subtotal: models.NewMoneyFromDecimal(subtotal)}, nil
}

// Clear 清空购物车
func (s *CartService) Clear(tenantID, tableID uint, clientKey string) error {
	return s.cartRepo.Clear(tenantID, tableID, strings.TrimSpace(clientKey))
}

// IsHighPriorityCategory 判断品类是否优先派送（饮品类先上桌）
func (s *CartService) IsHighPriorityCategory(categoryName string) bool {
	name := strings.ToLower(strings.TrimSpace(categoryName))
	if name == "" {
		return false
	}
	for _, c := range s.highPriorityCategories {
		if strings.ToLower(strings.TrimSpace(c)) == name {
			return true
		}
	}
	return false
}
