package service

import (
	"context"
	"testing"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"

	"gorm.io/gorm"
)

func newOrderTestServices(t *testing.T, name string) (*OrderService, *CartService, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t, name)
	notify := newTestNotifyService(db)
	orderSvc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewSessionRepository(db),
		repository.NewCartRepository(db),
		notify, nil,
	)
	cartSvc := NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		[]string{"drinks"},
	)
	return orderSvc, cartSvc, db
}

func seedProduct(t *testing.T, db *gorm.DB, tenantID uint, category, name string, price int64) *models.Product {
	t.Helper()
	var cat models.Category
	if err := db.Where("tenant_id = ? AND name = ?", tenantID, category).First(&cat).Error; err != nil {
		cat = models.Category{TenantID: tenantID, Name: category}
		if err := db.Create(&cat).Error; err != nil {
			t.Fatalf("seed category failed: %v", err)
		}
	}
	product := &models.Product{
		TenantID:   tenantID,
		CategoryID: cat.ID,
		Name:       name,
		Price:      models.NewMoneyFromInt(price),
		IsActive:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func TestCartUpsertSnapshotsProduct(t *testing.T) {
	_, cartSvc, db := newOrderTestServices(t, "cart_upsert")
	beer := seedProduct(t, db, 1, "Drinks", "精酿啤酒", 16)
	dish := seedProduct(t, db, 1, "Mains", "红烧肉", 48)

	view, err := cartSvc.UpsertItem(1, 1, "client-1", beer.ID, 2)
	if err != nil {
		t.Fatalf("upsert beer failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("cart items = %d, want 1", len(view.Items))
	}
	item := view.Items[0]
	if item.Name != "精酿啤酒" || item.CategoryName != "Drinks" || item.UnitPrice.String() != "16.00" {
		t.Fatalf("cart snapshot wrong: %+v", item)
	}
	if !item.HighPriority {
		t.Fatalf("drinks item should be high priority")
	}

	view, err = cartSvc.UpsertItem(1, 1, "client-1", dish.ID, 1)
	if err != nil {
		t.Fatalf("upsert dish failed: %v", err)
	}
	if view.Subtotal.String() != "80.00" {
		t.Fatalf("subtotal = %s, want 80.00", view.Subtotal.String())
	}

	// 重复加购覆盖数量而不是累加
	view, err = cartSvc.UpsertItem(1, 1, "client-1", beer.ID, 1)
	if err != nil {
		t.Fatalf("re-upsert beer failed: %v", err)
	}
	if view.Subtotal.String() != "64.00" {
		t.Fatalf("subtotal after overwrite = %s, want 64.00", view.Subtotal.String())
	}

	// 数量归零即删除
	view, err = cartSvc.UpsertItem(1, 1, "client-1", beer.ID, 0)
	if err != nil {
		t.Fatalf("zero-quantity upsert failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != dish.ID {
		t.Fatalf("beer not removed: %+v", view.Items)
	}
}

func TestCartIsolatedPerTableWithSharedClientKey(t *testing.T) {
	_, cartSvc, db := newOrderTestServices(t, "cart_table_scope")
	dish := seedProduct(t, db, 1, "Mains", "宫保鸡丁", 38)

	// 两张桌台各自的顾客恰好带同一个客户端标识，购物车互不串台
	if _, err := cartSvc.UpsertItem(1, 1, "client-1", dish.ID, 2); err != nil {
		t.Fatalf("table 1 upsert failed: %v", err)
	}
	if _, err := cartSvc.UpsertItem(1, 2, "client-1", dish.ID, 5); err != nil {
		t.Fatalf("table 2 upsert failed: %v", err)
	}

	first, err := cartSvc.GetCart(1, 1, "client-1")
	if err != nil {
		t.Fatalf("get table 1 cart failed: %v", err)
	}
	second, err := cartSvc.GetCart(1, 2, "client-1")
	if err != nil {
		t.Fatalf("get table 2 cart failed: %v", err)
	}
	if len(first.Items) != 1 || first.Items[0].Quantity != 2 {
		t.Fatalf("table 1 cart = %+v, want single line qty 2", first.Items)
	}
	if len(second.Items) != 1 || second.Items[0].Quantity != 5 {
		t.Fatalf("table 2 cart = %+v, want single line qty 5", second.Items)
	}
}

func TestCartRejectsInvalidProduct(t *testing.T) {
	_, cartSvc, db := newOrderTestServices(t, "cart_invalid")
	product := seedProduct(t, db, 1, "Mains", "下架菜", 30)
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	if _, err := cartSvc.UpsertItem(1, 1, "client-1", product.ID, 1); err != ErrProductInactive {
		t.Fatalf("inactive product: got %v, want ErrProductInactive", err)
	}
	if _, err := cartSvc.UpsertItem(1, 1, "client-1", product.ID+99, 1); err != ErrProductNotFound {
		t.Fatalf("missing product: got %v, want ErrProductNotFound", err)
	}
	if _, err := cartSvc.UpsertItem(1, 1, "", product.ID, 1); err != ErrInvalidCartItem {
		t.Fatalf("blank client key: got %v, want ErrInvalidCartItem", err)
	}
}

func TestSubmitOrderPipeline(t *testing.T) {
	orderSvc, cartSvc, db := newOrderTestServices(t, "order_submit")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	beer := seedProduct(t, db, 1, "Drinks", "扎啤", 20)
	dish := seedProduct(t, db, 1, "Mains", "水煮鱼", 68)

	if _, err := cartSvc.UpsertItem(1, session.TableID, "client-1", beer.ID, 2); err != nil {
		t.Fatalf("fill cart failed: %v", err)
	}
	if _, err := cartSvc.UpsertItem(1, session.TableID, "client-1", dish.ID, 1); err != nil {
		t.Fatalf("fill cart failed: %v", err)
	}

	order, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: session.ID, ClientKey: "client-1"})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if order.Subtotal.String() != "108.00" {
		t.Errorf("order subtotal = %s, want 108.00", order.Subtotal.String())
	}
	if !order.HasHighPriority {
		t.Errorf("order with drinks should be high priority")
	}
	if order.Status != constants.OrderStatusPending {
		t.Errorf("order status = %s, want pending", order.Status)
	}
	if len(order.Items) != 2 {
		t.Errorf("order items = %d, want 2", len(order.Items))
	}
	if order.CustomerName != session.CustomerName {
		t.Errorf("customer snapshot missing: %s", order.CustomerName)
	}

	// 会话流水同事务累加，购物车清空
	var gotSession models.TableSession
	if err := db.First(&gotSession, session.ID).Error; err != nil {
		t.Fatalf("reload session failed: %v", err)
	}
	if gotSession.TotalAmount.String() != "108.00" {
		t.Errorf("session total = %s, want 108.00", gotSession.TotalAmount.String())
	}
	if len(gotSession.OrderIDs) != 1 || gotSession.OrderIDs[0] != order.ID {
		t.Errorf("session order_ids = %+v, want [%d]", gotSession.OrderIDs, order.ID)
	}
	if gotSession.FirstOrderAt == nil || gotSession.LastOrderAt == nil {
		t.Errorf("order timestamps not stamped: %+v", gotSession)
	}
	view, err := cartSvc.GetCart(1, session.TableID, "client-1")
	if err != nil {
		t.Fatalf("reload cart failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("cart not cleared after submit: %+v", view.Items)
	}

	// 空车再提交被拒绝
	if _, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: session.ID, ClientKey: "client-1"}); err != ErrCartEmpty {
		t.Fatalf("empty cart submit: got %v, want ErrCartEmpty", err)
	}
}

func TestSubmitOrderRequiresActiveSession(t *testing.T) {
	orderSvc, cartSvc, db := newOrderTestServices(t, "order_session_gate")
	billed := seedSession(t, db, 1, 1, constants.SessionStatusBillRequested)
	closed := seedSession(t, db, 1, 2, constants.SessionStatusClosed)
	beer := seedProduct(t, db, 1, "Drinks", "鲜榨橙汁", 22)
	if _, err := cartSvc.UpsertItem(1, 1, "client-1", beer.ID, 1); err != nil {
		t.Fatalf("fill cart failed: %v", err)
	}

	if _, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: billed.ID, ClientKey: "client-1"}); err != ErrSessionNotActive {
		t.Fatalf("billed session: got %v, want ErrSessionNotActive", err)
	}
	if _, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: closed.ID, ClientKey: "client-1"}); err != ErrSessionClosed {
		t.Fatalf("closed session: got %v, want ErrSessionClosed", err)
	}
	if _, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: 999, ClientKey: "client-1"}); err != ErrSessionNotFound {
		t.Fatalf("missing session: got %v, want ErrSessionNotFound", err)
	}
}

func TestListUnclaimedHighPriorityFirst(t *testing.T) {
	orderSvc, cartSvc, db := newOrderTestServices(t, "order_unclaimed")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	dish := seedProduct(t, db, 1, "Mains", "回锅肉", 42)
	beer := seedProduct(t, db, 1, "Drinks", "青岛啤酒", 10)

	if _, err := cartSvc.UpsertItem(1, session.TableID, "client-1", dish.ID, 1); err != nil {
		t.Fatalf("fill cart failed: %v", err)
	}
	plain, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: session.ID, ClientKey: "client-1"})
	if err != nil {
		t.Fatalf("submit plain order failed: %v", err)
	}
	if _, err := cartSvc.UpsertItem(1, session.TableID, "client-1", beer.ID, 1); err != nil {
		t.Fatalf("fill cart failed: %v", err)
	}
	urgent, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: session.ID, ClientKey: "client-1"})
	if err != nil {
		t.Fatalf("submit urgent order failed: %v", err)
	}

	orders, err := orderSvc.ListUnclaimed(1)
	if err != nil {
		t.Fatalf("list unclaimed failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("unclaimed = %d, want 2", len(orders))
	}
	// 含饮品的订单置顶，其余按提交先后
	if orders[0].ID != urgent.ID || orders[1].ID != plain.ID {
		t.Fatalf("unclaimed ordering = [%d %d], want [%d %d]", orders[0].ID, orders[1].ID, urgent.ID, plain.ID)
	}
}

func TestOrderItemsPriorityFirstStable(t *testing.T) {
	orderSvc, cartSvc, db := newOrderTestServices(t, "order_item_priority")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	dishA := seedProduct(t, db, 1, "Mains", "水煮牛肉", 58)
	dishB := seedProduct(t, db, 1, "Mains", "干煸四季豆", 26)
	beer := seedProduct(t, db, 1, "Drinks", "青岛啤酒", 10)

	// 菜品先加、饮品最后加，混合订单
	for _, id := range []uint{dishA.ID, dishB.ID, beer.ID} {
		if _, err := cartSvc.UpsertItem(1, session.TableID, "client-1", id, 1); err != nil {
			t.Fatalf("fill cart failed: %v", err)
		}
	}
	if _, err := orderSvc.SubmitOrder(context.Background(), SubmitOrderInput{TenantID: 1, SessionID: session.ID, ClientKey: "client-1"}); err != nil {
		t.Fatalf("submit order failed: %v", err)
	}

	orders, err := orderSvc.ListUnclaimed(1)
	if err != nil {
		t.Fatalf("list unclaimed failed: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 3 {
		t.Fatalf("unclaimed = %+v, want one order with 3 items", orders)
	}
	// 明细内饮品置顶，其余保持录入先后
	items := orders[0].Items
	if !items[0].HighPriority || items[0].Name != "青岛啤酒" {
		t.Fatalf("first item = %+v, want high-priority drink", items[0])
	}
	if items[1].Name != "水煮牛肉" || items[2].Name != "干煸四季豆" {
		t.Fatalf("normal items reordered: [%s %s]", items[1].Name, items[2].Name)
	}
}
