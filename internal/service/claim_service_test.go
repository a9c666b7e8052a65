package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newClaimTestService(t *testing.T, name string) (*ClaimService, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t, name)
	orderRepo := repository.NewOrderRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	notify := newTestNotifyService(db)
	sessionSvc := NewSessionService(repository.NewSessionRepository(db), repository.NewTableRepository(db), orderRepo, notify, nil, 10)
	return NewClaimService(orderRepo, claimRepo, staffRepo, sessionSvc, notify, nil, 5), db
}

func seedStaff(t *testing.T, db *gorm.DB, tenantID uint, name, role string) *models.Staff {
	t.Helper()
	staff := &models.Staff{
		TenantID: tenantID,
		Name:     name,
		Phone:    "1380000" + name,
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(staff).Error; err != nil {
		t.Fatalf("seed staff failed: %v", err)
	}
	return staff
}

func seedSession(t *testing.T, db *gorm.DB, tenantID, tableID uint, status string) *models.TableSession {
	t.Helper()
	now := time.Now()
	session := &models.TableSession{
		TenantID:       tenantID,
		TableID:        tableID,
		TableLabel:     "T1",
		CustomerName:   "张三",
		CustomerPhone:  "13900001111",
		Status:         status,
		OrderIDs:       models.UintArray{},
		AttendedBy:     models.StaffRefArray{},
		OpenedAt:       now,
		LastActivityAt: now,
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("seed session failed: %v", err)
	}
	return session
}

func seedPendingOrder(t *testing.T, db *gorm.DB, tenantID uint, session *models.TableSession, itemNames []string) *models.Order {
	t.Helper()
	order := &models.Order{
		TenantID:     tenantID,
		SessionID:    session.ID,
		TableID:      session.TableID,
		TableLabel:   session.TableLabel,
		CustomerName: session.CustomerName,
		Status:       constants.OrderStatusPending,
		Subtotal:     models.NewMoneyFromInt(100),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	for i, name := range itemNames {
		item := &models.OrderItem{
			OrderID:   order.ID,
			ProductID: uint(i + 1),
			Name:      name,
			Quantity:  1,
			UnitPrice: models.NewMoneyFromInt(50),
			LineTotal: models.NewMoneyFromInt(50),
		}
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("seed order item failed: %v", err)
		}
	}
	return order
}

func TestCalculatePoints(t *testing.T) {
	cases := []struct {
		responseSeconds int
		subtotal        int64
		want            int
	}{
		{25, 150, 45},  // 10 + 20 快速响应 + 15 金额加成
		{90, 40, 19},   // 10 + 5 + 4
		{45, 0, 20},    // 10 + 10
		{119, 10, 16},  // 10 + 5 + 1
		{200, 0, 10},   // 仅基础分
		{0, 999, 109},  // 10 + 20 + 99
	}
	for _, c := range cases {
		got := CalculatePoints(c.responseSeconds, decimal.NewFromInt(c.subtotal))
		if got != c.want {
			t.Errorf("CalculatePoints(%d, %d) = %d, want %d", c.responseSeconds, c.subtotal, got, c.want)
		}
	}
}

func TestClaimOrderSingleWinner(t *testing.T) {
	svc, db := newClaimTestService(t, "claim_winner")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	order := seedPendingOrder(t, db, 1, session, []string{"宫保鸡丁"})
	a := seedStaff(t, db, 1, "小赵", constants.StaffRoleWaiter)
	b := seedStaff(t, db, 1, "小钱", constants.StaffRoleWaiter)

	results := make([]*ClaimResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, staffID := range []uint{a.ID, b.ID} {
		wg.Add(1)
		go func(idx int, id uint) {
			defer wg.Done()
			results[idx], errs[idx] = svc.ClaimOrder(context.Background(), 1, order.ID, id)
		}(i, staffID)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("ClaimOrder returned error: %v", errs[i])
		}
		if results[i].Success {
			winners++
			if results[i].Claim == nil || results[i].Points <= 0 {
				t.Fatalf("winner result missing claim or points: %+v", results[i])
			}
		} else if results[i].ClaimedBy == "" {
			t.Fatalf("loser result should name the holder: %+v", results[i])
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}

	var got models.Order
	if err := db.First(&got, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.Status != constants.OrderStatusPreparing || got.ClaimedBy == nil || got.ClaimExpiresAt == nil {
		t.Fatalf("order not locked after claim: status=%s claimed_by=%v", got.Status, got.ClaimedBy)
	}
}

func TestClaimOrderExpiredClaimReclaimable(t *testing.T) {
	svc, db := newClaimTestService(t, "claim_reclaim")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	order := seedPendingOrder(t, db, 1, session, []string{"可乐"})
	old := seedStaff(t, db, 1, "小孙", constants.StaffRoleWaiter)
	fresh := seedStaff(t, db, 1, "小李", constants.StaffRoleWaiter)

	expired := time.Now().Add(-time.Minute)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"status":           constants.OrderStatusPreparing,
		"claimed_by":       old.ID,
		"claimed_by_name":  old.Name,
		"claim_expires_at": expired,
	}).Error; err != nil {
		t.Fatalf("stage expired claim failed: %v", err)
	}
	staleClaim := &models.OrderClaim{
		TenantID:  1,
		OrderID:   order.ID,
		StaffID:   old.ID,
		StaffName: old.Name,
		Status:    constants.ClaimStatusClaimed,
		Points:    30,
		ExpiresAt: expired,
	}
	if err := db.Create(staleClaim).Error; err != nil {
		t.Fatalf("stage stale claim row failed: %v", err)
	}

	result, err := svc.ClaimOrder(context.Background(), 1, order.ID, fresh.ID)
	if err != nil {
		t.Fatalf("ClaimOrder failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expired claim should be reclaimable, got %+v", result)
	}

	var archived models.OrderClaim
	if err := db.First(&archived, staleClaim.ID).Error; err != nil {
		t.Fatalf("reload stale claim failed: %v", err)
	}
	if archived.Status != constants.ClaimStatusExpired {
		t.Fatalf("stale claim status = %s, want expired", archived.Status)
	}

	var got models.Order
	if err := db.First(&got, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.ClaimedBy == nil || *got.ClaimedBy != fresh.ID {
		t.Fatalf("order claimed_by = %v, want %d", got.ClaimedBy, fresh.ID)
	}
}

func TestClaimOrderRejections(t *testing.T) {
	svc, db := newClaimTestService(t, "claim_reject")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	order := seedPendingOrder(t, db, 1, session, []string{"烤鱼"})
	staff := seedStaff(t, db, 1, "小周", constants.StaffRoleWaiter)

	if _, err := svc.ClaimOrder(context.Background(), 1, order.ID+99, staff.ID); err != ErrOrderNotFound {
		t.Fatalf("missing order: got %v, want ErrOrderNotFound", err)
	}

	inactive := seedStaff(t, db, 1, "小吴", constants.StaffRoleWaiter)
	if err := db.Model(&models.Staff{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate staff failed: %v", err)
	}
	if _, err := svc.ClaimOrder(context.Background(), 1, order.ID, inactive.ID); err != ErrStaffInactive {
		t.Fatalf("inactive staff: got %v, want ErrStaffInactive", err)
	}

	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusReady).Error; err != nil {
		t.Fatalf("finalize order failed: %v", err)
	}
	if _, err := svc.ClaimOrder(context.Background(), 1, order.ID, staff.ID); err != ErrOrderNotClaimable {
		t.Fatalf("ready order: got %v, want ErrOrderNotClaimable", err)
	}
}

func TestMarkItemsDeliveredLifecycle(t *testing.T) {
	svc, db := newClaimTestService(t, "claim_deliver")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	order := seedPendingOrder(t, db, 1, session, []string{"啤酒", "毛血旺"})
	staff := seedStaff(t, db, 1, "小郑", constants.StaffRoleWaiter)
	other := seedStaff(t, db, 1, "小王", constants.StaffRoleWaiter)

	result, err := svc.ClaimOrder(context.Background(), 1, order.ID, staff.ID)
	if err != nil || !result.Success {
		t.Fatalf("claim failed: result=%+v err=%v", result, err)
	}
	claim, err := svc.GetClaim(1, result.Claim.ID)
	if err != nil {
		t.Fatalf("reload claim failed: %v", err)
	}
	if len(claim.Items) != 2 {
		t.Fatalf("claim items = %d, want 2", len(claim.Items))
	}

	if _, err := svc.MarkItemsDelivered(context.Background(), 1, claim.ID, other.ID, []uint{claim.Items[0].ID}); err != ErrClaimNotOwned {
		t.Fatalf("foreign staff delivery: got %v, want ErrClaimNotOwned", err)
	}

	partial, err := svc.MarkItemsDelivered(context.Background(), 1, claim.ID, staff.ID, []uint{claim.Items[0].ID})
	if err != nil {
		t.Fatalf("partial delivery failed: %v", err)
	}
	if partial.Status != constants.ClaimStatusDelivering {
		t.Fatalf("partial delivery status = %s, want delivering", partial.Status)
	}

	// 重复标记同一项是幂等空操作，不报错也不改变状态
	again, err := svc.MarkItemsDelivered(context.Background(), 1, claim.ID, staff.ID, []uint{claim.Items[0].ID})
	if err != nil {
		t.Fatalf("re-mark delivered item failed: %v", err)
	}
	if again.Status != constants.ClaimStatusDelivering {
		t.Fatalf("re-mark status = %s, want delivering", again.Status)
	}
	deliveredCount := 0
	for _, it := range again.Items {
		if it.Delivered {
			deliveredCount++
		}
	}
	if deliveredCount != 1 {
		t.Fatalf("delivered items = %d after re-mark, want 1", deliveredCount)
	}

	done, err := svc.MarkItemsDelivered(context.Background(), 1, claim.ID, staff.ID, []uint{claim.Items[1].ID})
	if err != nil {
		t.Fatalf("final delivery failed: %v", err)
	}
	if done.Status != constants.ClaimStatusDelivered {
		t.Fatalf("final delivery status = %s, want delivered", done.Status)
	}

	var gotOrder models.Order
	if err := db.First(&gotOrder, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if gotOrder.Status != constants.OrderStatusReady {
		t.Fatalf("order status = %s, want ready", gotOrder.Status)
	}

	// 积分在全部送达时一次性入账
	var gotStaff models.Staff
	if err := db.First(&gotStaff, staff.ID).Error; err != nil {
		t.Fatalf("reload staff failed: %v", err)
	}
	if gotStaff.Points != claim.Points {
		t.Fatalf("staff points = %d, want %d", gotStaff.Points, claim.Points)
	}

	if _, err := svc.MarkItemsDelivered(context.Background(), 1, claim.ID, staff.ID, []uint{claim.Items[0].ID}); err != ErrClaimCompleted {
		t.Fatalf("redeliver completed claim: got %v, want ErrClaimCompleted", err)
	}

	board, err := svc.Leaderboard(1, 10)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if len(board) != 1 || board[0].StaffID != staff.ID || board[0].TotalPoints != claim.Points {
		t.Fatalf("leaderboard = %+v, want single entry for staff %d", board, staff.ID)
	}
}

func TestMarkItemsDeliveredExpiredClaim(t *testing.T) {
	svc, db := newClaimTestService(t, "claim_deliver_expired")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	order := seedPendingOrder(t, db, 1, session, []string{"柠檬水"})
	staff := seedStaff(t, db, 1, "小冯", constants.StaffRoleWaiter)

	result, err := svc.ClaimOrder(context.Background(), 1, order.ID, staff.ID)
	if err != nil || !result.Success {
		t.Fatalf("claim failed: result=%+v err=%v", result, err)
	}
	if err := db.Model(&models.OrderClaim{}).Where("id = ?", result.Claim.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire claim failed: %v", err)
	}

	claim, _ := svc.GetClaim(1, result.Claim.ID)
	if _, err := svc.MarkItemsDelivered(context.Background(), 1, claim.ID, staff.ID, []uint{claim.Items[0].ID}); err != ErrClaimExpired {
		t.Fatalf("expired claim delivery: got %v, want ErrClaimExpired", err)
	}
}

func TestSweepExpired(t *testing.T) {
	svc, db := newClaimTestService(t, "claim_sweep")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	order := seedPendingOrder(t, db, 1, session, []string{"凉菜"})
	staff := seedStaff(t, db, 1, "小陈", constants.StaffRoleWaiter)

	result, err := svc.ClaimOrder(context.Background(), 1, order.ID, staff.ID)
	if err != nil || !result.Success {
		t.Fatalf("claim failed: result=%+v err=%v", result, err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("claim_expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire order claim failed: %v", err)
	}
	if err := db.Model(&models.OrderClaim{}).Where("id = ?", result.Claim.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire claim row failed: %v", err)
	}

	released, err := svc.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("released = %d, want 1", released)
	}

	var gotOrder models.Order
	if err := db.First(&gotOrder, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if gotOrder.Status != constants.OrderStatusPending || gotOrder.ClaimedBy != nil {
		t.Fatalf("order not released: status=%s claimed_by=%v", gotOrder.Status, gotOrder.ClaimedBy)
	}

	var gotClaim models.OrderClaim
	if err := db.First(&gotClaim, result.Claim.ID).Error; err != nil {
		t.Fatalf("reload claim failed: %v", err)
	}
	if gotClaim.Status != constants.ClaimStatusExpired {
		t.Fatalf("claim status = %s, want expired", gotClaim.Status)
	}
}
