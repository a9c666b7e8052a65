package service

import (
	"context"
	"testing"

	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"

	"gorm.io/gorm"
)

func newLossTestService(t *testing.T, name string) (*LossService, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t, name)
	notify := newTestNotifyService(db)
	svc := NewLossService(
		repository.NewLossRepository(db),
		repository.NewSessionRepository(db),
		repository.NewOrderRepository(db),
		repository.NewStaffRepository(db),
		notify,
		newDisabledQueueClient(),
		100,
	)
	return svc, db
}

func seedDeliveredOrder(t *testing.T, db *gorm.DB, session *models.TableSession, staff *models.Staff) *models.Order {
	t.Helper()
	order := &models.Order{
		TenantID:      session.TenantID,
		SessionID:     session.ID,
		TableID:       session.TableID,
		Status:        constants.OrderStatusDelivered,
		Subtotal:      models.NewMoneyFromInt(50),
		ClaimedBy:     &staff.ID,
		ClaimedByName: staff.Name,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed delivered order failed: %v", err)
	}
	return order
}

func TestReportLossSnapshotsResponsibilityChain(t *testing.T) {
	svc, db := newLossTestService(t, "loss_report")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	waiter := seedStaff(t, db, 1, "小赵", constants.StaffRoleWaiter)
	if err := db.Model(&models.TableSession{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
		"total_amount": models.NewMoneyFromInt(150),
		"attended_by":  models.StaffRefArray{waiter.Ref()},
	}).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	seedDeliveredOrder(t, db, session, waiter)

	incident, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID:    1,
		Type:        constants.LossTypeWalkout,
		SessionID:   session.ID,
		Description: "顾客趁高峰离场未结账",
		Reporter:    waiter.Ref(),
	})
	if err != nil {
		t.Fatalf("report loss failed: %v", err)
	}

	if incident.Amount.String() != "150.00" {
		t.Errorf("amount = %s, want 150.00", incident.Amount.String())
	}
	if incident.Cost.String() != "45.00" {
		t.Errorf("cost = %s, want 45.00", incident.Cost.String())
	}
	if incident.Status != constants.LossStatusPending {
		t.Errorf("status = %s, want pending", incident.Status)
	}
	if incident.CustomerPhone != session.CustomerPhone || incident.TableLabel != session.TableLabel {
		t.Errorf("session snapshot missing: %+v", incident)
	}
	if len(incident.DeliveredBy) != 1 || incident.DeliveredBy[0].ID != waiter.ID {
		t.Errorf("delivered_by = %+v, want [%d]", incident.DeliveredBy, waiter.ID)
	}
	if incident.LastTouchID != waiter.ID {
		t.Errorf("last touch = %d, want %d", incident.LastTouchID, waiter.ID)
	}
	if len(incident.Timeline) != 1 || incident.Timeline[0].Event != constants.LossEventReported {
		t.Errorf("timeline = %+v, want single reported event", incident.Timeline)
	}
}

func TestReportLossClampsNegativeAmount(t *testing.T) {
	svc, db := newLossTestService(t, "loss_clamp")
	session := seedSession(t, db, 1, 1, constants.SessionStatusClosed)
	if err := db.Model(&models.TableSession{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
		"total_amount": models.NewMoneyFromInt(50),
		"total_paid":   models.NewMoneyFromInt(80),
	}).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}

	incident, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID:  1,
		Type:      constants.LossTypeOther,
		SessionID: session.ID,
		Reporter:  models.StaffRef{ID: 1, Name: "小钱"},
	})
	if err != nil {
		t.Fatalf("report loss failed: %v", err)
	}
	if incident.Amount.String() != "0.00" {
		t.Errorf("amount = %s, want 0.00", incident.Amount.String())
	}
}

func TestReportLossRejectsUnknownType(t *testing.T) {
	svc, db := newLossTestService(t, "loss_type")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	if _, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID:  1,
		Type:      "meteor_strike",
		SessionID: session.ID,
	}); err != ErrInvalidLossType {
		t.Fatalf("got %v, want ErrInvalidLossType", err)
	}
}

func TestReportWalkoutFlagsBlacklistAtReport(t *testing.T) {
	svc, db := newLossTestService(t, "loss_flag_at_report")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	if err := db.Model(&models.TableSession{}).Where("id = ?", session.ID).
		Update("total_amount", models.NewMoneyFromInt(150)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	waiter := seedStaff(t, db, 1, "小孙", constants.StaffRoleWaiter)

	incident, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID:  1,
		Type:      constants.LossTypeWalkout,
		SessionID: session.ID,
		Reporter:  waiter.Ref(),
	})
	if err != nil {
		t.Fatalf("report loss failed: %v", err)
	}

	// 拉黑标记在上报时刻生成，不等审核
	flags, err := svc.ListBlacklistFlags(1, "")
	if err != nil {
		t.Fatalf("list flags failed: %v", err)
	}
	if len(flags) != 1 {
		t.Fatalf("blacklist flags = %d, want 1 before any review", len(flags))
	}
	if flags[0].IncidentID != incident.ID || flags[0].CustomerPhone != session.CustomerPhone {
		t.Fatalf("flag snapshot wrong: %+v", flags[0])
	}
	if flags[0].Amount.String() != "150.00" {
		t.Fatalf("flag amount = %s, want 150.00", flags[0].Amount.String())
	}
}

func TestReviewIncidentWorkflow(t *testing.T) {
	svc, db := newLossTestService(t, "loss_review")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	if err := db.Model(&models.TableSession{}).Where("id = ?", session.ID).
		Update("total_amount", models.NewMoneyFromInt(150)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	waiter := seedStaff(t, db, 1, "小冯", constants.StaffRoleWaiter)
	manager := seedStaff(t, db, 1, "王经理", constants.StaffRoleManager)

	incident, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID:  1,
		Type:      constants.LossTypeStaffError,
		SessionID: session.ID,
		Reporter:  waiter.Ref(),
	})
	if err != nil {
		t.Fatalf("report loss failed: %v", err)
	}

	// 服务员无权审核
	if _, err := svc.ReviewIncident(context.Background(), 1, incident.ID, waiter.ID, true, ""); err != ErrManagerRequired {
		t.Fatalf("waiter review: got %v, want ErrManagerRequired", err)
	}

	reviewed, err := svc.ReviewIncident(context.Background(), 1, incident.ID, manager.ID, true, "核实无误")
	if err != nil {
		t.Fatalf("manager review failed: %v", err)
	}
	if reviewed.Status != constants.LossStatusApproved || reviewed.ReviewedAt == nil {
		t.Fatalf("incident not finalized: %+v", reviewed)
	}
	if len(reviewed.Timeline) != 2 || reviewed.Timeline[1].Event != constants.LossEventApproved {
		t.Fatalf("timeline = %+v, want appended approved event", reviewed.Timeline)
	}

	// 终态后不可再审
	if _, err := svc.ReviewIncident(context.Background(), 1, incident.ID, manager.ID, false, ""); err != ErrIncidentFinalized {
		t.Fatalf("re-review: got %v, want ErrIncidentFinalized", err)
	}
}

func TestReviewIncidentReject(t *testing.T) {
	svc, db := newLossTestService(t, "loss_review_reject")
	session := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	if err := db.Model(&models.TableSession{}).Where("id = ?", session.ID).
		Update("total_amount", models.NewMoneyFromInt(500)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	manager := seedStaff(t, db, 1, "李经理", constants.StaffRoleManager)

	incident, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID:  1,
		Type:      constants.LossTypeKitchenError,
		SessionID: session.ID,
		Reporter:  manager.Ref(),
	})
	if err != nil {
		t.Fatalf("report loss failed: %v", err)
	}

	reviewed, err := svc.ReviewIncident(context.Background(), 1, incident.ID, manager.ID, false, "证据不足")
	if err != nil {
		t.Fatalf("reject review failed: %v", err)
	}
	if reviewed.Status != constants.LossStatusRejected {
		t.Fatalf("status = %s, want rejected", reviewed.Status)
	}
	if len(reviewed.Timeline) != 2 || reviewed.Timeline[1].Event != constants.LossEventRejected {
		t.Fatalf("timeline = %+v, want appended rejected event", reviewed.Timeline)
	}
}

func TestBlacklistCumulativeApprovedLosses(t *testing.T) {
	svc, db := newLossTestService(t, "loss_cumulative")
	manager := seedStaff(t, db, 1, "吴经理", constants.StaffRoleManager)

	// 第一单 60 未过阈值，不拉黑
	first := seedSession(t, db, 1, 1, constants.SessionStatusClosed)
	if err := db.Model(&models.TableSession{}).Where("id = ?", first.ID).
		Update("total_amount", models.NewMoneyFromInt(60)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	incident, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID: 1, Type: constants.LossTypeWalkout, SessionID: first.ID, Reporter: manager.Ref(),
	})
	if err != nil {
		t.Fatalf("first report failed: %v", err)
	}
	flags, err := svc.ListBlacklistFlags(1, "")
	if err != nil {
		t.Fatalf("list flags failed: %v", err)
	}
	if len(flags) != 0 {
		t.Fatalf("below-threshold walkout flagged: %+v", flags)
	}
	if _, err := svc.ReviewIncident(context.Background(), 1, incident.ID, manager.ID, true, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// 同一手机号第二单 50：60 + 50 超过阈值，惯犯拉黑
	second := seedSession(t, db, 1, 2, constants.SessionStatusClosed)
	if err := db.Model(&models.TableSession{}).Where("id = ?", second.ID).
		Update("total_amount", models.NewMoneyFromInt(50)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	repeat, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID: 1, Type: constants.LossTypeWalkout, SessionID: second.ID, Reporter: manager.Ref(),
	})
	if err != nil {
		t.Fatalf("second report failed: %v", err)
	}
	flags, err = svc.ListBlacklistFlags(1, "")
	if err != nil {
		t.Fatalf("list flags failed: %v", err)
	}
	if len(flags) != 1 || flags[0].IncidentID != repeat.ID {
		t.Fatalf("flags = %+v, want single flag for repeat incident", flags)
	}
	if flags[0].Amount.String() != "50.00" {
		t.Fatalf("flag amount = %s, want 50.00", flags[0].Amount.String())
	}
}

func TestBlacklistThresholdAndPhoneGate(t *testing.T) {
	svc, db := newLossTestService(t, "loss_threshold")
	manager := seedStaff(t, db, 1, "周经理", constants.StaffRoleManager)

	// 金额低于阈值
	small := seedSession(t, db, 1, 1, constants.SessionStatusActive)
	if err := db.Model(&models.TableSession{}).Where("id = ?", small.ID).
		Update("total_amount", models.NewMoneyFromInt(99)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	if _, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID: 1, Type: constants.LossTypeWalkout, SessionID: small.ID, Reporter: manager.Ref(),
	}); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	// 恰好等于阈值：严格大于才拉黑
	exact := seedSession(t, db, 1, 2, constants.SessionStatusActive)
	if err := db.Model(&models.TableSession{}).Where("id = ?", exact.ID).
		Update("total_amount", models.NewMoneyFromInt(100)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	if _, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID: 1, Type: constants.LossTypeWalkout, SessionID: exact.ID, Reporter: manager.Ref(),
	}); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	// 手机号为空
	anon := seedSession(t, db, 1, 3, constants.SessionStatusActive)
	if err := db.Model(&models.TableSession{}).Where("id = ?", anon.ID).Updates(map[string]interface{}{
		"total_amount":   models.NewMoneyFromInt(300),
		"customer_phone": "",
	}).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	if _, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID: 1, Type: constants.LossTypeWalkout, SessionID: anon.ID, Reporter: manager.Ref(),
	}); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	// 非跑单类型
	kitchen := seedSession(t, db, 1, 4, constants.SessionStatusActive)
	if err := db.Model(&models.TableSession{}).Where("id = ?", kitchen.ID).
		Update("total_amount", models.NewMoneyFromInt(300)).Error; err != nil {
		t.Fatalf("stage session failed: %v", err)
	}
	if _, err := svc.ReportLoss(context.Background(), ReportLossInput{
		TenantID: 1, Type: constants.LossTypeKitchenError, SessionID: kitchen.ID, Reporter: manager.Ref(),
	}); err != nil {
		t.Fatalf("report failed: %v", err)
	}

	flags, err := svc.ListBlacklistFlags(1, "")
	if err != nil {
		t.Fatalf("list flags failed: %v", err)
	}
	if len(flags) != 0 {
		t.Fatalf("gated incidents produced flags: %+v", flags)
	}
}
