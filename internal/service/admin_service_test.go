package service

import (
	"testing"

	"github.com/comanda-next/internal/authz"
	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/repository"

	"gorm.io/gorm"
)

func newAdminTestService(t *testing.T, name string) (*AdminService, *authz.Service, *gorm.DB) {
	t.Helper()
	db := newServiceTestDB(t, name)
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("create authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	svc := NewAdminService(repository.NewStaffRepository(db), repository.NewTableRepository(db), authzService)
	return svc, authzService, db
}

func TestCreateStaffBindsRole(t *testing.T) {
	svc, authzService, _ := newAdminTestService(t, "admin_create_staff")

	staff, err := svc.CreateStaff(1, StaffInput{Name: "小赵", Phone: "13800000001", Password: "pw123456"})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if staff.Role != constants.StaffRoleWaiter {
		t.Fatalf("default role = %s, want waiter", staff.Role)
	}
	if staff.PasswordHash == "" || staff.PasswordHash == "pw123456" {
		t.Fatalf("password not hashed: %q", staff.PasswordHash)
	}
	if ok, _ := authzService.EnforceStaff(staff.ID, "/staff/orders", "GET"); !ok {
		t.Fatal("created waiter not bound to role policies")
	}

	// 手机号重复
	if _, err := svc.CreateStaff(1, StaffInput{Name: "小钱", Phone: "13800000001", Password: "pw"}); err != ErrPhoneTaken {
		t.Fatalf("dup phone: got %v, want ErrPhoneTaken", err)
	}
	// 非法角色
	if _, err := svc.CreateStaff(1, StaffInput{Name: "小孙", Phone: "13800000002", Password: "pw", Role: "ceo"}); err != ErrInvalidStaffRole {
		t.Fatalf("bad role: got %v, want ErrInvalidStaffRole", err)
	}
	// 缺字段
	if _, err := svc.CreateStaff(1, StaffInput{Name: "", Phone: "13800000003", Password: "pw"}); err != ErrInvalidStaffInput {
		t.Fatalf("blank name: got %v, want ErrInvalidStaffInput", err)
	}
}

func TestUpdateStaffRoleRebindsAuthz(t *testing.T) {
	svc, authzService, _ := newAdminTestService(t, "admin_update_staff")
	staff, err := svc.CreateStaff(1, StaffInput{Name: "小李", Phone: "13800000011", Password: "pw123456"})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if ok, _ := authzService.EnforceStaff(staff.ID, "/staff/losses/5/review", "POST"); ok {
		t.Fatal("waiter should not review losses")
	}

	updated, err := svc.UpdateStaff(1, staff.ID, StaffInput{Role: constants.StaffRoleManager})
	if err != nil {
		t.Fatalf("update staff failed: %v", err)
	}
	if updated.Role != constants.StaffRoleManager {
		t.Fatalf("role = %s, want manager", updated.Role)
	}
	if ok, _ := authzService.EnforceStaff(staff.ID, "/staff/losses/5/review", "POST"); !ok {
		t.Fatal("promoted manager denied review")
	}
	// 原 waiter 面仍可用（manager 继承）
	if ok, _ := authzService.EnforceStaff(staff.ID, "/staff/orders", "GET"); !ok {
		t.Fatal("promoted manager lost waiter permissions")
	}

	if _, err := svc.UpdateStaff(1, 999, StaffInput{Name: "x"}); err != ErrStaffNotFound {
		t.Fatalf("missing staff: got %v, want ErrStaffNotFound", err)
	}
}

func TestTableLifecycle(t *testing.T) {
	svc, _, _ := newAdminTestService(t, "admin_tables")

	table, err := svc.CreateTable(1, TableInput{Label: "T1"})
	if err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	if table.Code == "" || !table.IsActive {
		t.Fatalf("table not initialized: %+v", table)
	}

	if _, err := svc.CreateTable(1, TableInput{Label: "  "}); err != ErrInvalidTableInput {
		t.Fatalf("blank label: got %v, want ErrInvalidTableInput", err)
	}

	inactive := false
	updated, err := svc.UpdateTable(1, table.ID, TableInput{Label: "T1-窗边", IsActive: &inactive})
	if err != nil {
		t.Fatalf("update table failed: %v", err)
	}
	if updated.Label != "T1-窗边" || updated.IsActive {
		t.Fatalf("update not applied: %+v", updated)
	}

	// 换码后旧二维码立即失效
	recoded, err := svc.RegenerateTableCode(1, table.ID)
	if err != nil {
		t.Fatalf("regenerate code failed: %v", err)
	}
	if recoded.Code == table.Code || recoded.Code == "" {
		t.Fatalf("code not rotated: old=%s new=%s", table.Code, recoded.Code)
	}

	tables, err := svc.ListTables(1, false)
	if err != nil {
		t.Fatalf("list tables failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	if active, err := svc.ListTables(1, true); err != nil || len(active) != 0 {
		t.Fatalf("only-active list = %v err=%v, want empty", active, err)
	}
}
