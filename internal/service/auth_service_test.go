package service

import (
	"testing"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/constants"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func newAuthTestService(t *testing.T, name string) (*AuthService, *repository.GormStaffRepository) {
	t.Helper()
	db := newServiceTestDB(t, name)
	cfg := &config.Config{}
	cfg.JWT.SecretKey = "unit-test-secret"
	cfg.JWT.ExpireHours = 24
	staffRepo := repository.NewStaffRepository(db)
	return NewAuthService(cfg, staffRepo), staffRepo
}

func TestLoginRoundTrip(t *testing.T) {
	svc, staffRepo := newAuthTestService(t, "auth_login")
	hash, err := bcrypt.GenerateFromPassword([]byte("waiter123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	staff := &models.Staff{
		TenantID:     1,
		Name:         "小赵",
		Phone:        "13800000001",
		Role:         constants.StaffRoleWaiter,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := staffRepo.Create(staff); err != nil {
		t.Fatalf("seed staff failed: %v", err)
	}

	got, token, expiresAt, err := svc.Login(1, "13800000001", "waiter123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if got.ID != staff.ID || token == "" || expiresAt.IsZero() {
		t.Fatalf("login result incomplete: staff=%d token=%q", got.ID, token)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.StaffID != staff.ID || claims.TenantID != 1 || claims.Role != constants.StaffRoleWaiter {
		t.Fatalf("claims = %+v, want identity of staff %d", claims, staff.ID)
	}

	if _, _, _, err := svc.Login(1, "13800000001", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, _, err := svc.Login(1, "13899999999", "waiter123"); err != ErrInvalidCredentials {
		t.Fatalf("unknown phone: got %v, want ErrInvalidCredentials", err)
	}
	if _, _, _, err := svc.Login(2, "13800000001", "waiter123"); err != ErrInvalidCredentials {
		t.Fatalf("cross-tenant login: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginInactiveStaff(t *testing.T) {
	svc, staffRepo := newAuthTestService(t, "auth_inactive")
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	staff := &models.Staff{
		TenantID:     1,
		Name:         "小钱",
		Phone:        "13800000002",
		Role:         constants.StaffRoleWaiter,
		PasswordHash: string(hash),
		IsActive:     false,
	}
	if err := staffRepo.Create(staff); err != nil {
		t.Fatalf("seed staff failed: %v", err)
	}
	if _, _, _, err := svc.Login(1, "13800000002", "pw"); err != ErrStaffInactive {
		t.Fatalf("got %v, want ErrStaffInactive", err)
	}
}

func TestParseJWTRejectsForgedToken(t *testing.T) {
	svc, _ := newAuthTestService(t, "auth_forged")
	otherCfg := &config.Config{}
	otherCfg.JWT.SecretKey = "another-secret"
	otherCfg.JWT.ExpireHours = 1
	forger := NewAuthService(otherCfg, nil)

	token, _, err := forger.GenerateJWT(&models.Staff{ID: 1, TenantID: 1, Name: "x", Role: constants.StaffRoleManager})
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}
	if _, err := svc.ParseJWT(token); err == nil {
		t.Fatal("token signed with another secret should be rejected")
	}
}
