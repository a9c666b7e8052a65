package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be empty")
	}
}

func TestStaffJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(StaffJWTAuthMiddleware("", nil))
	r.GET("/staff/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/staff/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestStaffJWTAuthMiddlewareChecksStaffRow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret"

	dsn := fmt.Sprintf("file:middleware_jwt_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Staff{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	staff := &models.Staff{TenantID: 1, Name: "小赵", Phone: "13800000001", Role: "waiter", IsActive: true}
	if err := db.Create(staff).Error; err != nil {
		t.Fatalf("seed staff failed: %v", err)
	}

	sign := func(staffID, tenantID uint) string {
		claims := service.JWTClaims{
			StaffID:  staffID,
			TenantID: tenantID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign token failed: %v", err)
		}
		return token
	}

	r := gin.New()
	r.Use(StaffJWTAuthMiddleware(secret, repository.NewStaffRepository(db)))
	r.GET("/staff/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"staff_id": c.GetUint("staff_id"),
			"role":     c.GetString("staff_role"),
		})
	})

	do := func(token string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/staff/ping", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		r.ServeHTTP(w, req)
		return w
	}

	envelope := func(w *httptest.ResponseRecorder) int {
		var resp struct {
			StatusCode int `json:"status_code"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		return resp.StatusCode
	}

	// 有效 token：上下文注入库里的身份与角色
	w := do(sign(staff.ID, 1))
	var ok struct {
		StaffID uint   `json:"staff_id"`
		Role    string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if ok.StaffID != staff.ID || ok.Role != "waiter" {
		t.Fatalf("context identity = %+v, want staff %d waiter", ok, staff.ID)
	}

	// 库里不存在的员工
	if code := envelope(do(sign(999, 1))); code != 401 {
		t.Fatalf("unknown staff: status_code want 401 got %d", code)
	}

	// 缺少 Authorization 头
	if code := envelope(do("")); code != 401 {
		t.Fatalf("missing header: status_code want 401 got %d", code)
	}

	// 离职员工的 token 立即失效
	if err := db.Model(&models.Staff{}).Where("id = ?", staff.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate staff failed: %v", err)
	}
	if code := envelope(do(sign(staff.ID, 1))); code != 401 {
		t.Fatalf("inactive staff: status_code want 401 got %d", code)
	}
}
