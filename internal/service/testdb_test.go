package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// newServiceTestDB 打开共享内存库并指向全局连接，供事务型服务方法使用
func newServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Staff{},
		&models.DiningTable{},
		&models.Category{},
		&models.Product{},
		&models.TableSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderClaim{},
		&models.OrderClaimItem{},
		&models.CartItem{},
		&models.Notification{},
		&models.LossIncident{},
		&models.BlacklistFlag{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newTestNotifyService(db *gorm.DB) *NotificationService {
	qc, _ := queue.NewClient(&config.QueueConfig{Enabled: false})
	return NewNotificationService(repository.NewNotificationRepository(db), qc, nil, 60)
}

func newDisabledQueueClient() *queue.Client {
	qc, _ := queue.NewClient(&config.QueueConfig{Enabled: false})
	return qc
}
