package main

import (
	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const demoTenantID = uint(1)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{TenantID: demoTenantID, Name: "Starters", SortOrder: 1},
		{TenantID: demoTenantID, Name: "Mains", SortOrder: 2},
		{TenantID: demoTenantID, Name: "Drinks", SortOrder: 3},
		{TenantID: demoTenantID, Name: "Desserts", SortOrder: 4},
	}
	for i := range categories {
		cat := &categories[i]
		var existing models.Category
		if err := models.DB.Where("tenant_id = ? AND name = ?", cat.TenantID, cat.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Name, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Name)
			}
		} else {
			*cat = existing
			stdLog.Printf("Category already exists: %s", cat.Name)
		}
	}
	categoryIDs := map[string]uint{}
	for _, cat := range categories {
		categoryIDs[cat.Name] = cat.ID
	}

	// 添加菜品
	products := []models.Product{
		{TenantID: demoTenantID, CategoryID: categoryIDs["Starters"], Name: "Bruschetta", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(18.50)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Starters"], Name: "Garlic Bread", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.00)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Mains"], Name: "Grilled Picanha", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(68.90)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Mains"], Name: "Spaghetti Carbonara", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(42.00)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Mains"], Name: "Fish and Chips", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(39.50)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Drinks"], Name: "Craft Lager 500ml", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(16.00)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Drinks"], Name: "Caipirinha", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(22.00)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Drinks"], Name: "Fresh Orange Juice", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(11.00)), IsActive: true},
		{TenantID: demoTenantID, CategoryID: categoryIDs["Desserts"], Name: "Petit Gateau", Price: models.NewMoneyFromDecimal(decimal.NewFromFloat(24.00)), IsActive: true},
	}
	for i := range products {
		product := &products[i]
		var existing models.Product
		if err := models.DB.Where("tenant_id = ? AND name = ?", product.TenantID, product.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			} else {
				stdLog.Printf("Created product: %s", product.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Name)
		}
	}

	// 添加桌台（Code 为二维码编码串）
	tableLabels := []string{"T1", "T2", "T3", "T4", "T5", "T6", "T7", "T8"}
	for _, label := range tableLabels {
		var existing models.DiningTable
		if err := models.DB.Where("tenant_id = ? AND label = ?", demoTenantID, label).First(&existing).Error; err != nil {
			table := models.DiningTable{
				TenantID: demoTenantID,
				Label:    label,
				Code:     uuid.NewString(),
				IsActive: true,
			}
			if err := models.DB.Create(&table).Error; err != nil {
				stdLog.Printf("Failed to create table %s: %v", label, err)
			} else {
				stdLog.Printf("Created table %s with code %s", label, table.Code)
			}
		} else {
			stdLog.Printf("Table already exists: %s (code %s)", label, existing.Code)
		}
	}

	// 添加演示服务员账号
	waiters := []struct {
		Name  string
		Phone string
	}{
		{Name: "小赵", Phone: "13800000001"},
		{Name: "小钱", Phone: "13800000002"},
		{Name: "小孙", Phone: "13800000003"},
	}
	for _, w := range waiters {
		var existing models.Staff
		if err := models.DB.Where("tenant_id = ? AND phone = ?", demoTenantID, w.Phone).First(&existing).Error; err != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte("waiter123"), bcrypt.DefaultCost)
			if err != nil {
				stdLog.Printf("Failed to hash password for %s: %v", w.Name, err)
				continue
			}
			staff := models.Staff{
				TenantID:     demoTenantID,
				Name:         w.Name,
				Phone:        w.Phone,
				Role:         "waiter",
				PasswordHash: string(hash),
				IsActive:     true,
			}
			if err := models.DB.Create(&staff).Error; err != nil {
				stdLog.Printf("Failed to create waiter %s: %v", w.Name, err)
			} else {
				stdLog.Printf("Created waiter %s (phone %s, password waiter123)", w.Name, w.Phone)
			}
		} else {
			stdLog.Printf("Waiter already exists: %s", w.Name)
		}
	}

	stdLog.Println("Seed completed")
}
