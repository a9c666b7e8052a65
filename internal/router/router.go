package router

import (
	"fmt"
	"strings"

	"github.com/comanda-next/internal/cache"
	"github.com/comanda-next/internal/config"
	publichandlers "github.com/comanda-next/internal/http/handlers/public"
	staffhandlers "github.com/comanda-next/internal/http/handlers/staff"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按顾客端/员工端分组）
	publicHandler := publichandlers.New(c)
	staffHandler := staffhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "cmd"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 顾客端接口（扫码进入，无需登录）
		public := apiV1.Group("/public")
		{
			public.GET("/tables/:code/menu", publicHandler.GetMenu)
			public.POST("/sessions", publicHandler.OpenSession)
			public.GET("/sessions/:id", publicHandler.GetSession)
			public.POST("/sessions/:id/bill", publicHandler.RequestBill)
			public.GET("/sessions/:id/cart", publicHandler.GetCart)
			public.POST("/sessions/:id/cart", publicHandler.UpsertCartItem)
			public.DELETE("/sessions/:id/cart/:product_id", publicHandler.DeleteCartItem)
			public.POST("/sessions/:id/orders", publicHandler.SubmitOrder)
		}

		// 员工端接口
		staff := apiV1.Group("/staff")
		{
			// 登录接口（无需鉴权）
			staff.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("phone")), staffHandler.Login)

			// 需要鉴权的接口
			authorized := staff.Use(
				StaffJWTAuthMiddleware(cfg.JWT.SecretKey, c.StaffRepo),
				StaffRBACMiddleware(c.AuthzService),
			)
			{
				// 待抢池与订单
				authorized.GET("/orders", staffHandler.ListOrders)
				authorized.GET("/orders/:id", staffHandler.GetOrder)
				authorized.POST("/orders/:id/claim", staffHandler.ClaimOrder)

				// 认领与送达
				authorized.GET("/claims", staffHandler.ListClaims)
				authorized.GET("/claims/:id", staffHandler.GetClaim)
				authorized.POST("/claims/:id/deliver", staffHandler.MarkDelivered)

				// 桌台会话
				authorized.POST("/sessions", staffHandler.OpenSession)
				authorized.GET("/sessions", staffHandler.ListSessions)
				authorized.GET("/sessions/:id", staffHandler.GetSession)
				authorized.POST("/sessions/:id/paying", staffHandler.StartPaying)
				authorized.POST("/sessions/:id/close", staffHandler.CloseSession)

				// 损失工单
				authorized.POST("/losses/report", staffHandler.ReportLoss)
				authorized.GET("/losses", staffHandler.ListLosses)
				authorized.GET("/losses/:id", staffHandler.GetLoss)
				authorized.POST("/losses/:id/review", staffHandler.ReviewLoss)
				authorized.GET("/blacklist-flags", staffHandler.ListBlacklistFlags)

				// 通知与积分榜
				authorized.GET("/notifications", staffHandler.ListNotifications)
				authorized.POST("/notifications/:id/read", staffHandler.MarkNotificationRead)
				authorized.GET("/leaderboard", staffHandler.Leaderboard)

				// 员工管理（经理）
				authorized.GET("/staff", staffHandler.ListStaff)
				authorized.POST("/staff", staffHandler.CreateStaff)
				authorized.GET("/staff/:id", staffHandler.GetStaff)
				authorized.PUT("/staff/:id", staffHandler.UpdateStaff)

				// 桌台管理（经理）
				authorized.GET("/tables", staffHandler.ListTables)
				authorized.POST("/tables", staffHandler.CreateTable)
				authorized.PUT("/tables/:id", staffHandler.UpdateTable)
				authorized.POST("/tables/:id/code", staffHandler.RegenerateTableCode)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
