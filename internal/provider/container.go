package provider

import (
	"github.com/comanda-next/internal/authz"
	"github.com/comanda-next/internal/cache"
	"github.com/comanda-next/internal/config"
	"github.com/comanda-next/internal/logger"
	"github.com/comanda-next/internal/models"
	"github.com/comanda-next/internal/queue"
	"github.com/comanda-next/internal/repository"
	"github.com/comanda-next/internal/service"
	"github.com/comanda-next/internal/stream"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Broker      *stream.Broker

	// Repositories
	StaffRepo   repository.StaffRepository
	TableRepo   repository.TableRepository
	ProductRepo repository.ProductRepository
	SessionRepo repository.SessionRepository
	OrderRepo   repository.OrderRepository
	ClaimRepo   repository.ClaimRepository
	CartRepo    repository.CartRepository
	NotifyRepo  repository.NotificationRepository
	LossRepo    repository.LossRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	SessionService      *service.SessionService
	CartService         *service.CartService
	OrderService        *service.OrderService
	ClaimService        *service.ClaimService
	NotificationService *service.NotificationService
	LossService         *service.LossService
	AdminService        *service.AdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Broker:      stream.NewBroker(64),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.StaffRepo = repository.NewStaffRepository(db)
	c.TableRepo = repository.NewTableRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.SessionRepo = repository.NewSessionRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ClaimRepo = repository.NewClaimRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.NotifyRepo = repository.NewNotificationRepository(db)
	c.LossRepo = repository.NewLossRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.syncStaffRoleBindings()

	tab := c.Config.Tab
	c.AuthService = service.NewAuthService(c.Config, c.StaffRepo)
	c.NotificationService = service.NewNotificationService(c.NotifyRepo, c.QueueClient, c.Broker, tab.NotifyDedupeTTLSeconds)
	c.SessionService = service.NewSessionService(c.SessionRepo, c.TableRepo, c.OrderRepo, c.NotificationService, c.Broker, tab.ServiceChargePercent)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, tab.HighPriorityCategories)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.SessionRepo, c.CartRepo, c.NotificationService, c.Broker)
	c.ClaimService = service.NewClaimService(c.OrderRepo, c.ClaimRepo, c.StaffRepo, c.SessionService, c.NotificationService, c.Broker, tab.ClaimExpireMinutes)
	c.AdminService = service.NewAdminService(c.StaffRepo, c.TableRepo, c.AuthzService)
	c.LossService = service.NewLossService(c.LossRepo, c.SessionRepo, c.OrderRepo, c.StaffRepo, c.NotificationService, c.QueueClient, tab.LossBlacklistThreshold)
}

// syncStaffRoleBindings 把库内员工的角色补绑到授权层
// 种子脚本与默认经理初始化绕过了服务层，启动时兜底对齐
func (c *Container) syncStaffRoleBindings() {
	var staffList []models.Staff
	if err := models.DB.Find(&staffList).Error; err != nil {
		logger.Warnw("provider_sync_staff_roles_failed", "error", err)
		return
	}
	for _, staff := range staffList {
		if err := c.AuthzService.AssignStaffRole(staff.ID, staff.Role); err != nil {
			logger.Warnw("provider_assign_staff_role_failed",
				"staff_id", staff.ID,
				"role", staff.Role,
				"error", err,
			)
		}
	}
}
