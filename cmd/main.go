package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"foodcourt_dev_v1_202610/internal/controller"
	"foodcourt_dev_v1_202610/internal/middleware"
	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
	"foodcourt_dev_v1_202610/internal/router"
	"foodcourt_dev_v1_202610/internal/service"
	"foodcourt_dev_v1_202610/internal/task"
	"foodcourt_dev_v1_202610/pkg/config"
	"foodcourt_dev_v1_202610/pkg/database"
	"foodcourt_dev_v1_202610/pkg/logger"
)

// @title 美食广场点餐 API
// @version 1.0
// @description 扫码点餐、档口订单处理与权限管理
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "配置文件路径 (可选)")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zl, err := logger.Init(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 初始化数据库
	db := initDatabase(cfg)

	// 4. 初始化依赖
	deps := initDependencies(cfg, db)

	// 5. 启动定时任务
	tasks := initTasks(cfg, deps)

	// 6. 初始化路由并启动服务
	r := router.SetupRouter(deps.Controllers, router.Options{
		Logger:                zl,
		Limiter:               deps.Limiter,
		OrderSubmitCooldown:   cfg.Limit.OrderSubmitCooldown,
		TemplateApplyCooldown: cfg.Limit.TemplateApplyCooldown,
	})
	startServer(cfg, r)

	tasks.Stop()
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	Limiter     *middleware.CooldownLimiter
}

// Repositories 仓库集合
type Repositories struct {
	User         repository.UserRepository
	Foodcourt    repository.FoodcourtRepository
	Table        repository.TableRepository
	TableSession repository.TableSessionRepository
	Menu         repository.MenuRepository
	Permission   repository.PermissionRepository
	Default      repository.DefaultPermissionRepository
	Template     repository.PermissionTemplateRepository
	Notification repository.NotificationRepository
	OrderUow     *repository.OrderUnitOfWork
	OwnershipUow *repository.OwnershipUnitOfWork
}

// Services 服务集合
type Services struct {
	User            *service.UserService
	Permission      *service.PermissionService
	PermissionAdmin *service.PermissionAdminService
	Order           *service.OrderService
	OrderStatus     *service.OrderStatusService
	Notification    *service.NotificationService
	Foodcourt       *service.FoodcourtService
	Table           *service.TableService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := database.InitDB(cfg.Database.DSN, cfg.Database.LogLevel, model.AllModels()...)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		zap.L().Fatal("注册审计回调失败", zap.Error(err))
	}
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenTTL: cfg.JWT.AccessTTL,
		Issuer:         cfg.JWT.Issuer,
	})

	// -------- Repo 层 --------
	repos := initRepositories(db)

	// -------- 业务服务 --------
	services := &Services{
		User:       service.NewUserService(repos.User),
		Permission: service.NewPermissionService(repos.Foodcourt, repos.Permission),
	}

	// 系统操作人启动时解析一次，失败直接退出
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	system, err := services.User.ResolveSystemPrincipal(ctx, cfg.System.Username, cfg.System.Password)
	if err != nil {
		zap.L().Fatal("系统操作人解析失败", zap.Error(err))
	}
	zap.L().Info("system principal resolved", zap.String("id", system.ID))

	services.PermissionAdmin = service.NewPermissionAdminService(
		repos.OwnershipUow, repos.User, repos.Default, repos.Template,
		cfg.Template.ApplyConcurrency,
	)
	services.Order = service.NewOrderService(repos.OrderUow, repos.Table, services.Permission, system)
	services.OrderStatus = service.NewOrderStatusService(repos.OrderUow, services.Permission)
	services.Notification = service.NewNotificationService(repos.Notification, repos.OrderUow.Orders, services.Permission)
	services.Foodcourt = service.NewFoodcourtService(repos.Foodcourt, repos.Menu, services.Permission)
	services.Table = service.NewTableService(repos.Table, repos.TableSession, cfg.Session.IdleTimeout)

	// -------- Controller 层 --------
	controllers := initControllers(services)

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Limiter:     middleware.NewCooldownLimiter(),
	}
}

// initRepositories 初始化所有仓库
func initRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         repository.NewUserRepository(db),
		Foodcourt:    repository.NewFoodcourtRepository(db),
		Table:        repository.NewTableRepository(db),
		TableSession: repository.NewTableSessionRepository(db),
		Menu:         repository.NewMenuRepository(db),
		Permission:   repository.NewPermissionRepository(db),
		Default:      repository.NewDefaultPermissionRepository(db),
		Template:     repository.NewPermissionTemplateRepository(db),
		Notification: repository.NewNotificationRepository(db),
		OrderUow:     repository.NewOrderUnitOfWork(db),
		OwnershipUow: repository.NewOwnershipUnitOfWork(db),
	}
}

// initControllers 初始化所有控制器
func initControllers(svc *Services) *router.Controllers {
	return &router.Controllers{
		User:         controller.NewUserController(svc.User),
		Order:        controller.NewOrderController(svc.Order, svc.OrderStatus),
		Notification: controller.NewNotificationController(svc.Notification),
		Foodcourt:    controller.NewFoodcourtController(svc.Foodcourt, svc.Table),
		Permission:   controller.NewPermissionController(svc.PermissionAdmin),
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies) *task.TaskManager {
	tcfg := task.DefaultConfig()
	tcfg.SessionReapSpec = cfg.Session.ReapSpec

	tm := task.NewTaskManager(&task.TaskManagerDeps{
		Sessions: deps.Services.Table,
		Limiter:  deps.Limiter,
	}, tcfg)
	if err := tm.Start(); err != nil {
		zap.L().Fatal("定时任务启动失败", zap.Error(err))
	}
	return tm
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(cfg *config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("服务启动失败", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("服务强制关闭", zap.Error(err))
	}
	zap.L().Info("服务已退出")
}
