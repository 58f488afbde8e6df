package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "foodcourt_dev_v1_202610/docs"
	"foodcourt_dev_v1_202610/internal/controller"
	"foodcourt_dev_v1_202610/internal/middleware"
	"foodcourt_dev_v1_202610/internal/model"
)

// Controllers 控制器集合
type Controllers struct {
	User         *controller.UserController
	Order        *controller.OrderController
	Notification *controller.NotificationController
	Foodcourt    *controller.FoodcourtController
	Permission   *controller.PermissionController
}

// Options 路由级配置
type Options struct {
	Logger                *zap.Logger
	Limiter               *middleware.CooldownLimiter
	OrderSubmitCooldown   time.Duration
	TemplateApplyCooldown time.Duration
}

// ClientTokenHeader 点餐页生成的设备标识，用于防重复提交
const ClientTokenHeader = "X-Client-Token"

// SetupRouter 创建 gin 引擎并注册路由
func SetupRouter(ctls *Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewCooldownLimiter()
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	InitRoutes(r, ctls, opts)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers, opts Options) {
	api := r.Group("/api")

	// 1. 公开接口：扫码点餐、顾客轮询
	{
		api.POST("/auth/login", ctls.User.Login)

		api.POST("/orders",
			middleware.Cooldown(opts.Limiter, "order_submit", opts.OrderSubmitCooldown, middleware.HeaderKey(ClientTokenHeader)),
			ctls.Order.CreateOrder,
		)
		api.GET("/orders/:id", ctls.Order.GetOrder)
		api.GET("/orders/:id/notifications", ctls.Notification.ListCustomerNotifications)
		api.PATCH("/customer-notifications/:id/displayed", ctls.Notification.MarkCustomerDisplayed)
		api.GET("/foodcourts/:id", ctls.Foodcourt.GetFoodcourt)
	}

	// 2. 登录接口：档口老板 / 管理员，由权限解析决定可操作范围
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(), middleware.AuditContext())
	{
		authed.GET("/orders/:id/logs", ctls.Order.ListOrderLogs)
		authed.POST("/orders/:id/cancel", ctls.Order.CancelOrder)
		authed.PATCH("/order-items/:id/status", ctls.Order.UpdateItemStatus)

		authed.GET("/foodcourts/:id/order-items", ctls.Order.ListStallOrderItems)
		authed.GET("/foodcourts/:id/notifications", ctls.Notification.ListOwnerNotifications)
		authed.PATCH("/owner-notifications/:id/read", ctls.Notification.MarkOwnerRead)

		authed.PATCH("/foodcourts/:id", ctls.Foodcourt.UpdateStall)
		authed.PATCH("/foodcourts/:id/operating-status", ctls.Foodcourt.SetOperatingStatus)
		authed.POST("/foodcourts/:id/menu-items", ctls.Foodcourt.CreateMenuItem)
		authed.PATCH("/menu-items/:id", ctls.Foodcourt.UpdateMenuItem)
	}

	// 3. 管理员接口
	admin := api.Group("")
	admin.Use(middleware.JWTAuth(), middleware.RequireRole(model.RoleAdmin), middleware.AuditContext())
	{
		admin.POST("/users", ctls.User.CreateUser)

		admin.POST("/foodcourts", ctls.Foodcourt.CreateFoodcourt)
		admin.PATCH("/foodcourts/:id/active", ctls.Foodcourt.SetActive)
		admin.PUT("/foodcourts/:id/owner", ctls.Permission.AssignOwner)
		admin.DELETE("/foodcourts/:id/owner", ctls.Permission.RevokeOwner)

		admin.POST("/tables", ctls.Foodcourt.CreateTable)
		admin.DELETE("/tables/:id/session", ctls.Foodcourt.CloseTableSession)

		admin.GET("/permissions/default", ctls.Permission.GetDefault)
		admin.PUT("/permissions/default", ctls.Permission.UpdateDefault)
		admin.GET("/permissions", ctls.Permission.ListPermissions)
		admin.PUT("/permissions", ctls.Permission.UpdatePermission)

		templates := admin.Group("/permission-templates")
		{
			templates.GET("", ctls.Permission.ListTemplates)
			templates.POST("", ctls.Permission.CreateTemplate)
			templates.GET("/:id", ctls.Permission.GetTemplate)
			templates.PUT("/:id", ctls.Permission.UpdateTemplate)
			templates.DELETE("/:id", ctls.Permission.DeleteTemplate)
			templates.POST("/:id/apply",
				middleware.Cooldown(opts.Limiter, "template_apply", opts.TemplateApplyCooldown, middleware.ParamKey("id")),
				ctls.Permission.ApplyTemplate,
			)
		}
	}
}
