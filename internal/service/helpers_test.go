package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// ==================== 测试环境 ====================

type testEnv struct {
	db     *gorm.DB
	ctx    context.Context
	system model.Principal
	admin  model.Principal
	uow    *repository.OrderUnitOfWork

	perms         *PermissionService
	orders        *OrderService
	status        *OrderStatusService
	notifications *NotificationService
	permAdmin     *PermissionAdminService
	foodcourts    *FoodcourtService
	tables        *TableService
	users         *UserService
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试独立的共享缓存内存库，单连接保证事务内外看到同一份数据
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层连接失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupServiceTestDB(t)

	userRepo := repository.NewUserRepository(db)
	foodcourtRepo := repository.NewFoodcourtRepository(db)
	tableRepo := repository.NewTableRepository(db)
	orderUow := repository.NewOrderUnitOfWork(db)

	env := &testEnv{db: db, ctx: context.Background(), uow: orderUow}
	env.system = env.createUser(t, model.RoleAdmin)
	env.admin = env.createUser(t, model.RoleAdmin)

	env.users = NewUserService(userRepo)
	env.perms = NewPermissionService(foodcourtRepo, repository.NewPermissionRepository(db))
	env.orders = NewOrderService(orderUow, tableRepo, env.perms, env.system)
	env.status = NewOrderStatusService(orderUow, env.perms)
	env.notifications = NewNotificationService(repository.NewNotificationRepository(db), orderUow.Orders, env.perms)
	env.permAdmin = NewPermissionAdminService(
		repository.NewOwnershipUnitOfWork(db),
		userRepo,
		repository.NewDefaultPermissionRepository(db),
		repository.NewPermissionTemplateRepository(db),
		4,
	)
	env.foodcourts = NewFoodcourtService(foodcourtRepo, repository.NewMenuRepository(db), env.perms)
	env.tables = NewTableService(tableRepo, repository.NewTableSessionRepository(db), 0)
	return env
}

// ==================== 数据构造 ====================

// createUser 直接写库，跳过 bcrypt 以加快测试
func (e *testEnv) createUser(t *testing.T, role string) model.Principal {
	t.Helper()
	user := &model.SysUser{
		Username: role + "-" + uuid.NewString()[:8],
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return model.Principal{ID: user.ID, Role: user.Role}
}

func (e *testEnv) createStall(t *testing.T, owner *model.Principal) *model.Foodcourt {
	t.Helper()
	fc := &model.Foodcourt{
		Name:            "档口-" + uuid.NewString()[:8],
		IsActive:        true,
		OperatingStatus: model.OperatingStatusOpen,
	}
	if owner != nil {
		ownerID := owner.ID
		fc.OwnerID = &ownerID
	}
	if err := e.db.Create(fc).Error; err != nil {
		t.Fatalf("创建档口失败: %v", err)
	}
	return fc
}

func (e *testEnv) createMenuItem(t *testing.T, fcID, price string) *model.MenuItem {
	t.Helper()
	item := &model.MenuItem{
		FoodcourtID: fcID,
		Name:        "菜品-" + uuid.NewString()[:8],
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
	}
	if err := e.db.Create(item).Error; err != nil {
		t.Fatalf("创建菜品失败: %v", err)
	}
	return item
}

var tableSeq int

func (e *testEnv) createTable(t *testing.T) *model.Table {
	t.Helper()
	tableSeq++
	table := &model.Table{Number: tableSeq}
	if err := e.db.Create(table).Error; err != nil {
		t.Fatalf("创建餐桌失败: %v", err)
	}
	return table
}

func (e *testEnv) grant(t *testing.T, owner model.Principal, fcID string, flags model.PermissionFlags) {
	t.Helper()
	perm := &model.Permission{
		OwnerID:         owner.ID,
		FoodcourtID:     fcID,
		PermissionFlags: flags,
		Source:          model.PermissionSourceManual,
	}
	if err := e.db.Create(perm).Error; err != nil {
		t.Fatalf("创建授权失败: %v", err)
	}
}

func (e *testEnv) placeOrder(t *testing.T, tableID string, lines ...OrderLine) *model.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(e.ctx, CreateOrderCommand{TableID: tableID, Lines: lines})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	return order
}

func (e *testEnv) count(t *testing.T, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("计数失败: %v", err)
	}
	return n
}

func line(menuItemID string, qty int) OrderLine {
	return OrderLine{MenuItemID: menuItemID, Quantity: qty}
}

var allFlags = model.PermissionFlags{CanEditMenu: true, CanViewOrders: true, CanUpdateOrders: true}
