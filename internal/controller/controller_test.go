package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"foodcourt_dev_v1_202610/internal/middleware"
	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
	"foodcourt_dev_v1_202610/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

type ctlEnv struct {
	db         *gorm.DB
	system     model.Principal
	admin      model.Principal
	order      *OrderController
	foodcourt  *FoodcourtController
	permission *PermissionController
	notify     *NotificationController
	user       *UserController
}

func setupCtlEnv(t *testing.T) *ctlEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	env := &ctlEnv{db: db}
	env.system = env.seedUser(t, model.RoleAdmin)
	env.admin = env.seedUser(t, model.RoleAdmin)

	userRepo := repository.NewUserRepository(db)
	foodcourtRepo := repository.NewFoodcourtRepository(db)
	tableRepo := repository.NewTableRepository(db)
	orderUow := repository.NewOrderUnitOfWork(db)

	perms := service.NewPermissionService(foodcourtRepo, repository.NewPermissionRepository(db))
	env.order = NewOrderController(
		service.NewOrderService(orderUow, tableRepo, perms, env.system),
		service.NewOrderStatusService(orderUow, perms),
	)
	env.foodcourt = NewFoodcourtController(
		service.NewFoodcourtService(foodcourtRepo, repository.NewMenuRepository(db), perms),
		service.NewTableService(tableRepo, repository.NewTableSessionRepository(db), 0),
	)
	env.permission = NewPermissionController(service.NewPermissionAdminService(
		repository.NewOwnershipUnitOfWork(db),
		userRepo,
		repository.NewDefaultPermissionRepository(db),
		repository.NewPermissionTemplateRepository(db),
		2,
	))
	env.notify = NewNotificationController(service.NewNotificationService(
		repository.NewNotificationRepository(db), orderUow.Orders, perms,
	))
	env.user = NewUserController(service.NewUserService(userRepo))
	return env
}

func (e *ctlEnv) seedUser(t *testing.T, role string) model.Principal {
	t.Helper()
	user := &model.SysUser{Username: role + "-" + uuid.NewString()[:8], Password: "x", Role: role, IsActive: true}
	require.NoError(t, e.db.Create(user).Error)
	return model.Principal{ID: user.ID, Role: user.Role}
}

func (e *ctlEnv) seedStall(t *testing.T, owner *model.Principal) *model.Foodcourt {
	t.Helper()
	fc := &model.Foodcourt{Name: "档口", IsActive: true, OperatingStatus: model.OperatingStatusOpen}
	if owner != nil {
		fc.OwnerID = &owner.ID
	}
	require.NoError(t, e.db.Create(fc).Error)
	return fc
}

func (e *ctlEnv) seedMenuItem(t *testing.T, fcID, price string) *model.MenuItem {
	t.Helper()
	item := &model.MenuItem{FoodcourtID: fcID, Name: "菜品", Price: decimal.RequireFromString(price), IsAvailable: true}
	require.NoError(t, e.db.Create(item).Error)
	return item
}

var tableNumber int

func (e *ctlEnv) seedTable(t *testing.T) *model.Table {
	t.Helper()
	tableNumber++
	table := &model.Table{Number: tableNumber}
	require.NoError(t, e.db.Create(table).Error)
	return table
}

// as 模拟 JWTAuth 已解析出的操作人
func as(p model.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, p.ID)
		c.Set(middleware.ContextKeyRole, p.Role)
		c.Next()
	}
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Empty(t, envelope.Error)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// ==================== 错误映射 ====================

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", service.ErrValidation), http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: edit_menu", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: 订单 1", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: 菜品不可售", service.ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("%w: delivered → ready", service.ErrInvalidTransition), http.StatusConflict},
		{service.ErrConfiguration, http.StatusInternalServerError},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}

// ==================== 订单 ====================

func TestCreateOrder(t *testing.T) {
	env := setupCtlEnv(t)
	fc := env.seedStall(t, nil)
	mi := env.seedMenuItem(t, fc.ID, "9.90")
	soldOut := env.seedMenuItem(t, fc.ID, "5.00")
	require.NoError(t, env.db.Model(soldOut).Update("is_available", false).Error)
	table := env.seedTable(t)

	router := gin.New()
	router.POST("/api/orders", env.order.CreateOrder)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"空请求体", nil, http.StatusBadRequest},
		{"缺少餐桌", map[string]interface{}{"items": []map[string]interface{}{{"menu_item_id": mi.ID, "quantity": 1}}}, http.StatusBadRequest},
		{"无明细", map[string]interface{}{"table_id": table.ID}, http.StatusBadRequest},
		{"数量为零", map[string]interface{}{"table_id": table.ID, "items": []map[string]interface{}{{"menu_item_id": mi.ID, "quantity": 0}}}, http.StatusBadRequest},
		{"餐桌不存在", map[string]interface{}{"table_id": "missing", "items": []map[string]interface{}{{"menu_item_id": mi.ID, "quantity": 1}}}, http.StatusNotFound},
		{"菜品售罄", map[string]interface{}{"table_id": table.ID, "items": []map[string]interface{}{{"menu_item_id": soldOut.ID, "quantity": 1}}}, http.StatusConflict},
		{"正常下单", map[string]interface{}{"table_id": table.ID, "items": []map[string]interface{}{{"menu_item_id": mi.ID, "quantity": 2}}}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	var count int64
	env.db.Model(&model.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrder_Response(t *testing.T) {
	env := setupCtlEnv(t)
	fc := env.seedStall(t, nil)
	mi := env.seedMenuItem(t, fc.ID, "9.90")
	table := env.seedTable(t)

	router := gin.New()
	router.POST("/api/orders", env.order.CreateOrder)

	w := performRequest(router, http.MethodPost, "/api/orders", map[string]interface{}{
		"table_id": table.ID,
		"items":    []map[string]interface{}{{"menu_item_id": mi.ID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		CustomerName string `json:"customer_name"`
		TotalAmount  string `json:"total_amount"`
		Status       string `json:"status"`
		Items        []struct {
			UnitPrice string `json:"unit_price"`
			Subtotal  string `json:"subtotal"`
		} `json:"items"`
	}
	decodeData(t, w, &resp)

	assert.Equal(t, service.TableLabel(table), resp.CustomerName)
	assert.Equal(t, "29.70", resp.TotalAmount)
	assert.Equal(t, model.OrderStatusPending, resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "9.90", resp.Items[0].UnitPrice)
	assert.Equal(t, "29.70", resp.Items[0].Subtotal)
}

func TestUpdateItemStatus(t *testing.T) {
	env := setupCtlEnv(t)
	owner := env.seedUser(t, model.RoleOwner)
	stranger := env.seedUser(t, model.RoleOwner)
	fc := env.seedStall(t, &owner)
	mi := env.seedMenuItem(t, fc.ID, "10.00")
	table := env.seedTable(t)

	router := gin.New()
	router.POST("/api/orders", env.order.CreateOrder)
	router.PATCH("/owner/order-items/:id/status", as(owner), env.order.UpdateItemStatus)
	router.PATCH("/stranger/order-items/:id/status", as(stranger), env.order.UpdateItemStatus)

	w := performRequest(router, http.MethodPost, "/api/orders", map[string]interface{}{
		"table_id": table.ID,
		"items":    []map[string]interface{}{{"menu_item_id": mi.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	decodeData(t, w, &order)
	itemID := order.Items[0].ID

	tests := []struct {
		name       string
		who        string
		body       interface{}
		wantStatus int
	}{
		{"缺少状态", "owner", map[string]string{}, http.StatusBadRequest},
		{"未知状态", "owner", map[string]string{"status": "cooking"}, http.StatusBadRequest},
		{"无权限", "stranger", map[string]string{"status": "preparing"}, http.StatusForbidden},
		{"推进", "owner", map[string]string{"status": "ready"}, http.StatusOK},
		{"回退", "owner", map[string]string{"status": "preparing"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPatch, "/"+tt.who+"/order-items/"+itemID+"/status", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	w = performRequest(router, http.MethodPatch, "/owner/order-items/missing/status", map[string]string{"status": "ready"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== 档口 ====================

func TestFoodcourtEndpoints(t *testing.T) {
	env := setupCtlEnv(t)
	owner := env.seedUser(t, model.RoleOwner)
	fc := env.seedStall(t, &owner)

	router := gin.New()
	router.GET("/api/foodcourts/:id", env.foodcourt.GetFoodcourt)
	router.PATCH("/api/foodcourts/:id/active", as(env.admin), env.foodcourt.SetActive)
	router.PATCH("/api/foodcourts/:id/operating-status", as(owner), env.foodcourt.SetOperatingStatus)
	router.POST("/api/foodcourts/:id/menu-items", as(owner), env.foodcourt.CreateMenuItem)

	w := performRequest(router, http.MethodGet, "/api/foodcourts/"+fc.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = performRequest(router, http.MethodGet, "/api/foodcourts/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodPost, "/api/foodcourts/"+fc.ID+"/menu-items", map[string]interface{}{"name": "拉面", "price": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = performRequest(router, http.MethodPost, "/api/foodcourts/"+fc.ID+"/menu-items", map[string]interface{}{"name": "拉面", "price": "12.5"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(router, http.MethodPatch, "/api/foodcourts/"+fc.ID+"/operating-status", map[string]string{"status": "busy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// is_active 必填，false 也要能传
	w = performRequest(router, http.MethodPatch, "/api/foodcourts/"+fc.ID+"/active", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = performRequest(router, http.MethodPatch, "/api/foodcourts/"+fc.ID+"/active", map[string]interface{}{"is_active": false})
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodPatch, "/api/foodcourts/"+fc.ID+"/operating-status", map[string]string{"status": "open"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// ==================== 授权管理 ====================

func TestApplyTemplate(t *testing.T) {
	env := setupCtlEnv(t)
	owner := env.seedUser(t, model.RoleOwner)
	env.seedStall(t, &owner)

	router := gin.New()
	router.POST("/api/permission-templates", env.permission.CreateTemplate)
	router.POST("/api/permission-templates/:id/apply", env.permission.ApplyTemplate)

	w := performRequest(router, http.MethodPost, "/api/permission-templates", map[string]interface{}{
		"name":          "只读",
		"can_edit_menu": false,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPost, "/api/permission-templates", map[string]interface{}{
		"name":              "只读",
		"can_edit_menu":     false,
		"can_view_orders":   true,
		"can_update_orders": false,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tpl struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &tpl)

	w = performRequest(router, http.MethodPost, "/api/permission-templates/"+tpl.ID+"/apply", map[string]interface{}{"owner_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPost, "/api/permission-templates/"+tpl.ID+"/apply", map[string]interface{}{
		"owner_ids": []string{owner.ID, "ghost"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Success int      `json:"success"`
		Failed  int      `json:"failed"`
		Errors  []string `json:"errors"`
	}
	decodeData(t, w, &result)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Errors, 1)

	w = performRequest(router, http.MethodPost, "/api/permission-templates/missing/apply", map[string]interface{}{
		"owner_ids": []string{owner.ID},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== 登录 ====================

func TestLogin(t *testing.T) {
	env := setupCtlEnv(t)
	svc := service.NewUserService(repository.NewUserRepository(env.db))
	_, err := svc.CreateUser(context.Background(), "chef", "secret", model.RoleOwner)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/api/auth/login", env.user.Login)

	w := performRequest(router, http.MethodPost, "/api/auth/login", map[string]string{"username": "chef", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPost, "/api/auth/login", map[string]string{"username": "chef", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	decodeData(t, w, &resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, model.RoleOwner, resp.User.Role)

	claims, err := middleware.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "chef", claims.Username)
}
