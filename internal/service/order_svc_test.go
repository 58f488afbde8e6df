package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

func TestCreateOrder_Success(t *testing.T) {
	env := newTestEnv(t)
	noodle := env.createStall(t, nil)
	grill := env.createStall(t, nil)
	ramen := env.createMenuItem(t, noodle.ID, "12.50")
	skewer := env.createMenuItem(t, grill.ID, "3.20")
	table := env.createTable(t)

	order, err := env.orders.CreateOrder(env.ctx, CreateOrderCommand{
		TableID:      table.ID,
		CustomerName: "  Alice ",
		Lines: []OrderLine{
			{MenuItemID: ramen.ID, Quantity: 2, SpecialInstructions: " 不要香菜 "},
			{MenuItemID: skewer.ID, Quantity: 5},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if order.CustomerName != "Alice" {
		t.Errorf("CustomerName = %q, want Alice", order.CustomerName)
	}
	if order.Status != model.OrderStatusPending {
		t.Errorf("Status = %q, want pending", order.Status)
	}
	if want := decimal.RequireFromString("41.00"); !order.TotalAmount.Equal(want) {
		t.Errorf("TotalAmount = %s, want %s", order.TotalAmount, want)
	}
	if order.TableSessionID == "" {
		t.Error("订单应关联餐桌会话")
	}
	if len(order.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(order.Items))
	}
	if order.Items[0].FoodcourtID != noodle.ID || !order.Items[0].UnitPrice.Equal(ramen.Price) {
		t.Errorf("订单项快照错误: %+v", order.Items[0])
	}
	if order.Items[0].SpecialInstructions != "不要香菜" {
		t.Errorf("SpecialInstructions = %q", order.Items[0].SpecialInstructions)
	}

	if n := env.count(t, &model.OrderItem{}, "order_id = ?", order.ID); n != 2 {
		t.Errorf("订单项行数 = %d, want 2", n)
	}
	if n := env.count(t, &model.OwnerNotification{}, "order_id = ?", order.ID); n != 2 {
		t.Errorf("档口通知数 = %d, want 2", n)
	}
	if n := env.count(t, &model.CustomerNotification{}, "order_id = ?", order.ID); n != 1 {
		t.Errorf("顾客通知数 = %d, want 1", n)
	}

	var logs []model.OrderLog
	env.db.Where("order_id = ?", order.ID).Find(&logs)
	if len(logs) != 1 {
		t.Fatalf("流水数 = %d, want 1", len(logs))
	}
	if logs[0].ActorID != env.system.ID || logs[0].PreviousStatus != nil || logs[0].OrderItemID != nil {
		t.Errorf("下单流水错误: %+v", logs[0])
	}
}

func TestCreateOrder_BlankNameUsesTableLabel(t *testing.T) {
	env := newTestEnv(t)
	fc := env.createStall(t, nil)
	mi := env.createMenuItem(t, fc.ID, "8.00")
	table := env.createTable(t)

	order, err := env.orders.CreateOrder(env.ctx, CreateOrderCommand{
		TableID:      table.ID,
		CustomerName: "   ",
		Lines:        []OrderLine{line(mi.ID, 1)},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if want := TableLabel(table); order.CustomerName != want {
		t.Errorf("CustomerName = %q, want %q", order.CustomerName, want)
	}
}

func TestCreateOrder_ReusesActiveSession(t *testing.T) {
	env := newTestEnv(t)
	fc := env.createStall(t, nil)
	mi := env.createMenuItem(t, fc.ID, "8.00")
	table := env.createTable(t)

	first := env.placeOrder(t, table.ID, line(mi.ID, 1))
	second := env.placeOrder(t, table.ID, line(mi.ID, 2))

	if first.TableSessionID != second.TableSessionID {
		t.Errorf("同一餐桌应复用会话: %s != %s", first.TableSessionID, second.TableSessionID)
	}
	if n := env.count(t, &model.TableSession{}, "table_id = ?", table.ID); n != 1 {
		t.Errorf("会话数 = %d, want 1", n)
	}
}

func TestCreateOrder_UnavailableItemWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	fc := env.createStall(t, nil)
	ok := env.createMenuItem(t, fc.ID, "5.00")
	soldOut := env.createMenuItem(t, fc.ID, "6.00")
	env.db.Model(&model.MenuItem{}).Where("id = ?", soldOut.ID).Update("is_available", false)
	table := env.createTable(t)

	_, err := env.orders.CreateOrder(env.ctx, CreateOrderCommand{
		TableID: table.ID,
		Lines:   []OrderLine{line(ok.ID, 1), line(soldOut.ID, 1)},
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("error = %v, want ErrInvalidState", err)
	}

	for _, m := range []interface{}{&model.Order{}, &model.OrderItem{}, &model.OrderLog{}, &model.OwnerNotification{}, &model.CustomerNotification{}, &model.TableSession{}} {
		if n := env.count(t, m, ""); n != 0 {
			t.Errorf("%T 应无写入, got %d", m, n)
		}
	}
}

func TestCreateOrder_LastWriteFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	noodle := env.createStall(t, nil)
	grill := env.createStall(t, nil)
	ramen := env.createMenuItem(t, noodle.ID, "12.50")
	skewer := env.createMenuItem(t, grill.ID, "3.20")
	table := env.createTable(t)

	// 顾客通知是事务内最后一次写入
	errWrite := errors.New("customer notification write failed")
	err := env.db.Callback().Create().Before("gorm:create").Register("test:fail_customer_notification", func(tx *gorm.DB) {
		if tx.Statement.Table == "customer_notifications" {
			_ = tx.AddError(errWrite)
		}
	})
	if err != nil {
		t.Fatalf("注册回调失败: %v", err)
	}

	_, err = env.orders.CreateOrder(env.ctx, CreateOrderCommand{
		TableID: table.ID,
		Lines:   []OrderLine{line(ramen.ID, 1), line(skewer.ID, 2)},
	})
	if !errors.Is(err, errWrite) {
		t.Fatalf("error = %v, want %v", err, errWrite)
	}

	for _, m := range []interface{}{&model.Order{}, &model.OrderItem{}, &model.OrderLog{}, &model.OwnerNotification{}, &model.CustomerNotification{}, &model.TableSession{}} {
		if n := env.count(t, m, ""); n != 0 {
			t.Errorf("%T 应已回滚, got %d", m, n)
		}
	}
}

func TestCreateOrder_InactiveStallItemRejected(t *testing.T) {
	env := newTestEnv(t)
	fc := env.createStall(t, nil)
	mi := env.createMenuItem(t, fc.ID, "5.00")
	env.db.Model(&model.Foodcourt{}).Where("id = ?", fc.ID).Update("is_active", false)
	table := env.createTable(t)

	_, err := env.orders.CreateOrder(env.ctx, CreateOrderCommand{
		TableID: table.ID,
		Lines:   []OrderLine{line(mi.ID, 1)},
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t)
	fc := env.createStall(t, nil)
	mi := env.createMenuItem(t, fc.ID, "5.00")
	table := env.createTable(t)

	tests := []struct {
		name  string
		lines []OrderLine
	}{
		{"无明细", nil},
		{"数量为零", []OrderLine{line(mi.ID, 0)}},
		{"数量为负", []OrderLine{line(mi.ID, -2)}},
		{"缺少菜品", []OrderLine{line(" ", 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.CreateOrder(env.ctx, CreateOrderCommand{TableID: table.ID, Lines: tt.lines})
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateOrder_UnknownTable(t *testing.T) {
	env := newTestEnv(t)
	fc := env.createStall(t, nil)
	mi := env.createMenuItem(t, fc.ID, "5.00")

	_, err := env.orders.CreateOrder(env.ctx, CreateOrderCommand{
		TableID: "missing",
		Lines:   []OrderLine{line(mi.ID, 1)},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateOrder_WithoutSystemPrincipal(t *testing.T) {
	env := newTestEnv(t)
	fc := env.createStall(t, nil)
	mi := env.createMenuItem(t, fc.ID, "5.00")
	table := env.createTable(t)

	svc := NewOrderService(env.uow, repository.NewTableRepository(env.db), env.perms, model.Principal{})
	_, err := svc.CreateOrder(env.ctx, CreateOrderCommand{
		TableID: table.ID,
		Lines:   []OrderLine{line(mi.ID, 1)},
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("error = %v, want ErrConfiguration", err)
	}
}

func TestCreateOrder_PriceChangeKeepsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, model.RoleOwner)
	fc := env.createStall(t, &owner)
	mi := env.createMenuItem(t, fc.ID, "10.00")
	table := env.createTable(t)
	order := env.placeOrder(t, table.ID, line(mi.ID, 1))

	price := decimal.RequireFromString("15.00")
	if _, err := env.foodcourts.UpdateMenuItem(env.ctx, owner, mi.ID, MenuItemPatch{Price: &price}); err != nil {
		t.Fatalf("UpdateMenuItem() error = %v", err)
	}

	got, err := env.orders.GetOrder(env.ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}
	if !got.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("UnitPrice = %s, 已下单价格不应变化", got.Items[0].UnitPrice)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("TotalAmount = %s, want 10.00", got.TotalAmount)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.orders.GetOrder(env.ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListOrderLogs_Visibility(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, model.RoleOwner)
	stranger := env.createUser(t, model.RoleOwner)
	fc := env.createStall(t, &owner)
	mi := env.createMenuItem(t, fc.ID, "5.00")
	table := env.createTable(t)
	order := env.placeOrder(t, table.ID, line(mi.ID, 1))

	logs, err := env.orders.ListOrderLogs(env.ctx, owner, order.ID)
	if err != nil {
		t.Fatalf("owner ListOrderLogs() error = %v", err)
	}
	if len(logs) != 1 {
		t.Errorf("len(logs) = %d, want 1", len(logs))
	}

	if _, err := env.orders.ListOrderLogs(env.ctx, env.admin, order.ID); err != nil {
		t.Errorf("admin ListOrderLogs() error = %v", err)
	}
	if _, err := env.orders.ListOrderLogs(env.ctx, stranger, order.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger error = %v, want ErrForbidden", err)
	}
}
