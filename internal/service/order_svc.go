package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// ==================== 下单命令 ====================

// OrderLine 下单明细
type OrderLine struct {
	MenuItemID          string
	Quantity            int
	SpecialInstructions string
}

// CreateOrderCommand 下单命令
type CreateOrderCommand struct {
	TableID      string
	CustomerName string
	Lines        []OrderLine
}

// TableLabel 顾客未留名时的默认称呼
func TableLabel(table *model.Table) string {
	return fmt.Sprintf("Table #%d", table.Number)
}

// ==================== OrderService 订单服务 ====================

// OrderService 下单与订单查询
type OrderService struct {
	uow       *repository.OrderUnitOfWork
	tableRepo repository.TableRepository
	perms     *PermissionService
	system    model.Principal
	now       func() time.Time
}

// NewOrderService 创建订单服务
// system 为系统操作人，下单流水以其名义记录
func NewOrderService(
	uow *repository.OrderUnitOfWork,
	tableRepo repository.TableRepository,
	perms *PermissionService,
	system model.Principal,
) *OrderService {
	return &OrderService{
		uow:       uow,
		tableRepo: tableRepo,
		perms:     perms,
		system:    system,
		now:       time.Now,
	}
}

// CreateOrder 顾客下单
// 订单、订单项、下单流水、通知在同一事务内写入，任一步失败整体回滚
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*model.Order, error) {
	if s.system.IsZero() {
		return nil, fmt.Errorf("%w: 未配置系统操作人", ErrConfiguration)
	}
	if err := validateOrderLines(cmd.Lines); err != nil {
		return nil, err
	}

	table, err := s.tableRepo.GetByID(ctx, cmd.TableID)
	if err != nil {
		return nil, fmt.Errorf("查询餐桌失败: %w", err)
	}
	if table == nil {
		return nil, notFound("餐桌", cmd.TableID)
	}

	customerName := strings.TrimSpace(cmd.CustomerName)
	if customerName == "" {
		customerName = TableLabel(table)
	}

	var order *model.Order
	err = s.uow.Transaction(ctx, func(uow *repository.OrderUnitOfWork) error {
		menu, err := loadMenuSnapshot(ctx, uow.Menu, cmd.Lines)
		if err != nil {
			return err
		}

		session, err := uow.Sessions.OpenOrTouch(ctx, table.ID, s.now())
		if err != nil {
			return fmt.Errorf("开台失败: %w", err)
		}

		items := make([]model.OrderItem, 0, len(cmd.Lines))
		total := decimal.Zero
		for _, line := range cmd.Lines {
			mi := menu[line.MenuItemID]
			subtotal := mi.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			items = append(items, model.OrderItem{
				MenuItemID:          mi.ID,
				FoodcourtID:         mi.FoodcourtID,
				Name:                mi.Name,
				Quantity:            line.Quantity,
				UnitPrice:           mi.Price,
				Subtotal:            subtotal,
				Status:              model.OrderStatusPending,
				SpecialInstructions: strings.TrimSpace(line.SpecialInstructions),
			})
		}

		order = &model.Order{
			TableID:        table.ID,
			TableSessionID: session.ID,
			CustomerName:   customerName,
			TotalAmount:    total,
			Status:         model.OrderStatusPending,
		}
		if err := uow.Orders.Create(ctx, order); err != nil {
			return fmt.Errorf("创建订单失败: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := uow.Items.CreateBatch(ctx, items); err != nil {
			return fmt.Errorf("创建订单项失败: %w", err)
		}
		order.Items = items

		if err := uow.Logs.Create(ctx, &model.OrderLog{
			OrderID:   order.ID,
			NewStatus: model.OrderStatusPending,
			ActorID:   s.system.ID,
		}); err != nil {
			return fmt.Errorf("写入订单流水失败: %w", err)
		}

		owners, customer := BuildOrderNotifications(order, table)
		if err := uow.Notifications.CreateOwnerBatch(ctx, owners); err != nil {
			return fmt.Errorf("写入档口通知失败: %w", err)
		}
		if err := uow.Notifications.CreateCustomer(ctx, customer); err != nil {
			return fmt.Errorf("写入顾客通知失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order created",
		zap.String("order", order.ID),
		zap.String("table", table.ID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func validateOrderLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return validation("订单明细不能为空")
	}
	for i, line := range lines {
		if strings.TrimSpace(line.MenuItemID) == "" {
			return validation("第 %d 行缺少菜品", i+1)
		}
		if line.Quantity <= 0 {
			return validation("第 %d 行数量必须大于 0", i+1)
		}
	}
	return nil
}

// loadMenuSnapshot 读取下单时刻的菜品价格与可售状态
// 任一菜品不存在、已下架或档口未启用时返回 ErrInvalidState
func loadMenuSnapshot(ctx context.Context, repo repository.MenuRepository, lines []OrderLine) (map[string]model.MenuItem, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.MenuItemID]; ok {
			continue
		}
		seen[line.MenuItemID] = struct{}{}
		ids = append(ids, line.MenuItemID)
	}

	available, err := repo.GetAvailableByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("查询菜品失败: %w", err)
	}

	menu := make(map[string]model.MenuItem, len(available))
	for _, mi := range available {
		menu[mi.ID] = mi
	}

	var missing []string
	for _, id := range ids {
		if _, ok := menu[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: 菜品不可售 %s", ErrInvalidState, strings.Join(missing, ","))
	}
	return menu, nil
}

// ==================== 查询 ====================

// GetOrder 订单详情 (含订单项)，顾客凭订单号查询
func (s *OrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.uow.Orders.GetByIDWithItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if order == nil {
		return nil, notFound("订单", id)
	}
	return order, nil
}

// ListOrderLogs 订单状态流水
// 管理员或对订单任一档口有查看权限的用户可见
func (s *OrderService) ListOrderLogs(ctx context.Context, p model.Principal, orderID string) ([]model.OrderLog, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed := p.IsAdmin()
	for _, fcID := range order.FoodcourtIDs() {
		if allowed {
			break
		}
		if _, err := s.perms.Authorize(ctx, p, ActionViewOrders, fcID); err == nil {
			allowed = true
		} else if !isForbiddenOrMissing(err) {
			return nil, err
		}
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, ActionViewOrders)
	}

	return s.uow.Logs.ListByOrder(ctx, order.ID)
}
