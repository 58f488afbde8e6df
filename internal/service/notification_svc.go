package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// ==================== 下单通知扇出 ====================

// BuildOrderNotifications 生成下单通知 (纯函数，不落库)
// 每个涉及的档口一条老板通知，按订单项首次出现顺序；顾客通知一条
func BuildOrderNotifications(order *model.Order, table *model.Table) ([]model.OwnerNotification, *model.CustomerNotification) {
	owners := make([]model.OwnerNotification, 0, len(order.Items))
	for _, fcID := range order.FoodcourtIDs() {
		lines := make([]interface{}, 0)
		count := 0
		subtotal := decimal.Zero
		for _, item := range order.Items {
			if item.FoodcourtID != fcID {
				continue
			}
			count += item.Quantity
			subtotal = subtotal.Add(item.Subtotal)
			lines = append(lines, map[string]interface{}{
				"order_item_id":        item.ID,
				"name":                 item.Name,
				"quantity":             item.Quantity,
				"special_instructions": item.SpecialInstructions,
			})
		}

		owners = append(owners, model.OwnerNotification{
			FoodcourtID: fcID,
			OrderID:     order.ID,
			Message:     fmt.Sprintf("新订单：%s（%s）共 %d 份", TableLabel(table), order.CustomerName, count),
			Payload: datatypes.JSONMap{
				"order_id":      order.ID,
				"table_number":  table.Number,
				"customer_name": order.CustomerName,
				"subtotal":      subtotal.StringFixed(2),
				"items":         lines,
			},
		})
	}

	customer := &model.CustomerNotification{
		OrderID: order.ID,
		TableID: table.ID,
		Message: fmt.Sprintf("%s，您的订单已提交，共 %d 个档口制作中", order.CustomerName, len(owners)),
		Payload: datatypes.JSONMap{
			"order_id":     order.ID,
			"total_amount": order.TotalAmount.StringFixed(2),
			"stall_count":  len(owners),
		},
	}
	return owners, customer
}

// ==================== NotificationService 通知查询 ====================

// NotificationService 通知读取与已读标记
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	orderRepo        repository.OrderRepository
	perms            *PermissionService
}

// NewNotificationService 创建通知服务
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	orderRepo repository.OrderRepository,
	perms *PermissionService,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		orderRepo:        orderRepo,
		perms:            perms,
	}
}

// ListOwnerNotifications 档口通知，需要查看订单权限
func (s *NotificationService) ListOwnerNotifications(ctx context.Context, p model.Principal, foodcourtID string, unreadOnly bool) ([]model.OwnerNotification, error) {
	if _, err := s.perms.Authorize(ctx, p, ActionViewOrders, foodcourtID); err != nil {
		return nil, err
	}
	return s.notificationRepo.ListOwnerByFoodcourt(ctx, foodcourtID, unreadOnly)
}

// MarkOwnerRead 标记档口通知已读
func (s *NotificationService) MarkOwnerRead(ctx context.Context, p model.Principal, id string) error {
	n, err := s.notificationRepo.GetOwnerByID(ctx, id)
	if err != nil {
		return fmt.Errorf("查询通知失败: %w", err)
	}
	if n == nil {
		return notFound("通知", id)
	}
	if _, err := s.perms.Authorize(ctx, p, ActionViewOrders, n.FoodcourtID); err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return s.notificationRepo.MarkOwnerRead(ctx, id)
}

// ListCustomerNotifications 顾客端轮询
func (s *NotificationService) ListCustomerNotifications(ctx context.Context, orderID string) ([]model.CustomerNotification, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if order == nil {
		return nil, notFound("订单", orderID)
	}
	return s.notificationRepo.ListCustomerByOrder(ctx, order.ID)
}

// MarkCustomerDisplayed 顾客端已展示
func (s *NotificationService) MarkCustomerDisplayed(ctx context.Context, id string) error {
	n, err := s.notificationRepo.GetCustomerByID(ctx, id)
	if err != nil {
		return fmt.Errorf("查询通知失败: %w", err)
	}
	if n == nil {
		return notFound("通知", id)
	}
	return s.notificationRepo.MarkCustomerDisplayed(ctx, id)
}
