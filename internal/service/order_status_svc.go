package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"foodcourt_dev_v1_202610/internal/model"
	"foodcourt_dev_v1_202610/internal/repository"
)

// ==================== OrderStatusService 订单项状态流转 ====================

// OrderStatusService 订单项状态流转
// 订单状态只在这里随订单项变化重算
type OrderStatusService struct {
	uow   *repository.OrderUnitOfWork
	perms *PermissionService
}

// NewOrderStatusService 创建状态流转服务
func NewOrderStatusService(uow *repository.OrderUnitOfWork, perms *PermissionService) *OrderStatusService {
	return &OrderStatusService{uow: uow, perms: perms}
}

// ChangeItemStatus 变更订单项状态
// 需要订单项所属档口的 UpdateOrders 权限
func (s *OrderStatusService) ChangeItemStatus(ctx context.Context, p model.Principal, itemID, newStatus string) (*model.OrderItem, error) {
	if !model.IsValidStatus(newStatus) {
		return nil, validation("未知状态 %q", newStatus)
	}

	item, err := s.uow.Items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("查询订单项失败: %w", err)
	}
	if item == nil {
		return nil, notFound("订单项", itemID)
	}

	if _, err := s.perms.Authorize(ctx, p, ActionUpdateOrders, item.FoodcourtID); err != nil {
		return nil, err
	}
	if !model.CanTransition(item.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, item.Status, newStatus)
	}

	err = s.uow.Transaction(ctx, func(uow *repository.OrderUnitOfWork) error {
		if err := applyItemTransition(ctx, uow, p, item, newStatus); err != nil {
			return err
		}
		return syncOrderStatus(ctx, uow, p, item.OrderID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order item status changed",
		zap.String("item", item.ID),
		zap.String("order", item.OrderID),
		zap.String("actor", p.ID),
		zap.String("status", newStatus),
	)
	return item, nil
}

// CancelOrder 取消订单内操作人有权处理的全部未完结订单项
func (s *OrderStatusService) CancelOrder(ctx context.Context, p model.Principal, orderID string) (*model.Order, error) {
	order, err := s.uow.Orders.GetByIDWithItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("查询订单失败: %w", err)
	}
	if order == nil {
		return nil, notFound("订单", orderID)
	}

	// 先按档口鉴权，无权者看不到订单是否已完结
	allowed := make(map[string]bool)
	anyAllowed := false
	for _, item := range order.Items {
		if _, checked := allowed[item.FoodcourtID]; checked {
			continue
		}
		_, err := s.perms.Authorize(ctx, p, ActionUpdateOrders, item.FoodcourtID)
		if err != nil && !isForbiddenOrMissing(err) {
			return nil, err
		}
		allowed[item.FoodcourtID] = err == nil
		anyAllowed = anyAllowed || err == nil
	}
	if !anyAllowed {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, ActionUpdateOrders)
	}

	open := 0
	targets := make([]model.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if model.IsTerminalStatus(item.Status) {
			continue
		}
		open++
		if allowed[item.FoodcourtID] {
			targets = append(targets, item)
		}
	}
	if open == 0 {
		return nil, fmt.Errorf("%w: 订单已完结", ErrInvalidTransition)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, ActionUpdateOrders)
	}

	err = s.uow.Transaction(ctx, func(uow *repository.OrderUnitOfWork) error {
		for i := range targets {
			if err := applyItemTransition(ctx, uow, p, &targets[i], model.OrderStatusCanceled); err != nil {
				return err
			}
		}
		return syncOrderStatus(ctx, uow, p, order.ID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("order canceled",
		zap.String("order", order.ID),
		zap.String("actor", p.ID),
		zap.Int("items", len(targets)),
	)
	return s.uow.Orders.GetByIDWithItems(ctx, order.ID)
}

// ListStallOrderItems 档口订单项看板
func (s *OrderStatusService) ListStallOrderItems(ctx context.Context, p model.Principal, foodcourtID, status string, limit int) ([]model.OrderItem, error) {
	if status != "" && !model.IsValidStatus(status) {
		return nil, validation("未知状态 %q", status)
	}
	if _, err := s.perms.Authorize(ctx, p, ActionViewOrders, foodcourtID); err != nil {
		return nil, err
	}
	return s.uow.Items.List(ctx, repository.OrderItemFilter{
		FoodcourtID: foodcourtID,
		Status:      status,
		Limit:       limit,
	})
}

// applyItemTransition CAS 更新订单项并写流水
// 并发下被抢先变更时返回 ErrInvalidTransition，不写流水
func applyItemTransition(ctx context.Context, uow *repository.OrderUnitOfWork, actor model.Principal, item *model.OrderItem, to string) error {
	from := item.Status
	swapped, err := uow.Items.CompareAndSwapStatus(ctx, item.ID, from, to)
	if err != nil {
		return fmt.Errorf("更新订单项状态失败: %w", err)
	}
	if !swapped {
		return fmt.Errorf("%w: 订单项 %s 状态已被修改", ErrInvalidTransition, item.ID)
	}

	itemID := item.ID
	if err := uow.Logs.Create(ctx, &model.OrderLog{
		OrderID:        item.OrderID,
		OrderItemID:    &itemID,
		PreviousStatus: &from,
		NewStatus:      to,
		ActorID:        actor.ID,
	}); err != nil {
		return fmt.Errorf("写入订单项流水失败: %w", err)
	}

	item.Status = to
	return nil
}

// syncOrderStatus 重算订单状态，有变化时写订单级流水
func syncOrderStatus(ctx context.Context, uow *repository.OrderUnitOfWork, actor model.Principal, orderID string) error {
	order, err := uow.Orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("查询订单失败: %w", err)
	}
	if order == nil {
		return notFound("订单", orderID)
	}

	items, err := uow.Items.ListByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("查询订单项失败: %w", err)
	}
	order.Items = items

	derived := model.DeriveOrderStatus(order.ItemStatuses())
	if derived == order.Status {
		return nil
	}

	if err := uow.Orders.UpdateStatus(ctx, order.ID, derived); err != nil {
		return fmt.Errorf("更新订单状态失败: %w", err)
	}
	prev := order.Status
	return uow.Logs.Create(ctx, &model.OrderLog{
		OrderID:        order.ID,
		PreviousStatus: &prev,
		NewStatus:      derived,
		ActorID:        actor.ID,
	})
}
