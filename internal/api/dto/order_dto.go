package dto

import (
	"time"

	"foodcourt_dev_v1_202610/internal/model"
)

// ==================== 下单 ====================

// CreateOrderRequest 扫码下单请求
type CreateOrderRequest struct {
	TableID      string             `json:"table_id" binding:"required"`
	CustomerName string             `json:"customer_name" binding:"max=100"`
	Items        []OrderLineRequest `json:"items"`
}

// OrderLineRequest 下单明细
type OrderLineRequest struct {
	MenuItemID          string `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions" binding:"max=500"`
}

// UpdateItemStatusRequest 订单项状态变更
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderItemListQuery 档口订单项查询
type OrderItemListQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ==================== 响应 ====================

// OrderResponse 订单
type OrderResponse struct {
	ID             string              `json:"id"`
	TableID        string              `json:"table_id"`
	TableSessionID string              `json:"table_session_id"`
	CustomerName   string              `json:"customer_name"`
	TotalAmount    string              `json:"total_amount"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	Items          []OrderItemResponse `json:"items"`
}

// OrderItemResponse 订单项
type OrderItemResponse struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"order_id"`
	MenuItemID          string    `json:"menu_item_id"`
	FoodcourtID         string    `json:"foodcourt_id"`
	Name                string    `json:"name"`
	Quantity            int       `json:"quantity"`
	UnitPrice           string    `json:"unit_price"`
	Subtotal            string    `json:"subtotal"`
	Status              string    `json:"status"`
	SpecialInstructions string    `json:"special_instructions,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// OrderLogResponse 状态流水
type OrderLogResponse struct {
	ID             string    `json:"id"`
	OrderItemID    *string   `json:"order_item_id"`
	PreviousStatus *string   `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActorID        string    `json:"actor_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// BatchOperationResponse 批量操作响应
type BatchOperationResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ==================== 转换 ====================

// ToOrderResponse 金额统一保留两位小数输出
func ToOrderResponse(o *model.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:             o.ID,
		TableID:        o.TableID,
		TableSessionID: o.TableSessionID,
		CustomerName:   o.CustomerName,
		TotalAmount:    o.TotalAmount.StringFixed(2),
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		Items:          make([]OrderItemResponse, 0, len(o.Items)),
	}
	for i := range o.Items {
		resp.Items = append(resp.Items, *ToOrderItemResponse(&o.Items[i]))
	}
	return resp
}

// ToOrderItemResponse 订单项转换
func ToOrderItemResponse(item *model.OrderItem) *OrderItemResponse {
	return &OrderItemResponse{
		ID:                  item.ID,
		OrderID:             item.OrderID,
		MenuItemID:          item.MenuItemID,
		FoodcourtID:         item.FoodcourtID,
		Name:                item.Name,
		Quantity:            item.Quantity,
		UnitPrice:           item.UnitPrice.StringFixed(2),
		Subtotal:            item.Subtotal.StringFixed(2),
		Status:              item.Status,
		SpecialInstructions: item.SpecialInstructions,
		UpdatedAt:           item.UpdatedAt,
	}
}

// ToOrderItemList 订单项列表转换
func ToOrderItemList(items []model.OrderItem) []OrderItemResponse {
	list := make([]OrderItemResponse, 0, len(items))
	for i := range items {
		list = append(list, *ToOrderItemResponse(&items[i]))
	}
	return list
}

// ToOrderLogList 流水列表转换
func ToOrderLogList(logs []model.OrderLog) []OrderLogResponse {
	list := make([]OrderLogResponse, 0, len(logs))
	for _, l := range logs {
		list = append(list, OrderLogResponse{
			ID:             l.ID,
			OrderItemID:    l.OrderItemID,
			PreviousStatus: l.PreviousStatus,
			NewStatus:      l.NewStatus,
			ActorID:        l.ActorID,
			CreatedAt:      l.CreatedAt,
		})
	}
	return list
}
