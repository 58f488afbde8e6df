package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcourt_dev_v1_202610/internal/api/dto"
	"foodcourt_dev_v1_202610/internal/middleware"
	"foodcourt_dev_v1_202610/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	orderSvc  *service.OrderService
	statusSvc *service.OrderStatusService
}

func NewOrderController(orderSvc *service.OrderService, statusSvc *service.OrderStatusService) *OrderController {
	return &OrderController{
		orderSvc:  orderSvc,
		statusSvc: statusSvc,
	}
}

// CreateOrder 扫码下单
// @Summary 扫码下单
// @Description 同一请求内校验菜品、快照价格并按档口拆分通知，任一菜品不可售则整单不落库
// @Tags 订单
// @Accept json
// @Produce json
// @Param X-Client-Token header string false "点餐页设备标识"
// @Param body body dto.CreateOrderRequest true "下单参数"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 409 {object} map[string]string "菜品不可售"
// @Failure 429 {object} map[string]string "提交过于频繁"
// @Router /orders [post]
func (c *OrderController) CreateOrder(ctx *gin.Context) {
	var req dto.CreateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	cmd := service.CreateOrderCommand{
		TableID:      req.TableID,
		CustomerName: req.CustomerName,
		Lines:        make([]service.OrderLine, 0, len(req.Items)),
	}
	for _, line := range req.Items {
		cmd.Lines = append(cmd.Lines, service.OrderLine{
			MenuItemID:          line.MenuItemID,
			Quantity:            line.Quantity,
			SpecialInstructions: line.SpecialInstructions,
		})
	}

	order, err := c.orderSvc.CreateOrder(ctx.Request.Context(), cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusCreated, dto.ToOrderResponse(order))
}

// GetOrder 订单详情
// GET /api/orders/:id
func (c *OrderController) GetOrder(ctx *gin.Context) {
	order, err := c.orderSvc.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, dto.ToOrderResponse(order))
}

// ListOrderLogs 订单状态流水
// GET /api/orders/:id/logs
func (c *OrderController) ListOrderLogs(ctx *gin.Context) {
	logs, err := c.orderSvc.ListOrderLogs(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, dto.ToOrderLogList(logs))
}

// UpdateItemStatus 订单项状态变更
// @Summary 订单项状态变更
// @Tags 订单
// @Security BearerAuth
// @Param id path string true "订单项 ID"
// @Param body body dto.UpdateItemStatusRequest true "目标状态"
// @Router /order-items/{id}/status [patch]
func (c *OrderController) UpdateItemStatus(ctx *gin.Context) {
	var req dto.UpdateItemStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	item, err := c.statusSvc.ChangeItemStatus(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, dto.ToOrderItemResponse(item))
}

// CancelOrder 取消订单
// POST /api/orders/:id/cancel
func (c *OrderController) CancelOrder(ctx *gin.Context) {
	order, err := c.statusSvc.CancelOrder(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, dto.ToOrderResponse(order))
}

// ListStallOrderItems 档口订单项看板
// GET /api/foodcourts/:id/order-items
func (c *OrderController) ListStallOrderItems(ctx *gin.Context) {
	var query dto.OrderItemListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondBindError(ctx, err)
		return
	}

	items, err := c.statusSvc.ListStallOrderItems(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), query.Status, query.Limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, dto.ToOrderItemList(items))
}
