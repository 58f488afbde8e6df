package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcourt_dev_v1_202610/internal/api/dto"
	"foodcourt_dev_v1_202610/internal/middleware"
	"foodcourt_dev_v1_202610/internal/service"
)

// NotificationController 通知控制器 (客户端轮询)
type NotificationController struct {
	notificationSvc *service.NotificationService
}

func NewNotificationController(notificationSvc *service.NotificationService) *NotificationController {
	return &NotificationController{notificationSvc: notificationSvc}
}

// ListCustomerNotifications GET /api/orders/:id/notifications
func (c *NotificationController) ListCustomerNotifications(ctx *gin.Context) {
	list, err := c.notificationSvc.ListCustomerNotifications(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, list)
}

// MarkCustomerDisplayed PATCH /api/customer-notifications/:id/displayed
func (c *NotificationController) MarkCustomerDisplayed(ctx *gin.Context) {
	if err := c.notificationSvc.MarkCustomerDisplayed(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, gin.H{"id": ctx.Param("id"), "is_displayed": true})
}

// ListOwnerNotifications GET /api/foodcourts/:id/notifications
func (c *NotificationController) ListOwnerNotifications(ctx *gin.Context) {
	var query dto.NotificationListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondBindError(ctx, err)
		return
	}

	list, err := c.notificationSvc.ListOwnerNotifications(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), query.UnreadOnly)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, list)
}

// MarkOwnerRead PATCH /api/owner-notifications/:id/read
func (c *NotificationController) MarkOwnerRead(ctx *gin.Context) {
	if err := c.notificationSvc.MarkOwnerRead(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, gin.H{"id": ctx.Param("id"), "is_read": true})
}
