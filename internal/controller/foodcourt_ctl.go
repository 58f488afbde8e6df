package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodcourt_dev_v1_202610/internal/api/dto"
	"foodcourt_dev_v1_202610/internal/middleware"
	"foodcourt_dev_v1_202610/internal/service"
)

// FoodcourtController 档口、菜单、餐桌
type FoodcourtController struct {
	foodcourtSvc *service.FoodcourtService
	tableSvc     *service.TableService
}

func NewFoodcourtController(foodcourtSvc *service.FoodcourtService, tableSvc *service.TableService) *FoodcourtController {
	return &FoodcourtController{
		foodcourtSvc: foodcourtSvc,
		tableSvc:     tableSvc,
	}
}

// ==================== 档口 ====================

// CreateFoodcourt POST /api/foodcourts (管理员)
func (c *FoodcourtController) CreateFoodcourt(ctx *gin.Context) {
	var req dto.StallRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	fc, err := c.foodcourtSvc.CreateFoodcourt(ctx.Request.Context(), middleware.GetPrincipal(ctx), service.StallInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusCreated, fc)
}

// GetFoodcourt GET /api/foodcourts/:id
func (c *FoodcourtController) GetFoodcourt(ctx *gin.Context) {
	fc, err := c.foodcourtSvc.GetFoodcourt(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, fc)
}

// UpdateStall PATCH /api/foodcourts/:id
func (c *FoodcourtController) UpdateStall(ctx *gin.Context) {
	var req dto.StallRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	fc, err := c.foodcourtSvc.UpdateStall(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), service.StallInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, fc)
}

// SetOperatingStatus PATCH /api/foodcourts/:id/operating-status
func (c *FoodcourtController) SetOperatingStatus(ctx *gin.Context) {
	var req dto.OperatingStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	fc, err := c.foodcourtSvc.SetOperatingStatus(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), req.Status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, fc)
}

// SetActive PATCH /api/foodcourts/:id/active (管理员)
func (c *FoodcourtController) SetActive(ctx *gin.Context) {
	var req dto.SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	fc, err := c.foodcourtSvc.SetActive(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), *req.IsActive)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, fc)
}

// ==================== 菜单 ====================

// CreateMenuItem POST /api/foodcourts/:id/menu-items
func (c *FoodcourtController) CreateMenuItem(ctx *gin.Context) {
	var req dto.CreateMenuItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	item, err := c.foodcourtSvc.CreateMenuItem(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), req.Name, req.Price)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusCreated, item)
}

// UpdateMenuItem PATCH /api/menu-items/:id
func (c *FoodcourtController) UpdateMenuItem(ctx *gin.Context) {
	var req dto.UpdateMenuItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	item, err := c.foodcourtSvc.UpdateMenuItem(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id"), service.MenuItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusOK, item)
}

// ==================== 餐桌 ====================

// CreateTable POST /api/tables (管理员)
func (c *FoodcourtController) CreateTable(ctx *gin.Context) {
	var req dto.CreateTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	table, err := c.tableSvc.CreateTable(ctx.Request.Context(), middleware.GetPrincipal(ctx), req.Number, req.Label)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondData(ctx, http.StatusCreated, table)
}

// CloseTableSession DELETE /api/tables/:id/session (管理员)
func (c *FoodcourtController) CloseTableSession(ctx *gin.Context) {
	if err := c.tableSvc.CloseSession(ctx.Request.Context(), middleware.GetPrincipal(ctx), ctx.Param("id")); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
