package dto

import "github.com/shopspring/decimal"

// ==================== 档口 ====================

// StallRequest 新建/修改档口
type StallRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// SetActiveRequest 启停档口
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// OperatingStatusRequest 开关档
type OperatingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open closed"`
}

// AssignOwnerRequest 指定档口老板
type AssignOwnerRequest struct {
	OwnerID    string  `json:"owner_id" binding:"required"`
	TemplateID *string `json:"template_id"`
}

// ==================== 菜单 ====================

// CreateMenuItemRequest 新增菜品
type CreateMenuItemRequest struct {
	Name  string          `json:"name" binding:"required,max=255"`
	Price decimal.Decimal `json:"price"`
}

// UpdateMenuItemRequest 修改菜品，未传字段不变
type UpdateMenuItemRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

// ==================== 餐桌 ====================

// CreateTableRequest 登记餐桌
type CreateTableRequest struct {
	Number int    `json:"number" binding:"required,min=1"`
	Label  string `json:"label" binding:"max=50"`
}

// NotificationListQuery 通知查询
type NotificationListQuery struct {
	UnreadOnly bool `form:"unread_only"`
}
